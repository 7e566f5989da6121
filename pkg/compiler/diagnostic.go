package compiler

import "fmt"

// DiagnosticKind separates syntax problems from scope problems.
type DiagnosticKind int

const (
	ParseError DiagnosticKind = iota
	SemanticError
)

func (k DiagnosticKind) String() string {
	if k == SemanticError {
		return "Semantic"
	}
	return "Parse"
}

// Diagnostic is a positioned compilation message. It implements error so the
// parser's grammar functions can return it directly.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
	Line    int
	Column  int
	Snippet string // trimmed source line, filled in when the source is known
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s error at line %d, column %d: %s", d.Kind, d.Line, d.Column, d.Message)
}

func (d *Diagnostic) Error() string { return d.String() }

// Strings renders each diagnostic in its user-visible form.
func Strings(diags []Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.String()
	}
	return out
}
