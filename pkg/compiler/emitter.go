package compiler

import (
	"fmt"
	"strings"
)

const indentUnit = "  "

// LineMapping ties one generated line to the source construct that produced it.
type LineMapping struct {
	GenLine int // 1-based
	Src     Position
}

// Emitter accumulates generated text. Indentation is written lazily, when the
// first character of a line arrives, so expressions that open a block in the
// middle of a line (shape literals) close it at the enclosing indentation.
//
// In compact mode comments, blank lines and indentation are dropped.
type Emitter struct {
	out         strings.Builder
	indent      int
	compact     bool
	atLineStart bool
	line        int
	current     Position
	mappings    []LineMapping
}

func newEmitter(compact bool) *Emitter {
	return &Emitter{compact: compact, atLineStart: true, line: 1}
}

func (e *Emitter) String() string { return e.out.String() }

// Mappings returns the generated lines that carry a source position, in order.
func (e *Emitter) Mappings() []LineMapping { return e.mappings }

func (e *Emitter) startLine() {
	if !e.atLineStart {
		return
	}
	e.atLineStart = false
	if e.current.Line > 0 {
		e.mappings = append(e.mappings, LineMapping{GenLine: e.line, Src: e.current})
	}
	if !e.compact {
		e.out.WriteString(strings.Repeat(indentUnit, e.indent))
	}
}

// emit writes s, which must not contain a newline.
func (e *Emitter) emit(s string) {
	if s == "" {
		return
	}
	e.startLine()
	e.out.WriteString(s)
}

func (e *Emitter) emitf(format string, args ...any) {
	e.emit(fmt.Sprintf(format, args...))
}

func (e *Emitter) newline() {
	e.out.WriteByte('\n')
	e.atLineStart = true
	e.line++
}

// emitLine writes a complete line at the current indentation.
func (e *Emitter) emitLine(format string, args ...any) {
	e.emitf(format, args...)
	e.newline()
}

func (e *Emitter) blank() {
	if e.compact {
		return
	}
	e.newline()
}

func (e *Emitter) comment(format string, args ...any) {
	if e.compact {
		return
	}
	e.emitLine("// "+format, args...)
}

func (e *Emitter) indented(fn func()) {
	e.indent++
	defer func() { e.indent-- }()
	fn()
}

// at attributes every line started inside fn to pos.
func (e *Emitter) at(pos Position, fn func()) {
	saved := e.current
	e.current = pos
	defer func() { e.current = saved }()
	fn()
}

// block writes a multi-line template. Two leading spaces on a template line
// add one level to the current indentation.
func (e *Emitter) block(text string) {
	for _, ln := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		trimmed := strings.TrimLeft(ln, " ")
		switch {
		case trimmed == "":
			e.blank()
			continue
		case strings.HasPrefix(trimmed, "//"):
			if e.compact {
				continue
			}
		}
		depth := (len(ln) - len(trimmed)) / len(indentUnit)
		e.indent += depth
		e.emitLine("%s", trimmed)
		e.indent -= depth
	}
}
