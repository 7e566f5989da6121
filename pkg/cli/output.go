package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"mflow/pkg/compiler"
)

// palette holds the styles used for user-facing lines.
type palette struct {
	ok   *color.Color
	fail *color.Color
	loc  *color.Color
	dim  *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		ok:   color.New(color.FgGreen, color.Bold),
		fail: color.New(color.FgRed, color.Bold),
		loc:  color.New(color.Bold),
		dim:  color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{p.ok, p.fail, p.loc, p.dim} {
			c.DisableColor()
		}
	}
	return p
}

// diagnostics prints each diagnostic with its file location and source line.
func (a *App) diagnostics(w io.Writer, file string, diags []compiler.Diagnostic) {
	for _, d := range diags {
		a.out.loc.Fprintf(w, "%s:%d:%d: ", a.rel(file), d.Line, d.Column)
		a.out.fail.Fprint(w, "error: ")
		fmt.Fprintln(w, d.String())
		if d.Snippet != "" {
			a.out.dim.Fprintf(w, "    | %s\n", d.Snippet)
		}
	}
}

func (a *App) status(format string, args ...any) {
	a.out.ok.Fprint(a.Stdout, "✓ ")
	fmt.Fprintf(a.Stdout, format+"\n", args...)
}
