package compiler

import (
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultCanvasID   = "mflow-canvas"
	DefaultSourceName = "main.mflow"
	DefaultOutputName = "main.js"
	defaultTick       = "0.016"
)

// Options tunes code generation. The zero value produces the standard output.
type Options struct {
	CanvasID   string // element id the output draws into
	FPS        int    // runtime clock rate; 0 keeps the 0.016s tick
	Minify     bool   // drop comments, blank lines and indentation
	SourceMap  bool
	SourceName string // recorded in the source map
	OutputName string // recorded in the source map and its URL trailer
	Logger     *zerolog.Logger
}

func (o Options) canvasID() string {
	if o.CanvasID == "" {
		return DefaultCanvasID
	}
	return o.CanvasID
}

func (o Options) tick() string {
	if o.FPS <= 0 {
		return defaultTick
	}
	return formatNumber(math.Round(10000/float64(o.FPS)) / 10000)
}

func (o Options) sourceName() string {
	if o.SourceName == "" {
		return DefaultSourceName
	}
	return o.SourceName
}

func (o Options) outputName() string {
	if o.OutputName == "" {
		return DefaultOutputName
	}
	return o.OutputName
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

// Result is the outcome of one compilation. Output is empty unless Success.
type Result struct {
	Success     bool
	Output      string
	SourceMap   *SourceMap // set when Options.SourceMap is on
	Diagnostics []Diagnostic
}

// Messages renders the diagnostics in their user-visible form.
func (r *Result) Messages() []string { return Strings(r.Diagnostics) }

// Compile translates MFlow source with default options.
func Compile(src string) *Result {
	return CompileWith(src, Options{})
}

// CompileWith runs lexing, parsing, scope analysis and code generation.
// Semantic analysis is skipped when parsing reported errors, since a
// dropped declaration would otherwise surface as spurious undefined names.
func CompileWith(src string, opts Options) *Result {
	log := opts.logger()
	started := time.Now()

	prog, diags := check(src, log)
	if len(diags) > 0 {
		log.Info().Int("diagnostics", len(diags)).Dur("elapsed", time.Since(started)).Msg("compilation failed")
		return &Result{Diagnostics: diags}
	}

	cg := newCodeGen(opts)
	cg.program(prog)
	out := cg.e.String()
	res := &Result{Success: true, Diagnostics: []Diagnostic{}}

	if opts.SourceMap {
		res.SourceMap = NewSourceMap(opts.outputName(), opts.sourceName(), cg.e.Mappings(), strings.Count(out, "\n"))
		out += "//# sourceMappingURL=" + opts.outputName() + ".map\n"
	}
	res.Output = out

	log.Debug().Int("bytes", len(out)).Msg("generated")
	log.Info().Dur("elapsed", time.Since(started)).Msg("compilation succeeded")
	return res
}

// Check reports every diagnostic for src without generating code.
func Check(src string) []Diagnostic {
	_, diags := check(src, zerolog.Nop())
	return diags
}

func check(src string, log zerolog.Logger) (*Program, []Diagnostic) {
	tokens := Lex(src)
	log.Debug().Int("tokens", len(tokens)).Msg("lexed")

	p := NewParser(tokens, src, log)
	prog := p.ParseProgram()
	if diags := p.Diagnostics(); len(diags) > 0 {
		return prog, diags
	}
	log.Debug().Int("statements", len(prog.Body)).Msg("parsed")

	diags := NewAnalyzer(log).Analyze(prog)
	attachSnippets(diags, src)
	return prog, diags
}

// attachSnippets fills in the source line for diagnostics that lack one.
func attachSnippets(diags []Diagnostic, src string) {
	if len(diags) == 0 {
		return
	}
	lines := strings.Split(src, "\n")
	for i := range diags {
		if idx := diags[i].Line - 1; diags[i].Snippet == "" && idx >= 0 && idx < len(lines) {
			diags[i].Snippet = strings.TrimSpace(lines[idx])
		}
	}
}
