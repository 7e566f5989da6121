package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/dnephin/pflag"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"mflow/pkg/compiler"
	"mflow/pkg/project"
	"mflow/pkg/utils"
	"mflow/pkg/workspace"
)

type compileFlags struct {
	commonFlags
	output    string
	minify    bool
	sourcemap bool
	canvas    string
	fps       int
}

func (a *App) compileFlagSet(name string, f *compileFlags) *pflag.FlagSet {
	fs := a.flagSet(name, &f.commonFlags)
	fs.StringVarP(&f.output, "output", "o", "", "output file path")
	fs.BoolVarP(&f.minify, "minify", "m", false, "minify output JavaScript")
	fs.BoolVarP(&f.sourcemap, "sourcemap", "s", false, "generate a source map next to the output")
	fs.StringVar(&f.canvas, "canvas", "", "target canvas element id")
	fs.IntVar(&f.fps, "fps", 0, "animation frame rate")
	return fs
}

// compileJob is one input file and where its output goes.
type compileJob struct {
	input  string
	output string
	opts   compiler.Options
}

// jobs builds one job per input. Flags override the project config.
func (a *App) jobs(fs *pflag.FlagSet, f *compileFlags, cfg *project.Config) ([]compileJob, error) {
	inputs, err := a.inputs(fs.Args(), cfg)
	if err != nil {
		return nil, err
	}
	if f.output != "" && len(inputs) > 1 {
		return nil, usagef("-o cannot be used with %d input files", len(inputs))
	}
	if fs.Changed("fps") && f.fps <= 0 {
		return nil, usagef("--fps must be positive, got %d", f.fps)
	}

	var base compiler.Options
	if cfg != nil {
		base = cfg.CompilerOptions()
	}
	if fs.Changed("minify") {
		base.Minify = f.minify
	}
	if fs.Changed("sourcemap") {
		base.SourceMap = f.sourcemap
	}
	if fs.Changed("canvas") {
		base.CanvasID = f.canvas
	}
	if fs.Changed("fps") {
		base.FPS = f.fps
	}
	base.Logger = &a.log

	jobs := make([]compileJob, len(inputs))
	for i, input := range inputs {
		var output string
		switch {
		case f.output != "":
			output = a.path(f.output)
		case cfg != nil && len(fs.Args()) == 0:
			output = a.path(cfg.Output)
		default:
			output = utils.ReplaceExt(input, ".js")
		}
		opts := base
		opts.SourceName = filepath.Base(input)
		opts.OutputName = filepath.Base(output)
		jobs[i] = compileJob{input: input, output: output, opts: opts}
	}
	return jobs, nil
}

// build compiles src and, on success, writes the output and its source map.
// Outputs whose content is unchanged are left alone, and a source map left
// by an earlier build is removed when this build has none.
func (j compileJob) build(src []byte) (*compiler.Result, error) {
	res := compiler.CompileWith(string(src), j.opts)
	if !res.Success {
		return res, nil
	}

	dir := filepath.Dir(j.output)
	name := filepath.Base(j.output)
	mapName := name + ".map"
	ws := workspace.New()
	if err := ws.LoadFrom(dir, name, mapName); err != nil {
		return res, err
	}
	if err := ws.WriteString(name, res.Output); err != nil {
		return res, err
	}
	if res.SourceMap != nil {
		data, err := res.SourceMap.JSON()
		if err != nil {
			return res, err
		}
		if err := ws.WriteString(mapName, data); err != nil {
			return res, err
		}
	} else if ws.Exists(mapName) {
		if err := ws.Delete(mapName); err != nil {
			return res, err
		}
	}
	return res, errors.Wrap(ws.PersistTo(dir), "writing output")
}

func (j compileJob) buildFile() (*compiler.Result, error) {
	src, err := os.ReadFile(j.input)
	if err != nil {
		return nil, errors.Wrap(err, "reading input")
	}
	return j.build(src)
}

// report prints the outcome of one build and reports whether it succeeded.
func (a *App) report(j compileJob, res *compiler.Result, err error) bool {
	if res != nil && !res.Success {
		a.diagnostics(a.Stderr, j.input, res.Diagnostics)
		a.out.fail.Fprintf(a.Stderr, "✗ %s: %s\n", a.rel(j.input), plural(len(res.Diagnostics), "error"))
		return false
	}
	if err != nil {
		a.out.fail.Fprint(a.Stderr, "error: ")
		fmt.Fprintf(a.Stderr, "%s: %v\n", a.rel(j.input), err)
		return false
	}
	a.status("compiled %s -> %s", a.rel(j.input), a.rel(j.output))
	return true
}

func (a *App) compile(args []string) error {
	var f compileFlags
	var watch bool
	fs := a.compileFlagSet("compile", &f)
	fs.BoolVarP(&watch, "watch", "w", false, "watch and recompile on changes")
	if err := a.parse(fs, &f.commonFlags, args); err != nil {
		return err
	}
	cfg, err := a.config()
	if err != nil {
		return err
	}
	jobs, err := a.jobs(fs, &f, cfg)
	if err != nil {
		return err
	}
	if watch {
		if len(jobs) != 1 {
			return usagef("--watch takes a single input file")
		}
		return a.watch(jobs[0])
	}

	type outcome struct {
		res *compiler.Result
		err error
	}
	outcomes := make([]outcome, len(jobs))

	g, ctx := errgroup.WithContext(a.ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := job.buildFile()
			outcomes[i] = outcome{res, err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := false
	for i, o := range outcomes {
		if !a.report(jobs[i], o.res, o.err) {
			failed = true
		}
	}
	if failed {
		return errFailed
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
