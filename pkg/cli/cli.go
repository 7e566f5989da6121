// Package cli implements the mflow command: compile, watch, run, check,
// format and init.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dnephin/pflag"
	"github.com/pkg/browser"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"mflow/pkg/project"
	"mflow/pkg/utils"
)

// errFailed marks a run whose problems were already reported to the user.
var errFailed = errors.New("failed")

// usageError is reported with the command's usage and exit status 2.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{fmt.Sprintf(format, args...)}
}

type command struct {
	usage string
	short string
	run   func(a *App, args []string) error
}

var commands = map[string]command{
	"compile": {"compile [flags] [file...]", "Compile MFlow to JavaScript", (*App).compile},
	"watch":   {"watch [flags] [file]", "Watch and recompile on changes", (*App).watchCmd},
	"run":     {"run [flags] [file]", "Compile and open the program in a browser", (*App).runCmd},
	"check":   {"check [flags] [file...]", "Validate a program without compiling", (*App).check},
	"format":  {"format [flags] [file...]", "Format MFlow code", (*App).format},
	"init":    {"init [dir]", "Create a new MFlow project", (*App).initCmd},
}

// App is one invocation of the mflow command.
type App struct {
	Dir    string // working directory; relative paths and the config resolve here
	Stdout io.Writer
	Stderr io.Writer
	Open   func(path string) error // opens a generated page; browser.OpenFile by default

	ctx   context.Context
	log   zerolog.Logger
	out   palette
	usage string // usage line of the running command
}

// Run executes the mflow command line in the current directory and returns
// the process exit status.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(stderr, "mflow:", err)
		return 1
	}
	app := &App{Dir: dir, Stdout: stdout, Stderr: stderr}
	return app.Run(ctx, args)
}

func (a *App) Run(ctx context.Context, args []string) int {
	a.ctx = ctx
	a.log = zerolog.Nop()
	a.out = newPalette(false)
	if a.Open == nil {
		browser.Stdout = a.Stdout
		browser.Stderr = a.Stderr
		a.Open = browser.OpenFile
	}

	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(a.Stdout)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(a.Stderr, "mflow: unknown command %q\n\n", args[0])
		printUsage(a.Stderr)
		return 2
	}

	a.usage = cmd.usage
	err := cmd.run(a, args[1:])
	switch e := errors.Cause(err).(type) {
	case nil:
		return 0
	case usageError:
		fmt.Fprintf(a.Stderr, "mflow %s: %s\n", args[0], e.msg)
		fmt.Fprintf(a.Stderr, "usage: mflow %s\n", cmd.usage)
		return 2
	default:
		if err == pflag.ErrHelp {
			return 0
		}
		if e != errFailed {
			a.out.fail.Fprintf(a.Stderr, "error: ")
			fmt.Fprintln(a.Stderr, err)
		}
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: mflow <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-26s %s\n", commands[name].usage, commands[name].short)
	}
}

// commonFlags are accepted by every compiling command.
type commonFlags struct {
	verbose bool
	noColor bool
}

func (c *commonFlags) register(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.verbose, "verbose", "v", false, "verbose logging and error messages")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colored output")
}

func (a *App) flagSet(name string, common *commonFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.Stderr, "usage: mflow %s\n", a.usage)
		fs.PrintDefaults()
	}
	common.register(fs)
	return fs
}

// parse parses the flag set and applies the common flags.
func (a *App) parse(fs *pflag.FlagSet, common *commonFlags, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return err
		}
		return usageError{err.Error()}
	}

	level := zerolog.WarnLevel
	if common.verbose {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{Out: zerolog.SyncWriter(a.Stderr), NoColor: common.noColor}
	a.log = zerolog.New(console).Level(level).With().Timestamp().Logger()
	a.out = newPalette(common.noColor)
	return nil
}

// path resolves a command-line path against the working directory.
func (a *App) path(p string) string {
	full, _, err := utils.GetPathInfo(a.Dir, p)
	if err != nil {
		return p
	}
	return full
}

// rel shortens p for display when it lies under the working directory.
func (a *App) rel(p string) string {
	if r, ok := strings.CutPrefix(p, a.Dir+string(os.PathSeparator)); ok {
		return r
	}
	return p
}

// config loads the project config, if any.
func (a *App) config() (*project.Config, error) {
	cfg, err := project.LoadConfig(a.Dir)
	if errors.Cause(err) == project.ErrNoConfig {
		a.log.Debug().Msg("no project config")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// inputs returns the files named on the command line, falling back to the
// config entry when there are none.
func (a *App) inputs(args []string, cfg *project.Config) ([]string, error) {
	if len(args) > 0 {
		files := make([]string, len(args))
		for i, arg := range args {
			files[i] = a.path(arg)
		}
		return files, nil
	}
	if cfg == nil {
		return nil, usagef("no input file and no %s", project.ConfigFile)
	}
	return []string{a.path(cfg.Entry)}, nil
}
