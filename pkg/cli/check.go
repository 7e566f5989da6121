package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sanity-io/litter"

	"mflow/pkg/compiler"
	"mflow/pkg/workspace"
)

func (a *App) check(args []string) error {
	var common commonFlags
	var dumpAST bool
	fs := a.flagSet("check", &common)
	fs.BoolVar(&dumpAST, "ast", false, "print the syntax tree of each file")
	if err := a.parse(fs, &common, args); err != nil {
		return err
	}
	cfg, err := a.config()
	if err != nil {
		return err
	}
	inputs, err := a.inputs(fs.Args(), cfg)
	if err != nil {
		return err
	}

	failed := false
	seen := make(map[string]bool)
	caches := make(map[string]*sourceCache)
	for _, input := range inputs {
		root := filepath.Dir(input)
		cache := caches[root]
		if cache == nil {
			cache = &sourceCache{root: root, ws: workspace.New()}
			caches[root] = cache
		}
		names, err := compiler.ResolveImports(filepath.Base(input), cache.read)
		if err != nil {
			a.out.fail.Fprint(a.Stderr, "error: ")
			fmt.Fprintln(a.Stderr, errors.Wrap(err, a.rel(input)))
			failed = true
			continue
		}
		for _, name := range names {
			file := filepath.Join(root, filepath.FromSlash(name))
			if seen[file] {
				continue
			}
			seen[file] = true
			if !a.checkFile(file, cache, name, dumpAST) {
				failed = true
			}
		}
	}
	if failed {
		return errFailed
	}
	return nil
}

// sourceCache reads sources below root through a workspace, so a file that
// several inputs import is read from disk once. Names that climb out of root
// are read from disk every time.
type sourceCache struct {
	root string
	ws   *workspace.Workspace
}

func (c *sourceCache) read(name string) (string, error) {
	if c.ws.Exists(name) {
		return c.ws.ReadString(name)
	}
	data, err := os.ReadFile(filepath.Join(c.root, filepath.FromSlash(name)))
	if err != nil {
		return "", err
	}
	if workspace.ValidPath(name) {
		// over quota the file is simply not cached
		_ = c.ws.Write(name, data)
	}
	return string(data), nil
}

func (a *App) checkFile(file string, cache *sourceCache, name string, dumpAST bool) bool {
	src, err := cache.read(name)
	if err != nil {
		a.out.fail.Fprint(a.Stderr, "error: ")
		fmt.Fprintln(a.Stderr, err)
		return false
	}

	if dumpAST {
		prog, _ := compiler.Parse(compiler.Lex(src), src)
		fmt.Fprintf(a.Stdout, "%s:\n%s\n", a.rel(file), litter.Options{HidePrivateFields: true}.Sdump(prog))
	}

	diags := compiler.Check(src)
	if len(diags) > 0 {
		a.diagnostics(a.Stderr, file, diags)
		a.out.fail.Fprintf(a.Stderr, "✗ %s: %s\n", a.rel(file), plural(len(diags), "error"))
		return false
	}
	a.log.Debug().Str("file", a.rel(file)).Msg("checked")
	a.status("%s ok", a.rel(file))
	return true
}

func (a *App) format(args []string) error {
	var common commonFlags
	var write bool
	fs := a.flagSet("format", &common)
	fs.BoolVarP(&write, "write", "w", false, "write the result back to the file")
	if err := a.parse(fs, &common, args); err != nil {
		return err
	}
	cfg, err := a.config()
	if err != nil {
		return err
	}
	inputs, err := a.inputs(fs.Args(), cfg)
	if err != nil {
		return err
	}

	failed := false
	for _, input := range inputs {
		data, err := os.ReadFile(input)
		if err != nil {
			a.out.fail.Fprint(a.Stderr, "error: ")
			fmt.Fprintln(a.Stderr, err)
			failed = true
			continue
		}
		formatted, err := compiler.Format(string(data))
		if err != nil {
			a.out.fail.Fprint(a.Stderr, "error: ")
			fmt.Fprintf(a.Stderr, "%s: %v\n", a.rel(input), err)
			failed = true
			continue
		}

		if !write {
			fmt.Fprint(a.Stdout, formatted)
			continue
		}
		if formatted == string(data) {
			a.log.Debug().Str("file", a.rel(input)).Msg("already formatted")
			continue
		}
		if err := os.WriteFile(input, []byte(formatted), 0o644); err != nil {
			return errors.Wrapf(err, "writing %s", a.rel(input))
		}
		a.status("formatted %s", a.rel(input))
	}
	if failed {
		return errFailed
	}
	return nil
}
