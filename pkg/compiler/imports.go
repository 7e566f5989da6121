package compiler

import (
	"path"
	"strings"

	"github.com/pkg/errors"
)

// ReadFunc loads the source of one file by slash-separated path.
type ReadFunc func(name string) (string, error)

// ResolveImports follows the import statements of entry transitively and
// returns every reachable file, dependencies before the files that import
// them, entry last. Import paths are relative to the importing file.
//
// Files that fail to parse are still followed as far as their imports could
// be read; their diagnostics are left to the compile step.
func ResolveImports(entry string, read ReadFunc) ([]string, error) {
	r := &importResolver{
		read:     read,
		visiting: make(map[string]bool),
		done:     make(map[string]bool),
	}
	if err := r.visit(path.Clean(entry)); err != nil {
		return nil, err
	}
	return r.order, nil
}

type importResolver struct {
	read     ReadFunc
	visiting map[string]bool // current import chain, for cycle detection
	done     map[string]bool // fully processed files; diamonds are visited once
	stack    []string
	order    []string
}

func (r *importResolver) visit(name string) error {
	if r.done[name] {
		return nil
	}
	if r.visiting[name] {
		return errors.Errorf("import cycle: %s -> %s", strings.Join(r.stack, " -> "), name)
	}

	src, err := r.read(name)
	if err != nil {
		if len(r.stack) == 0 {
			return errors.Wrapf(err, "reading %s", name)
		}
		return errors.Wrapf(err, "%s imports %s", r.stack[len(r.stack)-1], name)
	}

	r.visiting[name] = true
	r.stack = append(r.stack, name)
	for _, dep := range importPaths(src) {
		if err := r.visit(path.Join(path.Dir(name), dep)); err != nil {
			return err
		}
	}
	r.stack = r.stack[:len(r.stack)-1]
	delete(r.visiting, name)

	r.done[name] = true
	r.order = append(r.order, name)
	return nil
}

// importPaths lists the paths named by the top-level imports of src.
func importPaths(src string) []string {
	prog, _ := Parse(Lex(src), src)
	var paths []string
	for _, s := range prog.Body {
		if imp, ok := s.(*ImportStmt); ok {
			paths = append(paths, imp.Path)
		}
	}
	return paths
}
