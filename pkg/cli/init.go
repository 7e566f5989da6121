package cli

import (
	"fmt"

	"github.com/pkg/errors"

	"mflow/pkg/project"
)

func (a *App) initCmd(args []string) error {
	var common commonFlags
	fs := a.flagSet("init", &common)
	if err := a.parse(fs, &common, args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return usagef("init takes at most one directory")
	}
	target := a.Dir
	if fs.NArg() == 1 {
		target = a.path(fs.Arg(0))
	}

	ws, err := project.Scaffold(project.DefaultConfig())
	if err != nil {
		return err
	}
	if existing := ws.Conflicts(target); len(existing) > 0 {
		for _, name := range existing {
			a.out.fail.Fprint(a.Stderr, "exists: ")
			fmt.Fprintln(a.Stderr, name)
		}
		return errors.Errorf("refusing to overwrite %s", plural(len(existing), "existing file"))
	}
	if err := ws.PersistTo(target); err != nil {
		return errors.Wrap(err, "writing project")
	}
	for _, name := range ws.List() {
		a.status("created %s", name)
	}
	return nil
}
