package cli

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"mflow/pkg/project"
	"mflow/pkg/workspace"
)

const pageName = "index.html"

func (a *App) runCmd(args []string) error {
	var f compileFlags
	var noOpen bool
	var outDir string
	fs := a.compileFlagSet("run", &f)
	fs.BoolVar(&noOpen, "no-open", false, "write the page without opening a browser")
	fs.StringVar(&outDir, "out-dir", "", "directory for index.html and the script (default dist)")
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
	if len(jobs) != 1 {
		return usagef("run takes a single input file")
	}
	job := jobs[0]

	switch {
	case outDir != "":
		outDir = a.path(outDir)
	case cfg != nil:
		outDir = a.path(filepath.Dir(cfg.Output))
	default:
		outDir = a.path("dist")
	}
	job.output = filepath.Join(outDir, filepath.Base(job.output))

	res, err := job.buildFile()
	if !a.report(job, res, err) {
		return errFailed
	}

	pageCfg := project.DefaultConfig()
	if cfg != nil {
		pageCfg = *cfg
	}
	if job.opts.CanvasID != "" {
		pageCfg.Canvas.ID = job.opts.CanvasID
	}
	title := strings.TrimSuffix(filepath.Base(job.input), filepath.Ext(job.input))
	page, err := project.PageFor(pageCfg, title, filepath.Base(job.output)).Render()
	if err != nil {
		return err
	}

	ws := workspace.New()
	if err := ws.LoadFrom(outDir, pageName); err != nil {
		return err
	}
	if err := ws.Write(pageName, page); err != nil {
		return err
	}
	if err := ws.PersistTo(outDir); err != nil {
		return errors.Wrap(err, "writing page")
	}
	target := filepath.Join(outDir, pageName)
	a.status("wrote %s", a.rel(target))

	if noOpen {
		return nil
	}
	return errors.Wrap(a.Open(target), "opening browser")
}
