package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"mflow/pkg/utils"
	"mflow/pkg/workspace"
)

// debounceDelay coalesces the burst of events editors produce on save.
const debounceDelay = 50 * time.Millisecond

func (a *App) watchCmd(args []string) error {
	var f compileFlags
	fs := a.compileFlagSet("watch", &f)
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
		return usagef("watch takes a single input file")
	}
	return a.watch(jobs[0])
}

// watch builds the job once, then again whenever the input's content
// changes, until the context is cancelled. Build failures are reported and
// watching continues.
func (a *App) watch(j compileJob) error {
	full, dir, err := utils.GetPathInfo(a.Dir, j.input)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "starting watcher")
	}
	defer w.Close()

	// Editors often replace the file instead of writing it, so the
	// directory is watched and events are filtered by name.
	if err := w.Add(dir); err != nil {
		return errors.Wrapf(err, "watching %s", a.rel(dir))
	}

	// the last source built, so saves that change nothing are skipped
	sources := workspace.New()
	name := filepath.Base(full)
	rebuild := func() {
		src, err := os.ReadFile(full)
		if err != nil {
			a.log.Warn().Err(err).Str("file", a.rel(full)).Msg("read failed")
			return
		}
		prev, err := sources.Hash(name)
		built := err == nil
		if err := sources.Write(name, src); err != nil {
			a.log.Warn().Err(err).Str("file", a.rel(full)).Msg("staging failed")
			return
		}
		if sum, _ := sources.Hash(name); built && sum == prev {
			a.log.Debug().Str("file", a.rel(full)).Msg("content unchanged, skipping")
			return
		}
		res, err := j.build(src)
		a.report(j, res, err)
	}

	rebuild()
	a.log.Info().Str("file", a.rel(full)).Msg("watching")

	var debounce <-chan time.Time
	for {
		select {
		case <-a.ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != full || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			a.log.Debug().Str("op", ev.Op.String()).Msg("change detected")
			debounce = time.After(debounceDelay)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.log.Error().Err(err).Msg("watcher error")
		case <-debounce:
			debounce = nil
			rebuild()
		}
	}
}
