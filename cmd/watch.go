package cmd

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"utsc/common"
	"utsc/logging"
	"utsc/mods"
	"utsc/session"

	"github.com/ComedicChimera/olive"
	"github.com/fsnotify/fsnotify"
)

// rebuildDelay is how long the watcher waits for further changes before
// rebuilding: editors often write a file several times on save.
const rebuildDelay = 150 * time.Millisecond

// watchedExts are the extensions of sources that trigger a rebuild
var watchedExts = map[string]struct{}{
	common.SrcFileExtension: {},
	".uvue":                 {},
	".vue":                  {},
}

// execDevCommand builds every plugin of a project for development and then
// rebuilds plugins whenever their sources change.  One session is shared by
// all builds of the process.
func execDevCommand(result *olive.ArgParseResult, loglevel int) int {
	projectPath, ok := absPrimaryArg(result)
	if !ok {
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	env, ok := newBuildEnv(ctx, projectPath, result, loglevel, true)
	if !ok {
		return 1
	}
	defer env.close()

	pkgs, err := mods.FindPackages(env.cfg.InputDir)
	if err != nil {
		logging.PrintErrorMessage("Project Error", err)
		return 1
	}

	sess := session.New()
	optsFor := env.optionsFor(uniModuleIDs(pkgs))

	for _, pr := range env.compiler.BuildProject(ctx, sess, env.platform, pkgs, true, optsFor) {
		env.report(pr)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.PrintErrorMessage("Watch Error", err)
		return 1
	}
	defer watcher.Close()

	for _, area := range []string{common.UniModulesDir, common.UTSSDKDir} {
		if err := addWatchDirs(watcher, filepath.Join(env.cfg.InputDir, area)); err != nil {
			logging.PrintErrorMessage("Watch Error", err)
			return 1
		}
	}

	env.reporter.ReportInfo("Watching", env.cfg.InputDir)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	pending := make(map[string]*mods.Package)

	for {
		select {
		case <-ctx.Done():
			return 0
		case event, ok := <-watcher.Events:
			if !ok {
				return 0
			}

			if event.Has(fsnotify.Create) {
				if finfo, err := os.Stat(event.Name); err == nil && finfo.IsDir() {
					addWatchDirs(watcher, event.Name)
				}
			}

			if pkg := changedPackage(event.Name, env.platform); pkg != nil {
				pending[pkg.Dir] = pkg
				timer.Reset(rebuildDelay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return 0
			}

			env.logger.Warn("file watcher error", "err", err)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}

			changed := make([]*mods.Package, 0, len(pending))
			for _, pkg := range pending {
				changed = append(changed, pkg)
			}
			sort.Slice(changed, func(i, j int) bool { return changed[i].Dir < changed[j].Dir })
			pending = make(map[string]*mods.Package)

			for _, pr := range env.compiler.BuildProject(ctx, sess, env.platform, changed, true, optsFor) {
				env.report(pr)
			}
		}
	}
}

// addWatchDirs adds root and every directory below it to the watcher.  A
// missing root is ignored.
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return watcher.Add(path)
		}

		return nil
	})

	if os.IsNotExist(err) {
		return nil
	}

	return err
}

// changedPackage returns the package whose build is affected by a change to
// path or nil if the change is irrelevant for the platform
func changedPackage(path string, platform common.Platform) *mods.Package {
	if common.IsForeignTo(path, platform) {
		return nil
	}

	base := filepath.Base(path)
	relevant := false
	if _, ok := watchedExts[filepath.Ext(base)]; ok {
		relevant = true
	} else {
		for _, name := range platform.DepFileNames() {
			if base == name {
				relevant = true
				break
			}
		}
	}

	if !relevant {
		return nil
	}

	return mods.Resolve(path)
}
