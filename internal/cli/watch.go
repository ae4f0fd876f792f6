package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/iconbatch/internal/batch"
	"github.com/shinji-kodama/iconbatch/internal/config"
	"github.com/shinji-kodama/iconbatch/internal/model"
	"github.com/shinji-kodama/iconbatch/internal/texture"
)

// watchDebounce is the quiet period after the last relevant file change
// before a new run starts. Editors and exporters often write a file several
// times in quick succession.
const watchDebounce = 500 * time.Millisecond

// NewWatchCommand creates the "watch" cobra command.
func NewWatchCommand() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "watch [models-folder]",
		Short: "Regenerate icons whenever models or textures change",
		Long: `Run a batch once, then watch the models folder and the textures folder
(including per-model texture subfolders) and run again after .geo.json or
.png files change. Runs never overlap. Stop with Ctrl+C.

Examples:
  iconbatch watch ./pack/models/blocks
  iconbatch watch --camera isometric_left ./pack/models/blocks`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, flags)
		},
	}

	flags.register(cmd)
	return cmd
}

// runWatch runs the initial batch and then re-runs it on file changes
// until the command's context is cancelled.
func runWatch(cmd *cobra.Command, args []string, flags *runFlags) error {
	ctx := cmd.Context()

	// Step 1: Resolve options and the folders to watch. A missing models
	// folder is fatal; an empty one is not, models may appear later.
	opts, err := resolveOptions(cmd, args, flags)
	if err != nil {
		return err
	}
	modelsDir, err := batch.ResolveModelsDir(opts.ModelsFolder)
	if err != nil {
		return batchError(err)
	}
	texturesDir := opts.TexturesFolder
	if texturesDir == "" {
		texturesDir = batch.DefaultTexturesDir(batch.PackRoot(modelsDir))
	}

	// Step 2: Register the watches.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to start file watcher", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range watchDirs(modelsDir, texturesDir) {
		if addErr := watcher.Add(dir); addErr != nil {
			logger.Warn("cannot watch folder", "dir", dir, "err", addErr)
			continue
		}
		VerboseLog("Watching %s", dir)
	}

	// Step 3: Initial run, then one run per debounced batch of changes.
	run := func(ctx context.Context) {
		watchRun(ctx, cmd, opts, flags.strict)
	}
	run(ctx)
	logger.Info("watching for changes", "models", modelsDir, "textures", texturesDir)

	return debounceChanges(ctx, watcher.Events, watcher.Errors, watchDebounce,
		func(ev fsnotify.Event) {
			// New texture subfolders hold variants of their model.
			if ev.Has(fsnotify.Create) && filepath.Dir(ev.Name) == texturesDir && isDir(ev.Name) {
				if addErr := watcher.Add(ev.Name); addErr == nil {
					VerboseLog("Watching %s", ev.Name)
				}
			}
		},
		run,
	)
}

// watchRun executes one batch inside the watch loop. Errors are logged and
// never stop watching.
func watchRun(ctx context.Context, cmd *cobra.Command, opts config.Options, strict bool) {
	plan, summary, err := runBatch(ctx, opts, cmd.ErrOrStderr())
	if summary != nil {
		printGenerateResult(cmd.OutOrStdout(), plan, summary)
	}
	switch {
	case errors.Is(err, context.Canceled):
	case errors.Is(err, batch.ErrNoModels):
		logger.Warn("no models yet, waiting for changes", "dir", opts.ModelsFolder)
	case err != nil:
		logger.Error("run failed", "err", err)
	case strict && summary.Failed() > 0:
		logger.Error("icons failed", "failed", summary.Failed(), "total", summary.Total)
	}
}

// watchDirs returns the folders whose contents affect a run: the models
// folder, the textures folder and each texture subfolder.
func watchDirs(modelsDir, texturesDir string) []string {
	dirs := []string{modelsDir}
	if !isDir(texturesDir) {
		return dirs
	}
	dirs = append(dirs, texturesDir)

	entries, err := os.ReadDir(texturesDir)
	if err != nil {
		return dirs
	}
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(texturesDir, e.Name()))
		}
	}
	return dirs
}

// isRelevantChange reports whether ev can change the output of a run.
// Chmod-only events are ignored.
func isRelevantChange(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return strings.HasSuffix(ev.Name, batch.ModelExt) || strings.HasSuffix(ev.Name, texture.Ext)
}

// debounceChanges calls trigger once no relevant event has arrived for
// delay after the last one. Every event is passed to observe first.
// trigger runs on the calling goroutine, so runs never overlap; events that
// arrive during a run start a new quiet period afterwards. It returns nil
// when ctx is done or the event channel is closed.
func debounceChanges(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error,
	delay time.Duration, observe func(fsnotify.Event), trigger func(context.Context)) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if observe != nil {
				observe(ev)
			}
			if !isRelevantChange(ev) {
				continue
			}
			VerboseLog("Change detected: %s", ev)
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			fire = timer.C

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "err", err)

		case <-fire:
			fire = nil
			trigger(ctx)
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
