package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// reloadOps are the events on the config file that trigger a reload. Editors
// that save atomically write a temp file and rename it over the config, which
// shows up as Create or Rename on the target name rather than Write.
const reloadOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Watch calls onChange with the newly loaded Config each time the file at
// path changes, until ctx is cancelled.
//
// The parent directory is watched rather than the file, so the watch
// survives the file being replaced. A reload that fails (bad YAML, invalid
// values, file briefly missing) is logged and the previous config stays
// active; onChange is not called.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("config: watch dir: %w", err)
	}

	slog.Info("config: watching for changes", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isReload(event, target) {
				continue
			}

			cfg, err := Load(target)
			if err != nil {
				slog.Warn("config: reload failed, keeping previous config",
					"path", target, "op", event.Op.String(), "err", err)
				continue
			}

			slog.Info("config: reloaded", "path", target,
				"default_ramp_degrees", cfg.Calculator.DefaultRampDegrees,
				"rod_ratio_estimate", cfg.Calculator.RodRatioEstimate,
			)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// isReload reports whether event touches target with a reload op. Events for
// sibling files, such as the editor's temp file, are ignored.
func isReload(event fsnotify.Event, target string) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || filepath.Clean(name) != target {
		return false
	}
	return event.Op&reloadOps != 0
}
