package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events an editor's atomic save
// produces into a single reload notification.
const watchDebounce = 500 * time.Millisecond

// WatchConfig watches the given config files and returns a channel that
// fires once per debounced change. Editors that replace the file on save
// are handled by watching the parent directory and filtering by name.
// The watcher goroutine lives until ctx is canceled.
func WatchConfig(ctx context.Context, files ...string) <-chan struct{} {
	reloadCh := make(chan struct{}, 1)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("Failed to create fsnotify watcher", "error", err)
		return reloadCh
	}

	watched := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			slog.Warn("Could not resolve watch path", "file", file, "error", err)
			continue
		}
		watched[absPath] = true
		dirs[filepath.Dir(absPath)] = true
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			slog.Warn("Could not watch config directory", "dir", dir, "error", err)
		}
	}

	go func() {
		defer watcher.Close()
		defer close(reloadCh)

		var debounce *time.Timer

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
					continue
				}
				abs, err := filepath.Abs(event.Name)
				if err != nil || !watched[abs] {
					continue
				}

				if debounce != nil {
					debounce.Stop()
				}
				name := event.Name
				debounce = time.AfterFunc(watchDebounce, func() {
					slog.Info("Configuration change detected", "file", name)
					select {
					case reloadCh <- struct{}{}:
					default:
					}
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("Config watcher error", "error", err)
			}
		}
	}()

	return reloadCh
}
