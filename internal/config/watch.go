package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for a burst of editor writes to
// settle before signalling.
const DefaultDebounce = 150 * time.Millisecond

// Watch signals on the returned channel whenever the file at path is
// created, written, removed or renamed. The parent directory is watched so
// editors that replace the file atomically are still seen. The channel is
// closed when ctx ends.
func Watch(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger) (<-chan struct{}, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer w.Close()
		debounceConfigEvents(ctx, w, filepath.Clean(path), debounce, out, logger)
	}()
	return out, nil
}

func debounceConfigEvents(ctx context.Context, w *fsnotify.Watcher, path string, debounce time.Duration, out chan<- struct{}, logger *slog.Logger) {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !relevantEvent(ev, path) {
				continue
			}
			logger.Debug("config file changed", "path", ev.Name, "op", ev.Op.String())
			if !timer.Stop() && pending {
				select {
				case <-timer.C:
				default:
				}
			}
			pending = true
			timer.Reset(debounce)
		case <-timer.C:
			if pending {
				select {
				case out <- struct{}{}:
				default:
				}
			}
			pending = false
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}

func relevantEvent(ev fsnotify.Event, path string) bool {
	if filepath.Clean(ev.Name) != path {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
