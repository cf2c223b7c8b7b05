package web

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"musicstats/internal/logger"
)

// reloadDelay coalesces the burst of events a single save produces.
const reloadDelay = 250 * time.Millisecond

// Watch reloads the store whenever its library file is written, created or
// renamed into place. It watches the parent directory so that editors and
// exporters that replace the file are seen. Blocks until ctx is cancelled.
func Watch(ctx context.Context, store *Store, log *logger.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(store.Path())
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	log.Debug("Watching %s for changes", target)

	timer := time.NewTimer(reloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(reloadDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("File watcher error: %v", err)

		case <-timer.C:
			snap, err := store.Load()
			if err != nil {
				log.Error("Reload failed, keeping previous library: %v", err)
				continue
			}
			log.Info("Reloaded library (version %d, %d tracks)", snap.Version, snap.Library.Len())
		}
	}
}
