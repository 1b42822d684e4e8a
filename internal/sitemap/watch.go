package sitemap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces editor write bursts into one sync.
const debounceWindow = 250 * time.Millisecond

// Watch re-runs the synchronizer whenever the definition file at path
// changes, until the context is cancelled. Parse failures are logged and
// the previous catalog state is left untouched.
func (s *Synchronizer) Watch(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("watch requires a sitemap definition file path")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	s.logger.Info("watching sitemap definition", slog.String("path", path))

	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", slog.String("error", err.Error()))

		case <-pending:
			def, err := Load(path)
			if err != nil {
				s.logger.Error("failed to reload sitemap definition", slog.String("error", err.Error()))
				continue
			}
			if _, err := s.Sync(def); err != nil {
				s.logger.Error("failed to sync sitemap definition", slog.String("error", err.Error()))
			}
		}
	}
}
