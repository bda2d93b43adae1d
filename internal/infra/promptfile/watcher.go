package promptfile

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 200 * time.Millisecond

// Reloader re-reads the prompt template from disk.
type Reloader interface {
	ReloadTemplate() error
}

// Watcher triggers a template reload whenever the template file changes.
type Watcher struct {
	path     string
	reloader Reloader
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// New watches the directory holding path. Editors often replace files by
// rename, so the directory is watched rather than the file.
func New(path string, reloader Reloader, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve template path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}
	return &Watcher{
		path:     abs,
		reloader: reloader,
		logger:   logger.With("component", "promptfile.watcher", "path", abs),
		watcher:  fw,
		debounce: defaultDebounce,
	}, nil
}

// Start blocks until ctx is cancelled, reloading after each burst of changes.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("template watcher started")
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("template watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			if err := w.reloader.ReloadTemplate(); err != nil {
				w.logger.Warn("template reload failed, keeping previous template", "error", err)
				continue
			}
			w.logger.Info("template reloaded")

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// Stop closes the underlying watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
