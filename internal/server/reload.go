package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ppiankov/tariffwatch/internal/logging"
)

const defaultDebounce = 500 * time.Millisecond

// PolicyReloader re-reads policy from disk.
type PolicyReloader interface {
	ReloadPolicy() error
}

// Reloader watches the policy file for changes and triggers hot-reload.
type Reloader struct {
	watcher  *fsnotify.Watcher
	target   PolicyReloader
	path     string
	logger   *slog.Logger
	debounce time.Duration
}

// NewReloader creates a file watcher for path. The parent directory is
// watched so that editors which replace the file by rename are picked up.
func NewReloader(target PolicyReloader, path string, logger *slog.Logger) (*Reloader, error) {
	if path == "" {
		return nil, fmt.Errorf("no policy file to watch")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("policy file: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", abs, err)
	}

	return &Reloader{
		watcher:  watcher,
		target:   target,
		path:     abs,
		logger:   logger.With(slog.String("component", "reload")),
		debounce: defaultDebounce,
	}, nil
}

// Run watches for file changes and reloads policy. Blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	// Debounce: wait after the last write before reloading
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != r.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(r.debounce, func() {
					if err := r.target.ReloadPolicy(); err != nil {
						r.logger.Error("hot-reload failed", "path", r.path, "error", err)
					} else {
						r.logger.Info("hot-reload: policy reloaded", "path", r.path)
					}
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("file watcher error", "error", err)
		}
	}
}
