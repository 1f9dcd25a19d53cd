// Package watch reports changes to one file in a directory after the
// writes to it have settled.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/keex74/ElmaReplayIO/internal/cache"
)

// Handler is called with the path of the changed file. Calls never
// overlap.
type Handler func(ctx context.Context, path string)

// Watcher watches a directory for writes to a single file name. The game
// writes a replay in several steps, so a burst of events resets a timer
// and the handler runs once the file has been quiet for the debounce
// interval.
type Watcher struct {
	dir      string
	name     string
	debounce time.Duration
	handler  Handler
	logger   *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once
	fired     cache.SafeCounter
}

// New creates a watcher for dir/name. A nil logger discards watcher errors.
func New(dir, name string, debounce time.Duration, h Handler, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		dir:      dir,
		name:     name,
		debounce: debounce,
		handler:  h,
		logger:   logger,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the directory is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Fired returns how many times the handler has been called.
func (w *Watcher) Fired() int {
	return w.fired.Value()
}

// Run watches until ctx is cancelled. A pending debounced change is
// dropped on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.readyOnce.Do(func() { close(w.ready) })
	w.logger.Debug("Watching for changes", "dir", w.dir, "file", w.name, "debounce", w.debounce)

	settled := make(chan struct{}, 1)
	timer := time.AfterFunc(time.Hour, func() {
		select {
		case settled <- struct{}{}:
		default:
		}
	})
	timer.Stop()
	defer timer.Stop()

	var path string
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.matches(ev) {
				continue
			}
			path = filepath.Join(w.dir, filepath.Base(ev.Name))
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", "dir", w.dir, "error", err)

		case <-settled:
			w.fired.Inc()
			w.handler(ctx, path)
		}
	}
}

func (w *Watcher) matches(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	return strings.EqualFold(filepath.Base(ev.Name), w.name)
}
