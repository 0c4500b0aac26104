// Package watcher provides filesystem watching for live luminosity
// recomputation. It watches the search root and its run folders and
// fires a debounced callback whenever data files appear or disappear.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hps-dq/lumi/pkg/lumi/logging"
)

// logger is the package-level logger for watch operations.
var logger = logging.Get("watcher")

// DefaultDebounce is the quiet period before the change callback fires.
// EVIO files land in bursts; one recompute per burst is enough.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a search root for run-folder changes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	debounce time.Duration
	onChange func()
}

// New creates a Watcher for root. onChange is invoked (debounced) after
// each burst of filesystem events under the root or its subdirectories.
func New(root string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		fsw:      fsw,
		root:     root,
		debounce: debounce,
		onChange: onChange,
	}, nil
}

// Start adds watches for the root and its immediate subdirectories.
// New subdirectories created later are picked up from create events.
func (w *Watcher) Start() error {
	absRoot, err := filepath.Abs(w.root)
	if err != nil {
		return err
	}
	w.root = absRoot

	if err := w.fsw.Add(absRoot); err != nil {
		return err
	}

	entries, err := os.ReadDir(absRoot)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(absRoot, entry.Name())
		if err := w.fsw.Add(path); err != nil {
			logger.Warn("cannot watch folder", "path", path, "error", err)
		}
	}

	logger.Info("watching for changes", "root", absRoot)
	return nil
}

// Run processes events until the context is cancelled.
// It blocks, so callers usually run it on the main goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)

		case <-fire:
			fire = nil
			if w.onChange != nil {
				w.onChange()
			}
		}
	}
}

// handleEvent adds a watch for newly created directories under the root.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	logger.Debug("filesystem event", "op", event.Op.String(), "path", event.Name)

	if !event.Has(fsnotify.Create) {
		return
	}
	if filepath.Dir(event.Name) != w.root {
		return
	}

	info, err := os.Lstat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsw.Add(event.Name); err != nil {
		logger.Warn("cannot watch new folder", "path", event.Name, "error", err)
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
