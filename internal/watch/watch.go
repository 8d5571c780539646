// Package watch re-runs a search when one of its watched input files
// changes on disk, for interactive mode.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/subseqio/lz/internal/logging"
)

var watchLog = logging.ForComponent(logging.CompWatch)

// debounceWindow coalesces bursts of writes (editors often truncate then
// rewrite a file) into a single re-search.
const debounceWindow = 150 * time.Millisecond

// Watcher notifies a callback when any of a fixed set of files changes.
// It watches the containing directories rather than the files directly so
// that editors which replace a file (remove+create) are still observed.
type Watcher struct {
	w        *fsnotify.Watcher
	files    map[string]bool
	onChange func()

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a Watcher over filenames, calling onChange (debounced) after
// any of them is created or written. Call Start to begin watching, Close
// to release the underlying inotify/kqueue handle.
func New(filenames []string, onChange func()) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	files := make(map[string]bool, len(filenames))
	dirs := make(map[string]bool)
	for _, f := range filenames {
		files[f] = true
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			watchLog.Warn("watch_add_failed", slog.String("dir", dir), slog.String("error", err.Error()))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		w:        w,
		files:    files,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins watching in a background goroutine. Must be called at most
// once per Watcher.
func (w *Watcher) Start() {
	go w.loop()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if !w.files[ev.Name] {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.scheduleNotify()
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			watchLog.Warn("watch_error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) scheduleNotify() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceWindow, func() {
		watchLog.Debug("watch_triggered_research")
		w.onChange()
	})
}

// Close stops the watcher and releases its OS resources.
func (w *Watcher) Close() error {
	w.cancel()
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.w.Close()
}
