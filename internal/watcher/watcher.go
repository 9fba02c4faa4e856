package watcher

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// debounce is how long the watcher waits after the last matching event
// before signalling. Log files often land in bursts (rsync, logrotate).
const debounce = 500 * time.Millisecond

// Watcher monitors a source directory for newly arrived log files using
// OS-level notifications. Bursts of arrivals are coalesced into a single
// trigger so the pipeline re-runs once per batch.
type Watcher struct {
	fsw     *fsnotify.Watcher
	Trigger chan struct{}
	pattern string
}

// New creates a Watcher on dir. pattern is a glob matched against base file
// names (e.g. "*.log").
func New(dir, pattern string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		fsw:     fsw,
		Trigger: make(chan struct{}, 1),
		pattern: pattern,
	}, nil
}

// Start begins listening for file events. It blocks until the context is
// cancelled.
func (w *Watcher) Start(ctx context.Context) {
	defer w.fsw.Close()
	defer close(w.Trigger)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.matches(ev.Name) {
				continue
			}
			// Restart the debounce timer on every matching arrival.
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case w.Trigger <- struct{}{}:
			default: // a trigger is already pending
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

// matches reports whether a path's base name matches the watch pattern.
func (w *Watcher) matches(path string) bool {
	ok, err := doublestar.Match(w.pattern, filepath.Base(path))
	return err == nil && ok
}
