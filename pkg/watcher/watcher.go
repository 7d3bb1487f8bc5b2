// Package watcher monitors a single data file for changes, debouncing the
// bursts of events editors and database writers produce into one callback.
package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/arbor/pkg/debug"
)

// DefaultDebounce is the default quiet period before the change callback
// fires.
const DefaultDebounce = 250 * time.Millisecond

// Common errors.
var (
	ErrAlreadyStarted = errors.New("watcher already started")
	ErrNoCallback     = errors.New("watcher has no change callback")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithOnChange sets the callback invoked after the file changed and the
// debounce window passed.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError sets the callback invoked on watch errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher watches one file via fsnotify. The parent directory is watched
// rather than the file itself, so atomic rename-over-replace (the common
// save pattern) keeps working.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	onError  func(error)

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	timer   *time.Timer
}

// New creates a watcher for path with the given options.
func New(path string, opts ...Option) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}
	if w.onChange == nil {
		return ErrNoCallback
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.started = true

	go w.run(ctx, fw)
	return nil
}

// Stop stops watching. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.started = false
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher) {
	defer fw.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			debug.Log("watcher: %s %s", ev.Op, ev.Name)
			w.bump()
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// bump resets the debounce timer; the callback fires once the file has been
// quiet for the debounce duration.
func (w *Watcher) bump() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}
