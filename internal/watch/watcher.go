// Package watch re-runs a callback whenever a task export file changes.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce is how long a file must be quiet before a run starts.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors one export file. Editors often replace files instead of
// writing them in place, so the parent directory is watched and events are
// filtered by name.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	path      string
	out       io.Writer
	callback  func(ctx context.Context, path string)

	mu      sync.Mutex
	pending time.Time
	running sync.Mutex
}

// NewWatcher creates a watcher for the file at path. A non-positive
// debounce uses DefaultDebounce.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		debounce:  debounce,
		path:      abs,
		out:       os.Stdout,
	}, nil
}

// SetCallback sets the function run after each debounced change.
func (w *Watcher) SetCallback(cb func(ctx context.Context, path string)) {
	w.callback = cb
}

// SetOutput redirects the watcher's status lines.
func (w *Watcher) SetOutput(out io.Writer) {
	w.out = out
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Start watches until ctx is cancelled or the watcher is stopped.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	cyan.Fprintf(w.out, "Watching %s for changes...\n", w.path)
	cyan.Fprintln(w.out, "Press Ctrl+C to stop")
	fmt.Fprintln(w.out)

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Str("path", w.path).Msg("watch error")
		}
	}
}

// handleEvent records writes and creates of the watched file.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	name, err := filepath.Abs(event.Name)
	if err != nil || name != w.path {
		return
	}

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

// processPending fires the callback once the file has been quiet for the
// debounce period.
func (w *Watcher) processPending(ctx context.Context) {
	w.mu.Lock()
	ready := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
	if ready {
		w.pending = time.Time{}
	}
	w.mu.Unlock()

	if ready && w.callback != nil {
		go w.runCallback(ctx)
	}
}

// runCallback executes one run. Runs never overlap.
func (w *Watcher) runCallback(ctx context.Context) {
	w.running.Lock()
	defer w.running.Unlock()

	if ctx.Err() != nil {
		return
	}

	color.New(color.FgYellow).Fprintf(w.out, "\nFile changed: %s\n", filepath.Base(w.path))
	fmt.Fprintln(w.out, strings.Repeat("-", 40))

	w.callback(ctx, w.path)

	fmt.Fprintln(w.out)
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchList returns the directories currently registered with fsnotify.
func (w *Watcher) WatchList() []string {
	return w.fsWatcher.WatchList()
}
