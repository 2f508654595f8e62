// Package watcher reruns work when files in a directory change.
//
// It is used by "generate --watch" to rebuild the wallpaper whenever covers
// are added to or removed from a local cover directory. Bursts of events
// (a file manager copying twenty covers) are debounced into one rebuild.
package watcher

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Option configures a [Watcher].
type Option func(*Watcher)

// WithDebounce sets the quiet period (default [DefaultDebounce]).
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithFilter restricts which file names count as a change. Hidden files are
// always ignored.
func WithFilter(match func(name string) bool) Option {
	return func(w *Watcher) { w.match = match }
}

// WithIgnore ignores events for the given paths, such as the generated
// wallpaper when it is written into the watched directory.
func WithIgnore(paths ...string) Option {
	return func(w *Watcher) {
		for _, p := range paths {
			if abs, err := filepath.Abs(p); err == nil {
				w.ignore[abs] = true
			}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// Watcher watches one directory, non-recursively.
type Watcher struct {
	dir      string
	debounce time.Duration
	match    func(string) bool
	ignore   map[string]bool
	logger   *log.Logger
}

// New returns a Watcher for dir.
func New(dir string, opts ...Option) *Watcher {
	w := &Watcher{
		dir:    dir,
		ignore: make(map[string]bool),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Relevant reports whether an event should trigger a rerun.
func (w *Watcher) Relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if abs, err := filepath.Abs(ev.Name); err == nil && w.ignore[abs] {
		return false
	}
	return w.match == nil || w.match(name)
}

// Run calls onChange after every debounced burst of relevant events until
// ctx is done. onChange never runs concurrently with itself; its errors are
// logged and watching continues.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return err
	}

	deb := NewDebouncer(w.debounce)
	defer deb.Cancel()
	changed := make(chan struct{}, 1)
	notify := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}

	w.logger.Debug("watching", "dir", w.dir, "debounce", deb.Duration())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.Relevant(ev) {
				w.logger.Debug("change", "file", ev.Name, "op", ev.Op.String())
				deb.Trigger(notify)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)
		case <-changed:
			if err := onChange(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("rebuild failed", "err", err)
			}
		}
	}
}
