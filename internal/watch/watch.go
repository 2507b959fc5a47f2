// Package watch re-runs a callback when a file changes.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/logger"
)

// DefaultDebounce is how long writes must settle before the callback runs.
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls a function after a file has been written or replaced.
type Watcher struct {
	file     string
	callback func(ctx context.Context) error
	debounce time.Duration
	watcher  *fsnotify.Watcher
	log      *logger.Logger
}

// New watches file. The directory is watched rather than the file itself so
// editors that save by rename are seen too.
func New(file string, callback func(ctx context.Context) error, log *logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.Nop()
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "resolve "+file, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "create watcher", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, errs.Wrap(errs.ErrKindNotFound, "watch "+filepath.Dir(abs), err)
	}

	return &Watcher{
		file:     abs,
		callback: callback,
		debounce: DefaultDebounce,
		watcher:  w,
		log:      log.With().Str("file", abs).Logger(),
	}, nil
}

// Run dispatches events until ctx is cancelled, then closes the watcher.
// Callback failures are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			timer.Reset(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			w.log.Info("change detected")
			if err := w.callback(ctx); err != nil {
				w.log.WarnWith("watch callback failed", err, nil)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.WarnWith("watch error", err, nil)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	return err == nil && abs == w.file
}
