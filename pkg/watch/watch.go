package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/oklog/run"

	"github.com/sdejongh/sidediff/pkg/logging"
)

// DefaultDebounce coalesces the burst of events an editor emits on save
const DefaultDebounce = 100 * time.Millisecond

// RenderFunc produces one comparison. Errors are logged and do not stop the watcher.
type RenderFunc func(ctx context.Context) error

// Watcher re-renders a comparison whenever a local file changes
type Watcher struct {
	path     string
	render   RenderFunc
	logger   logging.Logger
	debounce time.Duration
}

// New creates a watcher for the file at path
func New(path string, render RenderFunc, logger logging.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Watcher{
		path:     abs,
		render:   render,
		logger:   logger.WithFields(logging.Fields{"watch": abs}),
		debounce: DefaultDebounce,
	}, nil
}

// SetDebounce changes the quiet period required before re-rendering
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Run renders once, then again after every change to the watched file,
// until ctx is cancelled or the process receives SIGINT or SIGTERM.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	// Watching the directory survives editors that replace the file on save
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.renderOnce(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g run.Group
	{
		g.Add(func() error {
			return w.loop(ctx, fsw)
		}, func(error) {
			cancel()
		})
	}
	{
		g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))
	}

	err = g.Run()

	var sigErr run.SignalError
	switch {
	case errors.As(err, &sigErr):
		w.logger.Info(ctx, "Stopping watcher", logging.Fields{"signal": sigErr.Signal.String()})
		return nil
	case errors.Is(err, context.Canceled):
		return nil
	}
	return err
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug(ctx, "File event", logging.Fields{"op": ev.Op.String()})
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(ctx, "File watcher error", logging.Fields{"error": err.Error()})

		case <-fire:
			fire = nil
			w.renderOnce(ctx)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

func (w *Watcher) renderOnce(ctx context.Context) {
	start := time.Now()
	if err := w.render(ctx); err != nil {
		w.logger.Error(ctx, "Render failed", err, nil)
		return
	}
	w.logger.Info(ctx, "Rendered comparison", logging.Fields{"duration": time.Since(start).String()})
}
