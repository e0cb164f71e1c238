// Package watch follows a directory and reports checkpoint files as they
// land, backing the CLI's watch mode. Events are debounced per path because
// large checkpoints arrive as bursts of writes.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/goliatone/go-ptconv/pkg/checkpoint"
)

// DefaultSettle is how long a path must stay quiet before it is reported.
const DefaultSettle = 500 * time.Millisecond

// Handler receives the path of a checkpoint file once it has settled.
type Handler func(path string)

// Watcher follows a single directory for new checkpoint files.
type Watcher struct {
	dir    string
	opts   checkpoint.LoaderOptions
	logger *zap.Logger
	settle time.Duration
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithSettle overrides the per-path quiet period before a file is reported.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// New constructs a Watcher over dir using the extension allow-list in opts.
func New(dir string, opts checkpoint.LoaderOptions, logger *zap.Logger, options ...Option) (*Watcher, error) {
	if dir == "" {
		return nil, errors.New("watch: directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{
		dir:    dir,
		opts:   opts,
		logger: logger,
		settle: DefaultSettle,
	}
	for _, opt := range options {
		opt(w)
	}
	return w, nil
}

// Run blocks, invoking handle for every checkpoint file created or written
// under the watched directory, until the context is cancelled.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	if handle == nil {
		return errors.New("watch: handler is required")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "watch: create watcher")
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return errors.Wrapf(err, "watch: add %q", w.dir)
	}
	w.logger.Info("watching directory", zap.String("dir", w.dir))

	ready := make(chan string)
	// Closed on return so pending debounce goroutines never block on a
	// ready channel nobody reads anymore.
	done := make(chan struct{})
	defer close(done)

	var mu sync.Mutex
	timers := make(map[string]*time.Timer)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.opts.MatchesExtension(event.Name) {
				continue
			}
			name := event.Name
			mu.Lock()
			if t, exists := timers[name]; exists {
				t.Stop()
			}
			timers[name] = time.AfterFunc(w.settle, func() {
				select {
				case ready <- name:
				case <-ctx.Done():
				case <-done:
				}
			})
			mu.Unlock()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case name := <-ready:
			mu.Lock()
			delete(timers, name)
			mu.Unlock()
			handle(name)
		}
	}
}
