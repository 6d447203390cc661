// Package watch reports changes other processes make to the files a blob
// store keeps its data in.
package watch

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"task-planner/internal/logging"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = stderrors.New("failed to initialize filesystem watcher")

// DefaultDebounce is how long a burst of events is collapsed into one change.
const DefaultDebounce = 100 * time.Millisecond

// relevant are the operations that can change a watched file's contents.
const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// Matcher reports whether a file base name is watched.
type Matcher func(name string) bool

// MatchNames matches the given base names exactly.
func MatchNames(names ...string) Matcher {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

// Watcher signals on Changes when a matching file in a directory is
// written, created, renamed or removed. Bursts of events are collapsed.
type Watcher struct {
	dir      string
	match    Matcher
	debounce time.Duration
	logger   *zap.Logger

	watcher *fsnotify.Watcher
	changes chan struct{}
	stop    chan struct{}
	once    sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is signaled.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) { w.logger = logging.OrNop(logger) }
}

// New creates a watcher over dir. Nothing is watched until Start.
func New(dir string, match Matcher, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	w := &Watcher{
		dir:      dir,
		match:    match,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
		watcher:  fw,
		changes:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Start watches the directory, creating it if needed, and processes events
// in the background until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	// the directory, not the file: atomic replaces swap the inode
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", w.dir, err)
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	go w.processEvents(ctx)
	w.logger.Debug("watching for task list changes", zap.String("dir", w.dir))
	return nil
}

// Stop stops the watcher and releases its resources. It is safe to call
// more than once.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.stop)
		_ = w.watcher.Close()
	})
}

// Changes receives one value per collapsed burst of changes.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

func (w *Watcher) processEvents(ctx context.Context) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&relevant == 0 || !w.match(filepath.Base(event.Name)) {
				continue
			}
			w.logger.Debug("task list file changed",
				zap.String("file", event.Name),
				zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.AfterFunc(w.debounce, w.signal)
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) signal() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}
