// Package store holds the authoritative in-memory task list and moves it
// to and from a blob store.
package store

import (
	"context"
	stderrors "errors"
	"sync"

	"go.uber.org/zap"

	"task-planner/internal/domain"
	"task-planner/internal/errors"
	"task-planner/internal/logging"
	"task-planner/internal/metrics"
	"task-planner/internal/repository"
)

// DefaultKey is the blob key the task list is stored under.
const DefaultKey = "TodoList"

// TaskStore owns the task list. It is the only writer of the blob.
type TaskStore struct {
	mu      sync.RWMutex
	blobs   repository.BlobStore
	key     string
	codec   *Codec
	items   domain.TaskList
	subs    map[int]func(domain.TaskList)
	nextSub int
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a TaskStore.
type Option func(*TaskStore)

// WithKey sets the blob key.
func WithKey(key string) Option {
	return func(s *TaskStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *TaskStore) { s.logger = logging.OrNop(logger) }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *TaskStore) { s.metrics = m }
}

// WithIDGenerator sets the generator used for identifiers missing on load.
func WithIDGenerator(gen domain.IDGenerator) Option {
	return func(s *TaskStore) { s.codec = NewCodec(gen) }
}

// New creates an empty TaskStore over blobs.
func New(blobs repository.BlobStore, opts ...Option) *TaskStore {
	s := &TaskStore{
		blobs:  blobs,
		key:    DefaultKey,
		codec:  NewCodec(nil),
		items:  domain.TaskList{},
		subs:   make(map[int]func(domain.TaskList)),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted list and adopts it. A missing, unreadable or
// malformed blob yields an empty list; the failure is logged, not returned.
func (s *TaskStore) Load(ctx context.Context) domain.TaskList {
	list := s.read(ctx)

	s.mu.Lock()
	s.items = list
	s.mu.Unlock()

	s.metrics.SetTasks(len(list))
	s.publish()
	return list.Clone()
}

func (s *TaskStore) read(ctx context.Context) domain.TaskList {
	list, err := s.fetch(ctx)
	if err != nil {
		var decodeErr *DecodeError
		switch {
		case stderrors.Is(err, repository.ErrBlobNotFound):
			s.logger.Info("no saved task list, starting empty", zap.String("key", s.key))
			s.metrics.RecordLoadFallback("missing")
		case stderrors.As(err, &decodeErr):
			s.logger.Warn("task list is corrupt, starting empty", zap.String("key", s.key), zap.Error(err))
			s.metrics.RecordLoadFallback("corrupt")
		default:
			s.logger.Warn("task list could not be read, starting empty", zap.String("key", s.key), zap.Error(err))
			s.metrics.RecordLoadFallback("read_error")
		}
		return domain.TaskList{}
	}

	s.logger.Debug("task list loaded", zap.String("key", s.key), zap.Int("count", len(list)))
	return list
}

func (s *TaskStore) fetch(ctx context.Context) (domain.TaskList, error) {
	data, err := s.blobs.Read(ctx, s.key)
	if err != nil {
		return nil, err
	}
	return s.codec.Decode(data)
}

// Reload rereads the persisted list after an outside change and adopts it.
// A missing blob adopts an empty list. Unlike Load, a read or decode failure
// keeps the current list and is returned.
func (s *TaskStore) Reload(ctx context.Context) (domain.TaskList, error) {
	list, err := s.fetch(ctx)
	if stderrors.Is(err, repository.ErrBlobNotFound) {
		list, err = domain.TaskList{}, nil
	}
	if err != nil {
		s.logger.Warn("task list could not be reloaded, keeping current list", zap.String("key", s.key), zap.Error(err))
		return s.Items(), err
	}

	s.mu.Lock()
	s.items = list
	s.mu.Unlock()

	s.metrics.SetTasks(len(list))
	s.publish()
	s.logger.Debug("task list reloaded", zap.String("key", s.key), zap.Int("count", len(list)))
	return list.Clone(), nil
}

// Save adopts list as the in-memory list and writes it. A failed write is
// logged and returned; the in-memory list is kept either way.
func (s *TaskStore) Save(ctx context.Context, list domain.TaskList) error {
	adopted := list.Clone()

	s.mu.Lock()
	s.items = adopted
	s.mu.Unlock()

	s.metrics.SetTasks(len(adopted))
	defer s.publish()

	data, err := s.codec.Encode(adopted)
	if err != nil {
		s.metrics.RecordPersistFailure()
		s.logger.Error("task list could not be encoded", zap.Error(err))
		return errors.NewStorageError("encode task list", err)
	}

	if err := s.blobs.Write(ctx, s.key, data); err != nil {
		s.metrics.RecordPersistFailure()
		s.logger.Error("task list could not be saved", zap.String("key", s.key), zap.Error(err))
		if !errors.IsAppError(err) {
			err = errors.NewStorageError("save task list", err)
		}
		return err
	}

	s.logger.Debug("task list saved", zap.String("key", s.key), zap.Int("count", len(adopted)))
	return nil
}

// Items returns a snapshot of the current list.
func (s *TaskStore) Items() domain.TaskList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items.Clone()
}

// Find returns the position of the item with id.
func (s *TaskStore) Find(id string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.items.IndexOf(id)
	return i, i >= 0
}

// Subscribe registers fn to receive a snapshot after every Load and Save.
// The returned function removes the subscription.
func (s *TaskStore) Subscribe(fn func(domain.TaskList)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *TaskStore) publish() {
	s.mu.RLock()
	fns := make([]func(domain.TaskList), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	snapshot := s.items
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(snapshot.Clone())
	}
}
