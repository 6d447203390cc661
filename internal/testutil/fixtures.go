package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"task-planner/internal/domain"
	"task-planner/internal/repository"
)

// SequentialIDs returns a generator producing prefix-1, prefix-2, ...
func SequentialIDs(prefix string) domain.IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// Clock is a settable clock for testing.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a Clock set to now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fake time. Pass c.Now where a domain.Clock is
// expected.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// FailingBlobStore is a repository.MemoryStore with error injection.
type FailingBlobStore struct {
	*repository.MemoryStore

	mu       sync.Mutex
	ReadErr  error
	WriteErr error
	writes   int
}

// NewFailingBlobStore creates a FailingBlobStore with no errors set.
func NewFailingBlobStore() *FailingBlobStore {
	return &FailingBlobStore{MemoryStore: repository.NewMemoryStore()}
}

// Read implements repository.BlobStore.
func (f *FailingBlobStore) Read(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	err := f.ReadErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.MemoryStore.Read(ctx, key)
}

// Write implements repository.BlobStore.
func (f *FailingBlobStore) Write(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	f.writes++
	err := f.WriteErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.MemoryStore.Write(ctx, key, data)
}

// Writes returns how many writes were attempted.
func (f *FailingBlobStore) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}
