package repository

import (
	"context"
	"errors"
	"sync"
)

// ErrBlobNotFound is returned by Read when no blob exists for the key.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is an opaque key-value store for persisted documents.
type BlobStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Close() error
}

// MemoryStore is a BlobStore that keeps blobs in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
