package sqlite

import (
	"context"
	"database/sql"
	"time"

	"task-planner/internal/errors"
	"task-planner/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// BlobRepository is a repository.BlobStore backed by a SQLite database.
type BlobRepository struct {
	db  *sql.DB
	now func() time.Time
}

// New opens the database at dbPath and applies pending migrations.
func New(ctx context.Context, dbPath string) (*BlobRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewStorageError("open database", err)
	}
	// a single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	if err := migrations.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, errors.NewStorageError("run migrations", err)
	}

	return &BlobRepository{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (r *BlobRepository) Close() error {
	return r.db.Close()
}

// Read returns the data stored under key.
func (r *BlobRepository) Read(ctx context.Context, key string) ([]byte, error) {
	blob, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return blob.Data, nil
}

// Get returns the full row stored under key.
func (r *BlobRepository) Get(ctx context.Context, key string) (*Blob, error) {
	query := `SELECT key, data, updated_at FROM blobs WHERE key = ?`
	return QuerySingle(ctx, r.db, query, ScanBlob, "blob", key)
}

// Write inserts or replaces the blob stored under key.
func (r *BlobRepository) Write(ctx context.Context, key string, data []byte) error {
	query := `
	INSERT INTO blobs (key, data, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`

	if data == nil {
		data = []byte{}
	}
	_, err := Execute(ctx, r.db, "write blob", query, key, data, FormatTimeForDB(r.now()))
	return err
}
