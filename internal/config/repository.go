package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"task-planner/internal/repository"
	"task-planner/internal/repository/file"
	"task-planner/internal/repository/sqlite"
	"task-planner/internal/repository/watch"
)

// Environment represents the current environment
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// GetEnvironment reads TP_ENV, defaulting to production
func GetEnvironment() Environment {
	switch Environment(os.Getenv(EnvPrefix + "ENV")) {
	case Development:
		return Development
	case Testing:
		return Testing
	default:
		return Production
	}
}

// RepositoryFactory creates blob stores based on environment
type RepositoryFactory struct {
	env    Environment
	config *Config
}

// NewRepositoryFactory creates a new repository factory for the given environment
func NewRepositoryFactory(env Environment, cfg *Config) *RepositoryFactory {
	return &RepositoryFactory{env: env, config: cfg}
}

// CreateBlobStore creates a blob store for the current environment
func (rf *RepositoryFactory) CreateBlobStore(ctx context.Context) (repository.BlobStore, error) {
	switch rf.env {
	case Testing:
		return repository.NewMemoryStore(), nil
	case Development:
		// local directory next to the working copy
		return file.New(".tp-dev", 0700), nil
	default:
		return CreateBlobStore(ctx, rf.config)
	}
}

// CreateChangeWatcher creates a watcher over the files the blob store for
// the current environment writes. The in-memory store has no files, so
// Testing returns nil.
func (rf *RepositoryFactory) CreateChangeWatcher(opts ...watch.Option) (*watch.Watcher, error) {
	switch rf.env {
	case Testing:
		return nil, nil
	case Development:
		return watch.New(".tp-dev", fileMatcher(".tp-dev", rf.config.Storage.Key), opts...)
	default:
		return CreateChangeWatcher(rf.config, opts...)
	}
}

// CreateChangeWatcher creates a watcher over the configured backend's files.
func CreateChangeWatcher(cfg *Config, opts ...watch.Option) (*watch.Watcher, error) {
	switch cfg.Storage.Backend {
	case BackendSQLite:
		db := filepath.Base(cfg.GetDatabasePath())
		// commits touch the journal or the WAL as well as the database
		return watch.New(cfg.Storage.Dir, watch.MatchNames(db, db+"-journal", db+"-wal"), opts...)
	case BackendFile:
		return watch.New(cfg.Storage.Dir, fileMatcher(cfg.Storage.Dir, cfg.Storage.Key), opts...)
	default:
		return nil, &ConfigError{Field: "storage.backend", Message: "unknown storage backend " + cfg.Storage.Backend}
	}
}

func fileMatcher(dir, key string) watch.Matcher {
	return watch.MatchNames(filepath.Base(file.New(dir, 0).Path(key)))
}

// CreateBlobStore creates the configured blob store backend
func CreateBlobStore(ctx context.Context, cfg *Config) (repository.BlobStore, error) {
	perms := os.FileMode(cfg.Storage.DirPermissions)

	switch cfg.Storage.Backend {
	case BackendSQLite:
		if err := os.MkdirAll(cfg.Storage.Dir, perms); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
		repo, err := sqlite.New(ctx, cfg.GetDatabasePath())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil
	case BackendFile:
		return file.New(cfg.Storage.Dir, perms), nil
	default:
		return nil, &ConfigError{Field: "storage.backend", Message: "unknown storage backend " + cfg.Storage.Backend}
	}
}
