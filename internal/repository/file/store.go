// Package file stores blobs as one JSON file per key in a directory.
package file

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"task-planner/internal/errors"
	"task-planner/internal/repository"
)

// Store is a directory-backed repository.BlobStore.
type Store struct {
	dir      string
	dirPerms os.FileMode
}

// New returns a Store rooted at dir. The directory is created on first write.
func New(dir string, dirPerms os.FileMode) *Store {
	if dirPerms == 0 {
		dirPerms = 0o755
	}
	return &Store{dir: dir, dirPerms: dirPerms}
}

// Path returns the file used for key.
func (s *Store) Path(key string) string {
	name := strings.ReplaceAll(key, string(filepath.Separator), "_")
	return filepath.Join(s.dir, name+".json")
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, repository.ErrBlobNotFound
		}
		if stderrors.Is(err, fs.ErrPermission) {
			return nil, errors.NewPermissionError("read", s.Path(key))
		}
		return nil, errors.NewStorageError("read blob", err)
	}
	return data, nil
}

// Write replaces the blob atomically through a temporary file in the same
// directory.
func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, s.dirPerms); err != nil {
		return errors.NewStorageError("create directory", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(s.Path(key))+".*")
	if err != nil {
		return errors.NewStorageError("create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.NewStorageError("write blob", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.NewStorageError("sync blob", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewStorageError("close blob", err)
	}
	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		return errors.NewStorageError(fmt.Sprintf("replace %s", filepath.Base(s.Path(key))), err)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}
