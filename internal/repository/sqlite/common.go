package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"

	"task-planner/internal/errors"
	"task-planner/internal/repository"
)

// HandleStorageError converts database errors to structured app errors
func HandleStorageError(operation string, err error) error {
	return errors.NewStorageError(operation, err)
}

// HandleNoRowsError maps sql.ErrNoRows to repository.ErrBlobNotFound
func HandleNoRowsError(err error) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return repository.ErrBlobNotFound
	}
	return err
}

// Execute executes a statement and wraps any failure
func Execute(ctx context.Context, db *sql.DB, operation string, query string, args ...interface{}) (int64, error) {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, HandleStorageError(operation, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, HandleStorageError("get rows affected", err)
	}
	return rows, nil
}

// QuerySingle executes a query that returns a single row and scans it
func QuerySingle[T any](ctx context.Context, db *sql.DB, query string, scanFunc func(Scanner) (*T, error), entityType string, args ...interface{}) (*T, error) {
	row := db.QueryRowContext(ctx, query, args...)
	result, err := scanFunc(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, HandleNoRowsError(err)
		}
		return nil, HandleStorageError("scan "+entityType, err)
	}
	return result, nil
}
