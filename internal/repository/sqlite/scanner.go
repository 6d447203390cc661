package sqlite

import "fmt"

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// ScanBlob scans a single blob from a database row
func ScanBlob(scanner Scanner) (*Blob, error) {
	blob := &Blob{}
	var updatedAt string

	if err := scanner.Scan(&blob.Key, &blob.Data, &updatedAt); err != nil {
		return nil, err
	}

	ts, err := ParseTimeFromDB(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at for %s: %w", blob.Key, err)
	}
	blob.UpdatedAt = ts

	return blob, nil
}
