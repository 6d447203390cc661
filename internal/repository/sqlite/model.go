package sqlite

import "time"

// Blob is a stored document row.
type Blob struct {
	Key       string
	Data      []byte
	UpdatedAt time.Time
}
