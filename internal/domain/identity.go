package domain

import (
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces globally unique identifiers for tasks and their
// notification handles.
type IDGenerator func() string

// NewUUID is the default IDGenerator.
func NewUUID() string {
	return uuid.NewString()
}

// Clock returns the current instant. Due date validity is always evaluated
// against a Clock so expiry can be simulated in tests.
type Clock func() time.Time

// SystemClock is the default Clock.
func SystemClock() time.Time {
	return time.Now()
}
