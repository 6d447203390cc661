package domain

import (
	"fmt"
	"time"
)

// DueDate is a calendar timestamp split into components. It holds no
// timezone; conversion to an instant uses the location of the reference
// time it is resolved against.
type DueDate struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

// NoDueDate is the all-zero sentinel. It is never valid.
var NoDueDate = DueDate{}

// DueDateFrom decomposes t in its own location.
func DueDateFrom(t time.Time) DueDate {
	return DueDate{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
	}
}

// IsZero reports whether d is the sentinel.
func (d DueDate) IsZero() bool {
	return d == NoDueDate
}

// In resolves d to an absolute instant in loc.
func (d DueDate) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, 0, 0, loc)
}

// Instant resolves d in the location of now.
func (d DueDate) Instant(now time.Time) time.Time {
	return d.In(now.Location())
}

// IsValid reports whether d resolves to an instant that is not strictly
// before now. The sentinel is always invalid.
func (d DueDate) IsValid(now time.Time) bool {
	if d.IsZero() {
		return false
	}
	return !d.Instant(now).Before(now)
}

// Format renders d in loc using layout.
func (d DueDate) Format(layout string, loc *time.Location) string {
	if d.IsZero() {
		return ""
	}
	return d.In(loc).Format(layout)
}

func (d DueDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", d.Year, d.Month, d.Day, d.Hour, d.Minute)
}
