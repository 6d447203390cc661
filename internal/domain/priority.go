package domain

import (
	"fmt"
	"strings"
)

// Priority orders and tags tasks. It carries no behavior of its own.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

// DefaultPriority is used for new tasks and for unknown persisted values.
const DefaultPriority = PriorityMedium

// AllPriorities lists the priorities from lowest to highest.
var AllPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// IsValid reports whether p is one of the known ordinals.
func (p Priority) IsValid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// Normalize maps unknown ordinals to DefaultPriority.
func (p Priority) Normalize() Priority {
	if !p.IsValid() {
		return DefaultPriority
	}
	return p
}

// String returns the short lowercase name used on the command line.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Title returns the display label.
func (p Priority) Title() string {
	switch p.Normalize() {
	case PriorityLow:
		return "Low priority"
	case PriorityHigh:
		return "High priority"
	default:
		return "Medium priority"
	}
}

// Color returns the display color as a hex string.
func (p Priority) Color() string {
	switch p.Normalize() {
	case PriorityLow:
		return "#A0A0FF"
	case PriorityHigh:
		return "#FF0000"
	default:
		return "#00D000"
	}
}

// ParsePriority accepts a name ("low", "medium", "high", case-insensitive)
// or an ordinal ("0", "1", "2").
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l", "0":
		return PriorityLow, nil
	case "medium", "med", "m", "1":
		return PriorityMedium, nil
	case "high", "h", "2":
		return PriorityHigh, nil
	}
	return DefaultPriority, fmt.Errorf("unknown priority %q", s)
}
