// Package notify defines the local notification contract the reminder
// scheduler drives, plus an in-process implementation of it.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// AuthState is the user's notification permission.
type AuthState int

const (
	Undetermined AuthState = iota
	Authorized
	Provisional
	Denied
)

func (s AuthState) String() string {
	switch s {
	case Undetermined:
		return "undetermined"
	case Authorized:
		return "authorized"
	case Provisional:
		return "provisional"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// CanSchedule reports whether reminders may be scheduled in state s.
func (s AuthState) CanSchedule() bool {
	return s == Authorized || s == Provisional
}

// ParseAuthState parses the lowercase name of a state.
func ParseAuthState(s string) (AuthState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "undetermined", "":
		return Undetermined, nil
	case "authorized":
		return Authorized, nil
	case "provisional":
		return Provisional, nil
	case "denied":
		return Denied, nil
	}
	return Undetermined, fmt.Errorf("unknown authorization state %q", s)
}

// Content is the payload shown when a reminder fires.
type Content struct {
	Title string
	Body  string
}

// Service is the notification subsystem. Cancel of an unknown id is a
// no-op.
type Service interface {
	AuthorizationStatus(ctx context.Context) (AuthState, error)
	RequestAuthorization(ctx context.Context) (AuthState, error)
	Schedule(ctx context.Context, id string, at time.Time, content Content) error
	Cancel(ctx context.Context, id string) error
}
