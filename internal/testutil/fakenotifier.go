// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"
	"time"

	"task-planner/internal/notify"
)

// Notifier operations recorded by FakeNotifier.
const (
	OpStatus   = "status"
	OpRequest  = "request"
	OpSchedule = "schedule"
	OpCancel   = "cancel"
)

// NotifierCall is one recorded call.
type NotifierCall struct {
	Op      string
	ID      string
	At      time.Time
	Content notify.Content
}

// FakeNotifier is an in-memory implementation of notify.Service for testing.
type FakeNotifier struct {
	mu     sync.Mutex
	calls  []NotifierCall
	active map[string]time.Time

	// State is the current authorization state.
	State notify.AuthState
	// Grant is the state a request moves to from Undetermined.
	Grant notify.AuthState

	// Error injection for testing
	StatusErr   error
	RequestErr  error
	ScheduleErr error
	CancelErr   error

	// Block, when set, makes every call wait for a receive.
	Block chan struct{}
}

// NewFakeNotifier creates a FakeNotifier in the given state that grants
// permission when asked.
func NewFakeNotifier(state notify.AuthState) *FakeNotifier {
	return &FakeNotifier{
		active: make(map[string]time.Time),
		State:  state,
		Grant:  notify.Authorized,
	}
}

func (f *FakeNotifier) wait() {
	if f.Block != nil {
		<-f.Block
	}
}

func (f *FakeNotifier) record(call NotifierCall) {
	f.calls = append(f.calls, call)
}

// AuthorizationStatus implements notify.Service.
func (f *FakeNotifier) AuthorizationStatus(ctx context.Context) (notify.AuthState, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(NotifierCall{Op: OpStatus})
	if f.StatusErr != nil {
		return notify.Undetermined, f.StatusErr
	}
	return f.State, nil
}

// RequestAuthorization implements notify.Service.
func (f *FakeNotifier) RequestAuthorization(ctx context.Context) (notify.AuthState, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(NotifierCall{Op: OpRequest})
	if f.RequestErr != nil {
		return notify.Undetermined, f.RequestErr
	}
	if f.State == notify.Undetermined {
		f.State = f.Grant
	}
	return f.State, nil
}

// Schedule implements notify.Service.
func (f *FakeNotifier) Schedule(ctx context.Context, id string, at time.Time, content notify.Content) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(NotifierCall{Op: OpSchedule, ID: id, At: at, Content: content})
	if f.ScheduleErr != nil {
		return f.ScheduleErr
	}
	f.active[id] = at
	return nil
}

// Cancel implements notify.Service.
func (f *FakeNotifier) Cancel(ctx context.Context, id string) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(NotifierCall{Op: OpCancel, ID: id})
	if f.CancelErr != nil {
		return f.CancelErr
	}
	delete(f.active, id)
	return nil
}

// Calls returns every recorded call in order.
func (f *FakeNotifier) Calls() []NotifierCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]NotifierCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// Ops returns the operation names of calls that target id, in order.
func (f *FakeNotifier) Ops(id string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ops := []string{}
	for _, c := range f.calls {
		if c.ID == id {
			ops = append(ops, c.Op)
		}
	}
	return ops
}

// Count returns how many times op was called, for any id when id is empty.
func (f *FakeNotifier) Count(op, id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Op == op && (id == "" || c.ID == id) {
			n++
		}
	}
	return n
}

// Active reports whether a schedule is outstanding for id.
func (f *FakeNotifier) Active(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.active[id]
	return ok
}

// Reset clears recorded calls but keeps active schedules.
func (f *FakeNotifier) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}
