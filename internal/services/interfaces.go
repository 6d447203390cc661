package services

import (
	"context"
	"time"

	"task-planner/internal/domain"
)

// ReminderStatus is the result of a queued reminder operation.
type ReminderStatus string

const (
	ReminderScheduled ReminderStatus = "scheduled"
	ReminderCanceled  ReminderStatus = "canceled"
	ReminderExpired   ReminderStatus = "expired" // flag set but due date already past
	ReminderDenied    ReminderStatus = "denied"
	ReminderFailed    ReminderStatus = "failed"
)

// ReminderOutcome describes how a reminder operation ended.
type ReminderOutcome struct {
	TaskID         string
	NotificationID string
	Status         ReminderStatus
	At             time.Time // firing instant, set when scheduled
	Err            error
}

// Pending is the future result of a queued reminder operation. A nil
// *Pending means no work was queued.
type Pending struct {
	done    chan struct{}
	outcome ReminderOutcome
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) resolve(outcome ReminderOutcome) {
	p.outcome = outcome
	close(p.done)
}

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Done is closed once the outcome is available.
func (p *Pending) Done() <-chan struct{} {
	if p == nil {
		return closedCh
	}
	return p.done
}

// Wait blocks until the outcome is available or ctx is done.
func (p *Pending) Wait(ctx context.Context) (ReminderOutcome, error) {
	if p == nil {
		return ReminderOutcome{}, nil
	}
	select {
	case <-p.done:
		return p.outcome, nil
	case <-ctx.Done():
		return ReminderOutcome{}, ctx.Err()
	}
}

// Reminders keeps the notification service in step with task reminders.
type Reminders interface {
	Reconcile(ctx context.Context, item domain.TaskItem) *Pending
	Cancel(ctx context.Context, notificationID string) *Pending
}

// TaskStore is the persistence the manager mutates through.
type TaskStore interface {
	Load(ctx context.Context) domain.TaskList
	Save(ctx context.Context, list domain.TaskList) error
	Reload(ctx context.Context) (domain.TaskList, error)
	Items() domain.TaskList
	Find(id string) (int, bool)
	Subscribe(fn func(domain.TaskList)) func()
}
