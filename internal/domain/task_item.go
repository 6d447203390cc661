package domain

import "time"

// TaskItem is a single entry in the task list.
//
// HasNotification records that a reminder was requested while the due date
// was valid. It is not cleared when the date passes, so every path acting
// on it must call ReminderActive rather than read the flag alone.
type TaskItem struct {
	ID              string
	Title           string
	Description     string
	Priority        Priority
	IsCompleted     bool
	DueDate         DueDate
	NotificationID  string
	HasNotification bool
}

// NewTaskItem returns an empty item with fresh identifiers and default
// field values.
func NewTaskItem(gen IDGenerator) TaskItem {
	if gen == nil {
		gen = NewUUID
	}
	return TaskItem{
		ID:             gen(),
		Priority:       DefaultPriority,
		DueDate:        NoDueDate,
		NotificationID: gen(),
	}
}

// DueDateIsValid reports whether the due date is not in the past at now.
func (t TaskItem) DueDateIsValid(now time.Time) bool {
	return t.DueDate.IsValid(now)
}

// ReminderActive reports whether a reminder should be scheduled at now.
func (t TaskItem) ReminderActive(now time.Time) bool {
	return t.HasNotification && t.DueDateIsValid(now)
}

// ReminderExpired reports whether a reminder was requested but the due date
// has already passed.
func (t TaskItem) ReminderExpired(now time.Time) bool {
	return t.HasNotification && !t.DueDateIsValid(now)
}

// Duplicate returns a copy that is treated as a new task: both the id and
// the notification handle are regenerated.
func (t TaskItem) Duplicate(gen IDGenerator) TaskItem {
	if gen == nil {
		gen = NewUUID
	}
	dup := t
	dup.ID = gen()
	dup.NotificationID = gen()
	return dup
}

// IsValid checks the item can be persisted from an edit form.
func (t TaskItem) IsValid() bool {
	return t.ID != "" && t.Title != ""
}
