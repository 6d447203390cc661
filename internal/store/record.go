package store

import (
	"encoding/json"

	"task-planner/internal/domain"
)

// Document is the persisted task list.
type Document struct {
	Todos []Record `json:"todos"`
}

// Record is the persisted form of a single task.
type Record struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Priority        int           `json:"priority"`
	IsCompleted     bool          `json:"isCompleted"`
	DueDate         DueDateRecord `json:"dueDate"`
	NotificationID  string        `json:"notificationId"`
	HasNotification bool          `json:"hasNotification"`
}

// DueDateRecord is the persisted form of a due date.
type DueDateRecord struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// UnmarshalJSON applies defaults for fields missing from the document or
// set to null.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	p := plain{Priority: int(domain.DefaultPriority)}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Record(p)
	return nil
}
