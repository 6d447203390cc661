package store

import (
	"task-planner/internal/domain"
)

// TaskMapper handles conversion between domain tasks and persisted records.
type TaskMapper struct {
	gen domain.IDGenerator
}

// NewTaskMapper creates a TaskMapper. gen fills in identifiers missing from
// a record.
func NewTaskMapper(gen domain.IDGenerator) *TaskMapper {
	if gen == nil {
		gen = domain.NewUUID
	}
	return &TaskMapper{gen: gen}
}

// ToRecord converts a domain task to a record.
func (m *TaskMapper) ToRecord(item domain.TaskItem) Record {
	return Record{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Priority:    int(item.Priority),
		IsCompleted: item.IsCompleted,
		DueDate: DueDateRecord{
			Year:   item.DueDate.Year,
			Month:  item.DueDate.Month,
			Day:    item.DueDate.Day,
			Hour:   item.DueDate.Hour,
			Minute: item.DueDate.Minute,
		},
		NotificationID:  item.NotificationID,
		HasNotification: item.HasNotification,
	}
}

// FromRecord converts a record to a domain task. Unknown priorities become
// medium and missing identifiers are regenerated.
func (m *TaskMapper) FromRecord(rec Record) domain.TaskItem {
	item := domain.TaskItem{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Priority:    domain.Priority(rec.Priority).Normalize(),
		IsCompleted: rec.IsCompleted,
		DueDate: domain.DueDate{
			Year:   rec.DueDate.Year,
			Month:  rec.DueDate.Month,
			Day:    rec.DueDate.Day,
			Hour:   rec.DueDate.Hour,
			Minute: rec.DueDate.Minute,
		},
		NotificationID:  rec.NotificationID,
		HasNotification: rec.HasNotification,
	}
	if item.ID == "" {
		item.ID = m.gen()
	}
	if item.NotificationID == "" {
		item.NotificationID = m.gen()
	}
	return item
}

// ToDocument converts a list to a document.
func (m *TaskMapper) ToDocument(list domain.TaskList) Document {
	doc := Document{Todos: make([]Record, len(list))}
	for i, item := range list {
		doc.Todos[i] = m.ToRecord(item)
	}
	return doc
}

// FromDocument converts a document to a list.
func (m *TaskMapper) FromDocument(doc Document) domain.TaskList {
	list := make(domain.TaskList, len(doc.Todos))
	for i, rec := range doc.Todos {
		list[i] = m.FromRecord(rec)
	}
	return list
}
