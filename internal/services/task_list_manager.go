package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"task-planner/internal/domain"
	"task-planner/internal/errors"
	"task-planner/internal/logging"
)

// ManagerOptions configures a TaskListManager.
type ManagerOptions struct {
	Clock  domain.Clock
	IDs    domain.IDGenerator
	Logger *zap.Logger

	// CancelRemindersOnComplete clears the reminder of a task when it is
	// marked completed. Off by default: completed tasks keep their reminder.
	CancelRemindersOnComplete bool
}

// TaskListManager is the mutation and query API over the task list. Every
// mutating call persists once, after the in-memory change, and queues the
// matching reminder work.
type TaskListManager struct {
	mu        sync.Mutex
	store     TaskStore
	reminders Reminders
	clock     domain.Clock
	ids       domain.IDGenerator
	logger    *zap.Logger

	cancelOnComplete bool
}

// NewTaskListManager creates a manager over store and reminders.
func NewTaskListManager(store TaskStore, reminders Reminders, opts ManagerOptions) *TaskListManager {
	m := &TaskListManager{
		store:            store,
		reminders:        reminders,
		clock:            opts.Clock,
		ids:              opts.IDs,
		logger:           logging.OrNop(opts.Logger),
		cancelOnComplete: opts.CancelRemindersOnComplete,
	}
	if m.clock == nil {
		m.clock = domain.SystemClock
	}
	if m.ids == nil {
		m.ids = domain.NewUUID
	}
	return m
}

// Load reads the persisted list into the store.
func (m *TaskListManager) Load(ctx context.Context) domain.TaskList {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Load(ctx)
}

// NewItem returns an empty item with fresh identifiers.
func (m *TaskListManager) NewItem() domain.TaskItem {
	return domain.NewTaskItem(m.ids)
}

// Upsert replaces the item with the same id in place, or appends it. Its
// reminder is reconciled before the list is persisted. An item carrying a
// reminder flag with a past due date is stored with the flag cleared and
// its reminder outcome is ReminderExpired.
func (m *TaskListManager) Upsert(ctx context.Context, item domain.TaskItem) (*Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := item
	if item.ReminderExpired(m.clock()) {
		stored.HasNotification = false
	}

	list := m.store.Items()
	if i, ok := m.store.Find(item.ID); ok {
		list[i] = stored
	} else {
		list = append(list, stored)
	}

	pending := m.reminders.Reconcile(ctx, item)
	return pending, m.save(ctx, list, "upsert")
}

// SetCompletedState marks the item with id as completed or not. Unknown
// ids are ignored. The returned Pending is nil unless reminder work was
// queued.
func (m *TaskListManager) SetCompletedState(ctx context.Context, id string, completed bool) (*Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.store.Find(id)
	if !ok {
		return nil, nil
	}
	list := m.store.Items()

	list[i].IsCompleted = completed

	var pending *Pending
	if completed && m.cancelOnComplete && list[i].HasNotification {
		list[i].HasNotification = false
		pending = m.reminders.Cancel(ctx, list[i].NotificationID)
	}

	return pending, m.save(ctx, list, "set completed")
}

// Remove deletes the items with the given ids, canceling each one's
// reminder first. Unknown ids are ignored.
func (m *TaskListManager) Remove(ctx context.Context, ids ...string) ([]*Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return m.removeWhere(ctx, "remove", func(item domain.TaskItem) bool {
		return set[item.ID]
	})
}

// RemoveAt deletes the items at the given list positions. Positions out of
// range are ignored.
func (m *TaskListManager) RemoveAt(ctx context.Context, positions ...int) ([]*Pending, error) {
	list := m.Items()
	ids := make([]string, 0, len(positions))
	for _, pos := range positions {
		if pos >= 0 && pos < len(list) {
			ids = append(ids, list[pos].ID)
		}
	}
	return m.Remove(ctx, ids...)
}

// RemoveCompleted deletes every completed item.
func (m *TaskListManager) RemoveCompleted(ctx context.Context) ([]*Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.removeWhere(ctx, "remove completed", func(item domain.TaskItem) bool {
		return item.IsCompleted
	})
}

// RemoveAll clears the list and cancels every reminder.
func (m *TaskListManager) RemoveAll(ctx context.Context) ([]*Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.store.Items()
	pendings := make([]*Pending, 0, len(list))
	for _, item := range list {
		pendings = append(pendings, m.reminders.Cancel(ctx, item.NotificationID))
	}
	return pendings, m.save(ctx, domain.TaskList{}, "remove all")
}

func (m *TaskListManager) removeWhere(ctx context.Context, op string, match func(domain.TaskItem) bool) ([]*Pending, error) {
	list := m.store.Items()
	kept := make(domain.TaskList, 0, len(list))
	var pendings []*Pending
	for _, item := range list {
		if match(item) {
			pendings = append(pendings, m.reminders.Cancel(ctx, item.NotificationID))
			continue
		}
		kept = append(kept, item)
	}

	if len(pendings) == 0 {
		return nil, nil
	}
	return pendings, m.save(ctx, kept, op)
}

// Duplicate appends a copy of the item with id under new identifiers and
// reconciles the copy's reminder.
func (m *TaskListManager) Duplicate(ctx context.Context, id string) (domain.TaskItem, *Pending, error) {
	original, ok := m.Get(id)
	if !ok {
		return domain.TaskItem{}, nil, errors.NewNotFoundError("task", id)
	}

	dup := original.Duplicate(m.ids)
	pending, err := m.Upsert(ctx, dup)
	stored, _ := m.Get(dup.ID)
	return stored, pending, err
}

// ReconcileAll queues reconciliation for every item with a reminder flag.
func (m *TaskListManager) ReconcileAll(ctx context.Context) []*Pending {
	var pendings []*Pending
	for _, item := range m.Items() {
		if item.HasNotification {
			pendings = append(pendings, m.reminders.Reconcile(ctx, item))
		}
	}
	return pendings
}

// Reload rereads the persisted list after another process changed it and
// brings reminders in line. New or edited items are reconciled when either
// version carries a reminder flag. Reminders of items that are gone are
// canceled. When the list cannot be read the current one is kept.
func (m *TaskListManager) Reload(ctx context.Context) ([]*Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := m.store.Items()
	after, err := m.store.Reload(ctx)
	if err != nil {
		return nil, err
	}

	prev := make(map[string]domain.TaskItem, len(before))
	for _, item := range before {
		prev[item.ID] = item
	}

	var pendings []*Pending
	current := make(map[string]bool, len(after))
	for _, item := range after {
		current[item.ID] = true
		old, existed := prev[item.ID]
		if existed && old == item {
			continue
		}
		if existed && old.HasNotification && old.NotificationID != item.NotificationID {
			pendings = append(pendings, m.reminders.Cancel(ctx, old.NotificationID))
		}
		if item.HasNotification || (existed && old.HasNotification) {
			pendings = append(pendings, m.reminders.Reconcile(ctx, item))
		}
	}
	for _, old := range before {
		if !current[old.ID] && old.HasNotification {
			pendings = append(pendings, m.reminders.Cancel(ctx, old.NotificationID))
		}
	}

	m.logger.Debug("task list reloaded",
		zap.Int("count", len(after)),
		zap.Int("reminder_ops", len(pendings)))
	return pendings, nil
}

// Subscribe registers fn to receive the list after every load, reload and
// save. fn must not call back into the manager. The returned function
// removes the subscription.
func (m *TaskListManager) Subscribe(fn func(domain.TaskList)) func() {
	return m.store.Subscribe(fn)
}

// Get returns the item with id.
func (m *TaskListManager) Get(id string) (domain.TaskItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.store.Find(id)
	if !ok {
		return domain.TaskItem{}, false
	}
	return m.store.Items()[i], true
}

// Items returns a snapshot of the list.
func (m *TaskListManager) Items() domain.TaskList {
	return m.store.Items()
}

// FilteredByTitle returns the items whose title contains query, ignoring
// case. An empty query returns the whole list.
func (m *TaskListManager) FilteredByTitle(query string) domain.TaskList {
	return m.store.Items().FilterByTitle(query)
}

// IsEmpty reports whether the list has no items.
func (m *TaskListManager) IsEmpty() bool {
	return m.store.Items().IsEmpty()
}

// HasNoCompletedItems reports whether no item is completed.
func (m *TaskListManager) HasNoCompletedItems() bool {
	return m.store.Items().HasNoCompletedItems()
}

func (m *TaskListManager) save(ctx context.Context, list domain.TaskList, op string) error {
	if err := m.store.Save(ctx, list); err != nil {
		m.logger.Warn("changes kept in memory only", zap.String("op", op), zap.Error(err))
		return err
	}
	return nil
}
