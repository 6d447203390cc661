package api

import (
	"context"
	"time"

	"task-planner/internal/config"
	"task-planner/internal/domain"
	"task-planner/internal/errors"
	"task-planner/internal/services"
	"task-planner/internal/validation"
)

// TaskInput carries the fields of the task edit form.
type TaskInput struct {
	Title       string
	Description string
	Priority    domain.Priority
	// Due is nil when the task has no due date
	Due      *time.Time
	Reminder bool
}

// API defines the operations offered to the presentation layer.
type API interface {
	Load(ctx context.Context) domain.TaskList

	CreateTask(ctx context.Context, in TaskInput) (domain.TaskItem, *services.Pending, error)
	UpdateTask(ctx context.Context, id string, in TaskInput) (domain.TaskItem, *services.Pending, error)
	GetTask(id string) (domain.TaskItem, error)
	ResolveTask(ref string) (domain.TaskItem, error)
	ListTasks(opts domain.FilterOptions) domain.TaskList
	FilteredByTitle(query string) domain.TaskList

	SetCompleted(ctx context.Context, id string, completed bool) (*services.Pending, error)
	DuplicateTask(ctx context.Context, id string) (domain.TaskItem, *services.Pending, error)
	DeleteTasks(ctx context.Context, ids ...string) ([]*services.Pending, error)
	DeleteCompleted(ctx context.Context) ([]*services.Pending, error)
	DeleteAll(ctx context.Context) ([]*services.Pending, error)
	ReconcileAll(ctx context.Context) []*services.Pending
	// Reload rereads a list changed by another process and brings
	// reminders in line with it.
	Reload(ctx context.Context) ([]*services.Pending, error)
	// OnListChanged registers fn to receive the list after every load,
	// reload and save. The returned function removes it.
	OnListChanged(fn func(domain.TaskList)) func()

	IsEmpty() bool
	HasNoCompletedItems() bool

	// OnAuthorizationDenied registers fn to be called once per scheduling
	// attempt refused by the notification service.
	OnAuthorizationDenied(fn func(domain.TaskItem))

	// InputFrom fills an edit form from an existing task.
	InputFrom(item domain.TaskItem) TaskInput
}

// DeniedHandlerSetter is implemented by reminder schedulers that report
// authorization refusals.
type DeniedHandlerSetter interface {
	SetDeniedHandler(fn func(domain.TaskItem))
}

// Options configures the API.
type Options struct {
	Config *config.Config
	Clock  domain.Clock
	Denied DeniedHandlerSetter
}

type apiImpl struct {
	manager       *services.TaskListManager
	denied        DeniedHandlerSetter
	taskValidator *validation.TaskValidator
	clock         domain.Clock
}

// New creates a new API instance over manager.
func New(manager *services.TaskListManager, opts Options) API {
	a := &apiImpl{
		manager:       manager,
		denied:        opts.Denied,
		taskValidator: validation.NewTaskValidator(),
		clock:         opts.Clock,
	}
	if opts.Config != nil {
		a.taskValidator = validation.NewTaskValidatorWithConfig(opts.Config)
	}
	if a.clock == nil {
		a.clock = domain.SystemClock
	}
	return a
}

func (a *apiImpl) Load(ctx context.Context) domain.TaskList {
	return a.manager.Load(ctx)
}

func (a *apiImpl) CreateTask(ctx context.Context, in TaskInput) (domain.TaskItem, *services.Pending, error) {
	item := a.apply(a.manager.NewItem(), in)
	if err := a.validate(item); err != nil {
		return domain.TaskItem{}, nil, err
	}

	pending, err := a.manager.Upsert(ctx, item)
	return item, pending, err
}

func (a *apiImpl) UpdateTask(ctx context.Context, id string, in TaskInput) (domain.TaskItem, *services.Pending, error) {
	existing, err := a.GetTask(id)
	if err != nil {
		return domain.TaskItem{}, nil, err
	}

	item := a.apply(existing, in)
	if err := a.validate(item); err != nil {
		return domain.TaskItem{}, nil, err
	}

	pending, err := a.manager.Upsert(ctx, item)
	return item, pending, err
}

func (a *apiImpl) GetTask(id string) (domain.TaskItem, error) {
	item, ok := a.manager.Get(id)
	if !ok {
		return domain.TaskItem{}, errors.NewNotFoundError("task", id)
	}
	return item, nil
}

func (a *apiImpl) ListTasks(opts domain.FilterOptions) domain.TaskList {
	return a.manager.Items().Filter(opts)
}

func (a *apiImpl) FilteredByTitle(query string) domain.TaskList {
	return a.manager.FilteredByTitle(query)
}

func (a *apiImpl) SetCompleted(ctx context.Context, id string, completed bool) (*services.Pending, error) {
	if _, err := a.GetTask(id); err != nil {
		return nil, err
	}
	return a.manager.SetCompletedState(ctx, id, completed)
}

func (a *apiImpl) DuplicateTask(ctx context.Context, id string) (domain.TaskItem, *services.Pending, error) {
	return a.manager.Duplicate(ctx, id)
}

func (a *apiImpl) DeleteTasks(ctx context.Context, ids ...string) ([]*services.Pending, error) {
	for _, id := range ids {
		if _, err := a.GetTask(id); err != nil {
			return nil, err
		}
	}
	return a.manager.Remove(ctx, ids...)
}

func (a *apiImpl) DeleteCompleted(ctx context.Context) ([]*services.Pending, error) {
	return a.manager.RemoveCompleted(ctx)
}

func (a *apiImpl) DeleteAll(ctx context.Context) ([]*services.Pending, error) {
	return a.manager.RemoveAll(ctx)
}

func (a *apiImpl) ReconcileAll(ctx context.Context) []*services.Pending {
	return a.manager.ReconcileAll(ctx)
}

func (a *apiImpl) Reload(ctx context.Context) ([]*services.Pending, error) {
	pendings, err := a.manager.Reload(ctx)
	if err != nil {
		return nil, errors.NewStorageError("reload task list", err)
	}
	return pendings, nil
}

func (a *apiImpl) OnListChanged(fn func(domain.TaskList)) func() {
	return a.manager.Subscribe(fn)
}

func (a *apiImpl) IsEmpty() bool {
	return a.manager.IsEmpty()
}

func (a *apiImpl) HasNoCompletedItems() bool {
	return a.manager.HasNoCompletedItems()
}

func (a *apiImpl) OnAuthorizationDenied(fn func(domain.TaskItem)) {
	if a.denied != nil {
		a.denied.SetDeniedHandler(fn)
	}
}

// InputFrom only carries the reminder over while it is still active, so an
// edit of a task whose reminder has lapsed is not rejected as expired.
func (a *apiImpl) InputFrom(item domain.TaskItem) TaskInput {
	in := TaskInput{
		Title:       item.Title,
		Description: item.Description,
		Priority:    item.Priority,
		Reminder:    item.ReminderActive(a.clock()),
	}
	if !item.DueDate.IsZero() {
		due := item.DueDate.In(a.clock().Location())
		in.Due = &due
	}
	return in
}

func (a *apiImpl) apply(item domain.TaskItem, in TaskInput) domain.TaskItem {
	item.Title = validation.NewValidator().TrimAndValidateString(in.Title)
	item.Description = in.Description
	item.Priority = in.Priority
	item.DueDate = domain.NoDueDate
	if in.Due != nil {
		item.DueDate = domain.DueDateFrom(*in.Due)
	}
	item.HasNotification = in.Reminder
	return item
}

// validate rejects the form before any mutation. An expired reminder date
// is reported as its own error type so callers can prompt for a new date.
func (a *apiImpl) validate(item domain.TaskItem) error {
	err := a.taskValidator.ValidateTaskItem(item, a.clock())
	if err == nil {
		return nil
	}

	if ve, ok := err.(*validation.ValidationError); ok && ve.HasErrorType(validation.ErrorTypeExpired) && len(ve.Errors) == 1 {
		return errors.NewExpiredDueDateError(item.ID, item.DueDate.String())
	}
	return err
}
