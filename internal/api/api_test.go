package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-planner/internal/config"
	"task-planner/internal/domain"
	apperrors "task-planner/internal/errors"
	"task-planner/internal/notify"
	"task-planner/internal/services"
	"task-planner/internal/store"
	"task-planner/internal/testutil"
	"task-planner/internal/validation"
)

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	api       API
	clock     *testutil.Clock
	notifier  *testutil.FakeNotifier
	scheduler *services.ReminderScheduler
	blobs     *testutil.FailingBlobStore
	store     *store.TaskStore
}

func setupTestAPI(t *testing.T, state notify.AuthState) *fixture {
	t.Helper()

	f := &fixture{
		clock:    testutil.NewClock(testNow),
		notifier: testutil.NewFakeNotifier(state),
	}
	f.blobs = testutil.NewFailingBlobStore()
	f.store = store.New(f.blobs)
	f.scheduler = services.NewReminderScheduler(f.notifier, services.SchedulerOptions{Clock: f.clock.Now})
	t.Cleanup(f.scheduler.Close)

	manager := services.NewTaskListManager(f.store, f.scheduler, services.ManagerOptions{
		Clock: f.clock.Now,
		IDs:   testutil.SequentialIDs("task"),
	})
	f.api = New(manager, Options{
		Config: config.NewConfig(),
		Clock:  f.clock.Now,
		Denied: f.scheduler,
	})
	return f
}

func waitFor(t *testing.T, p *services.Pending) services.ReminderOutcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	outcome, err := p.Wait(ctx)
	require.NoError(t, err)
	return outcome
}

func at(d time.Duration) *time.Time {
	t := testNow.Add(d)
	return &t
}

func TestAPI_CreateAndGetTask(t *testing.T) {
	f := setupTestAPI(t, notify.Authorized)
	ctx := context.Background()

	item, pending, err := f.api.CreateTask(ctx, TaskInput{
		Title:       "  Buy milk  ",
		Description: "semi-skimmed",
		Priority:    domain.PriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", item.Title)
	assert.Equal(t, domain.NoDueDate, item.DueDate)
	assert.NotEmpty(t, item.NotificationID)
	assert.Equal(t, services.ReminderCanceled, waitFor(t, pending).Status)

	got, err := f.api.GetTask(item.ID)
	require.NoError(t, err)
	assert.Equal(t, item, got)

	assert.False(t, f.api.IsEmpty())
	assert.True(t, f.api.HasNoCompletedItems())
	assert.Len(t, f.store.Items(), 1)
}

func TestAPI_CreateTaskWithReminder(t *testing.T) {
	f := setupTestAPI(t, notify.Authorized)

	item, pending, err := f.api.CreateTask(context.Background(), TaskInput{
		Title:    "Pay rent",
		Priority: domain.PriorityMedium,
		Due:      at(3 * time.Hour),
		Reminder: true,
	})
	require.NoError(t, err)

	outcome := waitFor(t, pending)
	assert.Equal(t, services.ReminderScheduled, outcome.Status)
	assert.True(t, f.notifier.Active(item.NotificationID))
	assert.Equal(t, domain.DueDate{Year: 2024, Month: 6, Day: 1, Hour: 12, Minute: 0}, item.DueDate)
}

func TestAPI_CreateTaskRejectsEmptyTitle(t *testing.T) {
	f := setupTestAPI(t, notify.Authorized)

	_, pending, err := f.api.CreateTask(context.Background(), TaskInput{Title: "   "})
	require.Error(t, err)
	assert.Nil(t, pending)
	assert.True(t, validation.IsValidationError(err))
	assert.True(t, f.api.IsEmpty(), "rejected input must not mutate the list")
}

func TestAPI_CreateTaskRejectsExpiredReminder(t *testing.T) {
	f := setupTestAPI(t, notify.Authorized)

	_, _, err := f.api.CreateTask(context.Background(), TaskInput{
		Title:    "Too late",
		Due:      at(-time.Hour),
		Reminder: true,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeExpiredDueDate))
	assert.True(t, f.api.IsEmpty())
	assert.Empty(t, f.notifier.Calls())

	// a past date without a reminder is fine
	_, _, err = f.api.CreateTask(context.Background(), TaskInput{Title: "Overdue", Due: at(-time.Hour)})
	assert.NoError(t, err)
}

func TestAPI_UpdateTask(t *testing.T) {
	f := setupTestAPI(t, notify.Authorized)
	ctx := context.Background()

	item, pending, err := f.api.CreateTask(ctx, TaskInput{Title: "Draft", Due: at(time.Hour), Reminder: true})
	require.NoError(t, err)
	waitFor(t, pending)

	in := f.api.InputFrom(item)
	assert.True(t, in.Reminder)
	require.NotNil(t, in.Due)
	in.Title = "Final"
	in.Reminder = false

	updated, pending, err := f.api.UpdateTask(ctx, item.ID, in)
	require.NoError(t, err)
	assert.Equal(t, item.ID, updated.ID)
	assert.Equal(t, item.NotificationID, updated.NotificationID)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, item.DueDate, updated.DueDate)
	assert.Equal(t, services.ReminderCanceled, waitFor(t, pending).Status)
	assert.False(t, f.notifier.Active(item.NotificationID))

	_, _, err = f.api.UpdateTask(ctx, "missing", in)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}

func TestAPI_InputFromDropsLapsedReminder(t *testing.T) {
	f := setupTestAPI(t, notify.Authorized)
	ctx := context.Background()

	item, pending, err := f.api.CreateTask(ctx, TaskInput{Title: "Soon", Due: at(time.Hour), Reminder: true})
	require.NoError(t, err)
	waitFor(t, pending)

	f.clock.Advance(2 * time.Hour)

	in := f.api.InputFrom(item)
	assert.False(t, in.Reminder)

	_, _, err = f.api.UpdateTask(ctx, item.ID, in)
	assert.NoError(t, err)
}

func TestAPI_SetCompletedAndDelete(t *testing.T) {
	f := setupTestAPI(t, notify.Authorized)
	ctx := context.Background()

	a, _, err := f.api.CreateTask(ctx, TaskInput{Title: "a"})
	require.NoError(t, err)
	b, _, err := f.api.CreateTask(ctx, TaskInput{Title: "b"})
	require.NoError(t, err)
	f.scheduler.Wait()

	_, err = f.api.SetCompleted(ctx, a.ID, true)
	require.NoError(t, err)
	assert.False(t, f.api.HasNoCompletedItems())

	_, err = f.api.SetCompleted(ctx, "missing", true)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	pendings, err := f.api.DeleteCompleted(ctx)
	require.NoError(t, err)
	assert.Len(t, pendings, 1)
	assert.True(t, f.api.HasNoCompletedItems())

	_, err = f.api.DeleteTasks(ctx, "missing")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	pendings, err = f.api.DeleteTasks(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, pendings, 1)
	assert.True(t, f.api.IsEmpty())
}

func TestAPI_DeleteAllAndDuplicate(t *testing.T) {
	f := setupTestAPI(t, notify.Authorized)
	ctx := context.Background()

	orig, _, err := f.api.CreateTask(ctx, TaskInput{Title: "Water plants", Due: at(time.Hour), Reminder: true})
	require.NoError(t, err)

	dup, pending, err := f.api.DuplicateTask(ctx, orig.ID)
	require.NoError(t, err)
	assert.NotEqual(t, orig.ID, dup.ID)
	assert.NotEqual(t, orig.NotificationID, dup.NotificationID)
	assert.Equal(t, orig.Title, dup.Title)
	assert.Equal(t, services.ReminderScheduled, waitFor(t, pending).Status)

	pendings, err := f.api.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Len(t, pendings, 2)
	f.scheduler.Wait()
	assert.True(t, f.api.IsEmpty())
	assert.False(t, f.notifier.Active(orig.NotificationID))
	assert.False(t, f.notifier.Active(dup.NotificationID))
}

func TestAPI_ListAndFilter(t *testing.T) {
	f := setupTestAPI(t, notify.Authorized)
	ctx := context.Background()

	for _, in := range []TaskInput{
		{Title: "Buy milk", Priority: domain.PriorityLow},
		{Title: "Call mum", Priority: domain.PriorityHigh},
		{Title: "buy stamps", Priority: domain.PriorityHigh},
	} {
		_, _, err := f.api.CreateTask(ctx, in)
		require.NoError(t, err)
	}

	assert.Len(t, f.api.FilteredByTitle("BUY"), 2)
	assert.Len(t, f.api.FilteredByTitle(""), 3)

	high := domain.PriorityHigh
	assert.Len(t, f.api.ListTasks(domain.FilterOptions{Priority: &high}), 2)
	assert.Len(t, f.api.ListTasks(domain.FilterOptions{Query: "buy", Priority: &high}), 1)
}

func TestAPI_OnAuthorizationDenied(t *testing.T) {
	f := setupTestAPI(t, notify.Denied)

	var denied []domain.TaskItem
	f.api.OnAuthorizationDenied(func(item domain.TaskItem) { denied = append(denied, item) })

	item, pending, err := f.api.CreateTask(context.Background(), TaskInput{Title: "Stretch", Due: at(time.Hour), Reminder: true})
	require.NoError(t, err)

	assert.Equal(t, services.ReminderDenied, waitFor(t, pending).Status)
	require.Len(t, denied, 1)
	assert.Equal(t, item.ID, denied[0].ID)
}

func TestAPI_ReconcileAll(t *testing.T) {
	f := setupTestAPI(t, notify.Authorized)
	ctx := context.Background()

	_, _, err := f.api.CreateTask(ctx, TaskInput{Title: "with", Due: at(time.Hour), Reminder: true})
	require.NoError(t, err)
	_, _, err = f.api.CreateTask(ctx, TaskInput{Title: "without"})
	require.NoError(t, err)
	f.scheduler.Wait()

	pendings := f.api.ReconcileAll(ctx)
	require.Len(t, pendings, 1)
	assert.Equal(t, services.ReminderScheduled, waitFor(t, pendings[0]).Status)
}

func TestAPI_ReloadPicksUpOtherWriters(t *testing.T) {
	f := setupTestAPI(t, notify.Authorized)
	ctx := context.Background()

	var sizes []int
	unsubscribe := f.api.OnListChanged(func(list domain.TaskList) { sizes = append(sizes, len(list)) })
	defer unsubscribe()

	other := store.New(f.blobs)
	item := domain.NewTaskItem(testutil.SequentialIDs("other"))
	item.Title = "From another run"
	item.DueDate = domain.DueDateFrom(testNow.Add(time.Hour))
	item.HasNotification = true
	require.NoError(t, other.Save(ctx, domain.TaskList{item}))

	pendings, err := f.api.Reload(ctx)
	require.NoError(t, err)
	require.Len(t, pendings, 1)

	assert.Equal(t, services.ReminderScheduled, waitFor(t, pendings[0]).Status)
	assert.True(t, f.notifier.Active(item.NotificationID))
	assert.Equal(t, []int{1}, sizes)
}

func TestAPI_ReloadReadFailure(t *testing.T) {
	f := setupTestAPI(t, notify.Authorized)
	f.blobs.ReadErr = apperrors.NewPermissionError("read", "TodoList.json")

	pendings, err := f.api.Reload(context.Background())

	assert.Nil(t, pendings)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeStorage))
}
