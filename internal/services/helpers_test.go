package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"task-planner/internal/domain"
	"task-planner/internal/notify"
	"task-planner/internal/store"
	"task-planner/internal/testutil"
)

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type harness struct {
	ctx       context.Context
	clock     *testutil.Clock
	ids       domain.IDGenerator
	notifier  *testutil.FakeNotifier
	blobs     *testutil.FailingBlobStore
	store     *store.TaskStore
	scheduler *ReminderScheduler
	manager   *TaskListManager
	outcomes  []ReminderOutcome
	denied    []domain.TaskItem
}

func newHarness(t *testing.T, state notify.AuthState, configure ...func(*ManagerOptions)) *harness {
	t.Helper()
	h := &harness{
		ctx:      context.Background(),
		clock:    testutil.NewClock(testNow),
		ids:      testutil.SequentialIDs("id"),
		notifier: testutil.NewFakeNotifier(state),
		blobs:    testutil.NewFailingBlobStore(),
	}
	h.store = store.New(h.blobs)
	h.scheduler = NewReminderScheduler(h.notifier, SchedulerOptions{
		Clock:                 h.clock.Now,
		OnOutcome:             func(o ReminderOutcome) { h.outcomes = append(h.outcomes, o) },
		OnAuthorizationDenied: func(item domain.TaskItem) { h.denied = append(h.denied, item) },
	})
	t.Cleanup(h.scheduler.Close)

	opts := ManagerOptions{Clock: h.clock.Now, IDs: h.ids}
	for _, fn := range configure {
		fn(&opts)
	}
	h.manager = NewTaskListManager(h.store, h.scheduler, opts)
	return h
}

func (h *harness) future() domain.DueDate {
	return domain.DueDateFrom(h.clock.Now().Add(2 * time.Hour))
}

func (h *harness) past() domain.DueDate {
	return domain.DueDateFrom(h.clock.Now().Add(-2 * time.Hour))
}

func (h *harness) newItem(title string) domain.TaskItem {
	item := domain.NewTaskItem(h.ids)
	item.Title = title
	return item
}

func (h *harness) withReminder(title string) domain.TaskItem {
	item := h.newItem(title)
	item.DueDate = h.future()
	item.HasNotification = true
	return item
}

// seed upserts items and drains the resulting reminder work.
func (h *harness) seed(t *testing.T, items ...domain.TaskItem) {
	t.Helper()
	for _, item := range items {
		_, err := h.manager.Upsert(h.ctx, item)
		require.NoError(t, err)
	}
	h.scheduler.Wait()
	h.notifier.Reset()
}

func wait(t *testing.T, p *Pending) ReminderOutcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	outcome, err := p.Wait(ctx)
	require.NoError(t, err)
	return outcome
}
