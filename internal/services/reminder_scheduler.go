package services

import (
	"context"
	stderrors "errors"
	"sync"

	"go.uber.org/zap"

	"task-planner/internal/domain"
	"task-planner/internal/errors"
	"task-planner/internal/logging"
	"task-planner/internal/metrics"
	"task-planner/internal/notify"
)

var (
	// ErrSchedulerClosed is the outcome error for work queued after Close.
	ErrSchedulerClosed = stderrors.New("reminder scheduler closed")
	// ErrAuthorizationUndetermined is the outcome error when a permission
	// request ends without a decision.
	ErrAuthorizationUndetermined = stderrors.New("notification permission was not decided")
)

// SchedulerOptions configures a ReminderScheduler.
type SchedulerOptions struct {
	Clock   domain.Clock
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	// OnAuthorizationDenied runs once per refused scheduling attempt.
	OnAuthorizationDenied func(domain.TaskItem)
	// OnOutcome observes every outcome.
	OnOutcome func(ReminderOutcome)
}

type jobKind int

const (
	jobReconcile jobKind = iota
	jobCancel
)

type reminderJob struct {
	kind           jobKind
	ctx            context.Context
	item           domain.TaskItem
	notificationID string
	pending        *Pending
}

// ReminderScheduler maps task reminders onto a notify.Service. Work runs on
// a single worker in submission order, so a cancel and a later schedule for
// the same handle are never reordered. Callbacks run on the worker.
type ReminderScheduler struct {
	svc     notify.Service
	clock   domain.Clock
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu        sync.Mutex
	cond      *sync.Cond
	queue     []reminderJob
	inflight  int
	closed    bool
	stopped   chan struct{}
	onDenied  func(domain.TaskItem)
	onOutcome func(ReminderOutcome)
}

// NewReminderScheduler starts a scheduler over svc.
func NewReminderScheduler(svc notify.Service, opts SchedulerOptions) *ReminderScheduler {
	s := &ReminderScheduler{
		svc:       svc,
		clock:     opts.Clock,
		logger:    logging.OrNop(opts.Logger),
		metrics:   opts.Metrics,
		stopped:   make(chan struct{}),
		onDenied:  opts.OnAuthorizationDenied,
		onOutcome: opts.OnOutcome,
	}
	if s.clock == nil {
		s.clock = domain.SystemClock
	}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// SetDeniedHandler replaces the OnAuthorizationDenied callback.
func (s *ReminderScheduler) SetDeniedHandler(fn func(domain.TaskItem)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDenied = fn
}

// SetOutcomeHandler replaces the OnOutcome callback.
func (s *ReminderScheduler) SetOutcomeHandler(fn func(ReminderOutcome)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onOutcome = fn
}

// Reconcile queues work that brings the notification for item in line with
// its flag and due date. Validity is evaluated when the work runs.
func (s *ReminderScheduler) Reconcile(ctx context.Context, item domain.TaskItem) *Pending {
	return s.enqueue(reminderJob{kind: jobReconcile, ctx: ctx, item: item, notificationID: item.NotificationID})
}

// Cancel queues an unconditional cancel of notificationID.
func (s *ReminderScheduler) Cancel(ctx context.Context, notificationID string) *Pending {
	return s.enqueue(reminderJob{kind: jobCancel, ctx: ctx, notificationID: notificationID})
}

// Wait blocks until every queued operation has finished.
func (s *ReminderScheduler) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.inflight > 0 {
		s.cond.Wait()
	}
}

// Close finishes queued work and stops the worker.
func (s *ReminderScheduler) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.cond.Broadcast()
	}
	s.mu.Unlock()
	<-s.stopped
}

func (s *ReminderScheduler) enqueue(job reminderJob) *Pending {
	job.pending = newPending()
	job.ctx = context.WithoutCancel(job.ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		job.pending.resolve(ReminderOutcome{
			TaskID:         job.item.ID,
			NotificationID: job.notificationID,
			Status:         ReminderFailed,
			Err:            ErrSchedulerClosed,
		})
		return job.pending
	}
	s.queue = append(s.queue, job)
	s.inflight++
	s.cond.Broadcast()
	s.mu.Unlock()

	return job.pending
}

func (s *ReminderScheduler) run() {
	defer close(s.stopped)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		job := s.queue[0]
		s.queue[0] = reminderJob{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		outcome := s.execute(job)
		s.finish(job, outcome)
	}
}

func (s *ReminderScheduler) execute(job reminderJob) ReminderOutcome {
	outcome := ReminderOutcome{TaskID: job.item.ID, NotificationID: job.notificationID}

	if job.kind == jobCancel {
		return s.cancel(job.ctx, outcome, ReminderCanceled)
	}

	item := job.item
	now := s.clock()
	switch {
	case !item.HasNotification:
		return s.cancel(job.ctx, outcome, ReminderCanceled)
	case !item.DueDateIsValid(now):
		outcome = s.cancel(job.ctx, outcome, ReminderExpired)
		if outcome.Status == ReminderExpired {
			outcome.Err = errors.NewExpiredDueDateError(item.ID, item.DueDate.String())
		}
		return outcome
	}

	state, err := s.authorize(job.ctx)
	if err != nil {
		outcome.Status = ReminderFailed
		outcome.Err = err
		return outcome
	}
	if state == notify.Undetermined {
		outcome.Status = ReminderFailed
		outcome.Err = ErrAuthorizationUndetermined
		return outcome
	}
	if !state.CanSchedule() {
		// drop any handle left from before permission was withdrawn
		if err := s.svc.Cancel(job.ctx, job.notificationID); err != nil {
			s.logger.Warn("failed to cancel reminder after permission was refused",
				zap.String("notification_id", job.notificationID),
				zap.Error(err))
		}
		outcome.Status = ReminderDenied
		outcome.Err = errors.NewPermissionError("schedule", "notifications")
		s.notifyDenied(item)
		return outcome
	}

	if err := s.svc.Cancel(job.ctx, job.notificationID); err != nil {
		outcome.Status = ReminderFailed
		outcome.Err = err
		return outcome
	}

	at := item.DueDate.Instant(now)
	content := notify.Content{Title: item.Title, Body: item.Description}
	if err := s.svc.Schedule(job.ctx, job.notificationID, at, content); err != nil {
		outcome.Status = ReminderFailed
		outcome.Err = err
		return outcome
	}

	outcome.Status = ReminderScheduled
	outcome.At = at
	return outcome
}

func (s *ReminderScheduler) cancel(ctx context.Context, outcome ReminderOutcome, status ReminderStatus) ReminderOutcome {
	if err := s.svc.Cancel(ctx, outcome.NotificationID); err != nil {
		outcome.Status = ReminderFailed
		outcome.Err = err
		return outcome
	}
	outcome.Status = status
	return outcome
}

// authorize returns the permission state, asking for it first when the user
// has not decided yet.
func (s *ReminderScheduler) authorize(ctx context.Context) (notify.AuthState, error) {
	state, err := s.svc.AuthorizationStatus(ctx)
	if err != nil {
		return state, err
	}
	if state != notify.Undetermined {
		return state, nil
	}

	s.logger.Debug("requesting notification permission")
	return s.svc.RequestAuthorization(ctx)
}

func (s *ReminderScheduler) notifyDenied(item domain.TaskItem) {
	s.mu.Lock()
	fn := s.onDenied
	s.mu.Unlock()
	if fn != nil {
		fn(item)
	}
}

func (s *ReminderScheduler) finish(job reminderJob, outcome ReminderOutcome) {
	s.metrics.RecordReminder(string(outcome.Status))

	fields := []zap.Field{
		zap.String("task_id", outcome.TaskID),
		zap.String("notification_id", outcome.NotificationID),
		zap.String("status", string(outcome.Status)),
	}
	switch outcome.Status {
	case ReminderFailed:
		s.logger.Error("reminder operation failed", append(fields, zap.Error(outcome.Err))...)
	case ReminderDenied, ReminderExpired:
		s.logger.Warn("reminder not scheduled", fields...)
	default:
		s.logger.Debug("reminder updated", fields...)
	}

	s.mu.Lock()
	fn := s.onOutcome
	s.mu.Unlock()
	if fn != nil {
		fn(outcome)
	}

	job.pending.resolve(outcome)

	s.mu.Lock()
	s.inflight--
	s.cond.Broadcast()
	s.mu.Unlock()
}
