package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"task-planner/internal/domain"
	"task-planner/internal/errors"
)

// Delivery is a reminder that fired.
type Delivery struct {
	ID      string
	At      time.Time
	Content Content
}

type scheduled struct {
	at      time.Time
	content Content
	timer   *time.Timer
}

// LocalCenter is an in-process Service that fires reminders with timers.
type LocalCenter struct {
	mu      sync.Mutex
	state   AuthState
	grant   AuthState
	entries map[string]*scheduled
	deliver func(Delivery)
	clock   domain.Clock
	logger  *zap.Logger
}

// LocalOption configures a LocalCenter.
type LocalOption func(*LocalCenter)

// WithDeliver sets the callback run when a reminder fires.
func WithDeliver(fn func(Delivery)) LocalOption {
	return func(c *LocalCenter) { c.deliver = fn }
}

// WithClock sets the clock used to compute timer delays.
func WithClock(clock domain.Clock) LocalOption {
	return func(c *LocalCenter) { c.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) LocalOption {
	return func(c *LocalCenter) { c.logger = logger }
}

// WithGrant sets the state a permission request moves to from
// Undetermined. Defaults to Authorized.
func WithGrant(state AuthState) LocalOption {
	return func(c *LocalCenter) { c.grant = state }
}

// NewLocalCenter creates a center starting in the given permission state.
func NewLocalCenter(initial AuthState, opts ...LocalOption) *LocalCenter {
	c := &LocalCenter{
		state:   initial,
		grant:   Authorized,
		entries: make(map[string]*scheduled),
		clock:   domain.SystemClock,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *LocalCenter) AuthorizationStatus(ctx context.Context) (AuthState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, nil
}

func (c *LocalCenter) RequestAuthorization(ctx context.Context) (AuthState, error) {
	if err := ctx.Err(); err != nil {
		return Undetermined, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Undetermined {
		c.state = c.grant
		c.logger.Info("notification permission requested", zap.Stringer("state", c.state))
	}
	return c.state, nil
}

func (c *LocalCenter) Schedule(ctx context.Context, id string, at time.Time, content Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.CanSchedule() {
		return errors.NewPermissionError("schedule", "notifications")
	}

	c.stopLocked(id)

	delay := at.Sub(c.clock())
	if delay < 0 {
		delay = 0
	}
	entry := &scheduled{at: at, content: content}
	entry.timer = time.AfterFunc(delay, func() { c.fire(id, entry) })
	c.entries[id] = entry

	c.logger.Debug("reminder scheduled", zap.String("id", id), zap.Time("at", at))
	return nil
}

func (c *LocalCenter) Cancel(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopLocked(id) {
		c.logger.Debug("reminder canceled", zap.String("id", id))
	}
	return nil
}

// Active reports whether a reminder is pending for id.
func (c *LocalCenter) Active(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

// Pending returns the ids of every pending reminder, sorted.
func (c *LocalCenter) Pending() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close stops every pending timer.
func (c *LocalCenter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.entries {
		c.stopLocked(id)
	}
}

func (c *LocalCenter) stopLocked(id string) bool {
	entry, ok := c.entries[id]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(c.entries, id)
	return true
}

func (c *LocalCenter) fire(id string, entry *scheduled) {
	c.mu.Lock()
	// a replaced or canceled entry may still fire if its timer raced Stop
	if c.entries[id] != entry {
		c.mu.Unlock()
		return
	}
	delete(c.entries, id)
	deliver := c.deliver
	c.mu.Unlock()

	c.logger.Info("reminder fired", zap.String("id", id), zap.String("title", entry.content.Title))
	if deliver != nil {
		deliver(Delivery{ID: id, At: entry.at, Content: entry.content})
	}
}
