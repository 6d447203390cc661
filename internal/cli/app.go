package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"task-planner/internal/api"
	"task-planner/internal/config"
	"task-planner/internal/domain"
	"task-planner/internal/errors"
	"task-planner/internal/logging"
	"task-planner/internal/notify"
	"task-planner/internal/services"
)

// dueLayouts are the accepted --due formats, tried in order
var dueLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// defaultDueHour is used when --due names a day without a time
const defaultDueHour = 9

// App represents the main CLI application
type App struct {
	api        api.API
	config     *config.Config
	out        io.Writer
	errOut     io.Writer
	clock      domain.Clock
	logger     *zap.Logger
	deliveries <-chan notify.Delivery
	changes    func() (ChangeSource, error)
	gatherer   prometheus.Gatherer
	renderer   *Renderer
	registry   *CommandRegistry
}

// ChangeSource signals when the persisted task list was changed by another
// process.
type ChangeSource interface {
	Start(ctx context.Context) error
	Changes() <-chan struct{}
	Stop()
}

// AppOption configures an App.
type AppOption func(*App)

// WithOutput sets the writers for normal and diagnostic output.
func WithOutput(out, errOut io.Writer) AppOption {
	return func(a *App) {
		a.out = out
		a.errOut = errOut
	}
}

// WithClock sets the clock used for due dates and display.
func WithClock(clock domain.Clock) AppOption {
	return func(a *App) { a.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) AppOption {
	return func(a *App) { a.logger = logger }
}

// WithDeliveries sets the channel `watch` reads fired reminders from.
func WithDeliveries(ch <-chan notify.Delivery) AppOption {
	return func(a *App) { a.deliveries = ch }
}

// WithChangeSource sets how `watch` learns about edits made by other runs.
// open may return a nil source when the storage cannot change underneath.
func WithChangeSource(open func() (ChangeSource, error)) AppOption {
	return func(a *App) { a.changes = open }
}

// WithGatherer sets the registry `watch` exposes on its metrics endpoint.
func WithGatherer(g prometheus.Gatherer) AppOption {
	return func(a *App) { a.gatherer = g }
}

// NewApp creates a new CLI application instance with dependency injection
func NewApp(apiInstance api.API, cfg *config.Config, opts ...AppOption) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	app := &App{
		api:    apiInstance,
		config: cfg,
		out:    os.Stdout,
		errOut: os.Stderr,
		clock:  domain.SystemClock,
	}
	for _, opt := range opts {
		opt(app)
	}
	app.logger = logging.OrNop(app.logger)
	app.renderer = NewRenderer(app.out, cfg.Display)
	app.registry = NewCommandRegistry(app)

	apiInstance.OnAuthorizationDenied(func(item domain.TaskItem) {
		fmt.Fprintf(app.errOut, "Notifications are turned off, no reminder was set for %q. Allow notifications and try again.\n", item.Title)
	})
	return app
}

// Registry returns the command handlers of the app
func (a *App) Registry() *CommandRegistry {
	return a.registry
}

// Run executes a registered command by name
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%s", a.registry.GetUsage())
	}
	return a.registry.Execute(ctx, args[0], args[1:])
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

// parseDue parses a --due value in the clock's location. An empty value or
// "none" means no due date.
func (a *App) parseDue(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "none") {
		return nil, nil
	}

	loc := a.clock().Location()
	for i, layout := range dueLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err != nil {
			continue
		}
		if i == len(dueLayouts)-1 {
			t = time.Date(t.Year(), t.Month(), t.Day(), defaultDueHour, 0, 0, 0, loc)
		}
		return &t, nil
	}
	return nil, errors.NewInvalidInputError("due", value, "expected YYYY-MM-DD HH:MM")
}

func parsePriority(value string) (domain.Priority, error) {
	if strings.TrimSpace(value) == "" {
		return domain.DefaultPriority, nil
	}
	p, err := domain.ParsePriority(value)
	if err != nil {
		return domain.DefaultPriority, errors.NewInvalidInputError("priority", value, "expected low, medium or high")
	}
	return p, nil
}

// reportReminder waits for reminder work queued by a mutation and prints
// its result. Denials are reported by the OnAuthorizationDenied handler.
func (a *App) reportReminder(ctx context.Context, pending *services.Pending) {
	if pending == nil {
		return
	}
	outcome, err := pending.Wait(ctx)
	if err != nil {
		a.logger.Warn("reminder result unavailable", zap.Error(err))
		return
	}

	switch outcome.Status {
	case services.ReminderScheduled:
		a.printf("Reminder set for %s, delivered while tp watch runs\n", a.renderer.FormatTime(outcome.At))
	case services.ReminderExpired:
		fmt.Fprintf(a.errOut, "The due date has passed, no reminder was set.\n")
	case services.ReminderFailed:
		fmt.Fprintf(a.errOut, "Could not set the reminder: %v\n", outcome.Err)
	}
}

// waitAll waits for every pending operation, logging failures.
func (a *App) waitAll(ctx context.Context, pendings []*services.Pending) {
	for _, p := range pendings {
		outcome, err := p.Wait(ctx)
		if err != nil {
			a.logger.Warn("reminder result unavailable", zap.Error(err))
			return
		}
		if outcome.Status == services.ReminderFailed {
			a.logger.Warn("reminder cancel failed", zap.String("notification_id", outcome.NotificationID), zap.Error(outcome.Err))
		}
	}
}

// positions maps task ids to their 1-based list position
func (a *App) positions() map[string]int {
	items := a.api.ListTasks(domain.FilterOptions{})
	positions := make(map[string]int, len(items))
	for i, item := range items {
		positions[item.ID] = i + 1
	}
	return positions
}

func (a *App) position(id string) int {
	return a.positions()[id]
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
