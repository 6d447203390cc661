package cli

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"task-planner/internal/domain"
	"task-planner/internal/errors"
	"task-planner/internal/services"
)

// WatchOptions holds the flags of the watch command
type WatchOptions struct {
	MetricsAddr string
	// Duration stops watching after the given time when positive
	Duration time.Duration
}

// WatchCommand re-arms every stored reminder and prints reminders as they
// fire until the context ends. Edits other runs save are picked up while it
// watches.
type WatchCommand struct {
	app  *App
	opts WatchOptions
}

// NewWatchCommand creates a new watch command handler
func NewWatchCommand(app *App) *WatchCommand {
	return &WatchCommand{app: app}
}

// SetOptions sets the flag values for the next Execute
func (c *WatchCommand) SetOptions(opts WatchOptions) {
	c.opts = opts
}

// Execute runs the watch command
func (c *WatchCommand) Execute(ctx context.Context, args []string) error {
	if c.opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Duration)
		defer cancel()
	}

	if c.opts.MetricsAddr != "" {
		stop, err := c.serveMetrics(c.opts.MetricsAddr)
		if err != nil {
			return NewErrorHandler().Handle("start metrics endpoint", err)
		}
		defer stop()
	}

	changes, stop, err := c.watchChanges(ctx)
	if err != nil {
		return NewErrorHandler().Handle("watch task list", err)
	}
	defer stop()

	armed := 0
	for _, pending := range c.app.api.ReconcileAll(ctx) {
		outcome, err := pending.Wait(ctx)
		if err != nil {
			return nil
		}
		if outcome.Status == services.ReminderScheduled {
			armed++
		}
	}
	c.app.printf("Watching %s\n", plural(armed, "reminder"))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			pendings, err := c.app.api.Reload(ctx)
			if err != nil {
				c.app.logger.Warn("task list reload failed", zap.Error(err))
				continue
			}
			c.app.waitAll(ctx, pendings)
		case delivery, ok := <-c.app.deliveries:
			if !ok {
				return nil
			}
			c.app.printf("Reminder: %s", delivery.Content.Title)
			if delivery.Content.Body != "" {
				c.app.printf(" - %s", delivery.Content.Body)
			}
			c.app.printf(" (%s)\n", c.app.renderer.FormatTime(delivery.At))
		}
	}
}

// watchChanges starts the app's change source and reports reloaded lists.
// Without a source the returned channel is nil and never fires.
func (c *WatchCommand) watchChanges(ctx context.Context) (<-chan struct{}, func(), error) {
	if c.app.changes == nil {
		return nil, func() {}, nil
	}
	source, err := c.app.changes()
	if err != nil {
		return nil, nil, err
	}
	if source == nil {
		return nil, func() {}, nil
	}
	if err := source.Start(ctx); err != nil {
		source.Stop()
		return nil, nil, err
	}

	unsubscribe := c.app.api.OnListChanged(func(list domain.TaskList) {
		now := c.app.clock()
		reminders := 0
		for _, item := range list {
			if item.HasNotification && item.DueDateIsValid(now) {
				reminders++
			}
		}
		c.app.printf("Task list changed: %s, %s\n", plural(len(list), "task"), plural(reminders, "reminder"))
	})
	return source.Changes(), func() {
		unsubscribe()
		source.Stop()
	}, nil
}

// serveMetrics exposes the app's metrics registry on addr. The returned
// func shuts the server down.
func (c *WatchCommand) serveMetrics(addr string) (func(), error) {
	gatherer := c.app.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeInvalidInput, "cannot listen on "+addr)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			c.app.logger.Error("metrics endpoint stopped", zap.Error(err))
		}
	}()
	c.app.printf("Serving metrics on http://%s/metrics\n", ln.Addr())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
