package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"task-planner/internal/api"
	"task-planner/internal/config"
	"task-planner/internal/logging"
	"task-planner/internal/metrics"
	"task-planner/internal/notify"
	"task-planner/internal/repository/watch"
	"task-planner/internal/services"
	"task-planner/internal/store"
)

// deliveryBuffer bounds reminders waiting for `watch` to print them
const deliveryBuffer = 16

// Bootstrap wires the task stack for cfg: logger, metrics, blob store, task
// store, local notification center, reminder scheduler and manager. The
// list is loaded before the app is returned. `watch` opens a change watcher
// over the blob store's files on demand.
func Bootstrap(ctx context.Context, cfg *config.Config, env config.Environment, out, errOut io.Writer) (*App, func(), error) {
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: errOut,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("invalid logging configuration: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	factory := config.NewRepositoryFactory(env, cfg)
	blobs, err := factory.CreateBlobStore(ctx)
	if err != nil {
		return nil, nil, NewErrorHandler().Handle("open storage", err)
	}

	taskStore := store.New(blobs,
		store.WithKey(cfg.Storage.Key),
		store.WithLogger(logger),
		store.WithMetrics(m),
	)

	authState, err := notify.ParseAuthState(cfg.Reminders.AuthState)
	if err != nil {
		blobs.Close()
		return nil, nil, err
	}

	deliveries := make(chan notify.Delivery, deliveryBuffer)
	center := notify.NewLocalCenter(authState,
		notify.WithLogger(logger),
		notify.WithDeliver(func(d notify.Delivery) {
			select {
			case deliveries <- d:
			default:
				logger.Warn("reminder dropped, nobody is watching", zap.String("notification_id", d.ID))
			}
		}),
	)

	scheduler := services.NewReminderScheduler(center, services.SchedulerOptions{
		Logger:  logger,
		Metrics: m,
	})
	manager := services.NewTaskListManager(taskStore, scheduler, services.ManagerOptions{
		Logger:                    logger,
		CancelRemindersOnComplete: cfg.Reminders.CancelOnComplete,
	})
	apiInstance := api.New(manager, api.Options{Config: cfg, Denied: scheduler})
	apiInstance.Load(ctx)

	app := NewApp(apiInstance, cfg,
		WithOutput(out, errOut),
		WithLogger(logger),
		WithDeliveries(deliveries),
		WithGatherer(registry),
		WithChangeSource(func() (ChangeSource, error) {
			w, err := factory.CreateChangeWatcher(watch.WithLogger(logger))
			if err != nil || w == nil {
				return nil, err
			}
			return w, nil
		}),
	)

	cleanup := func() {
		scheduler.Close()
		center.Close()
		if err := blobs.Close(); err != nil {
			logger.Warn("closing storage failed", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return app, cleanup, nil
}
