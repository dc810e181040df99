package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	integrationapp "github.com/stockpulse/invsync/internal/application/integration"
	inventoryapp "github.com/stockpulse/invsync/internal/application/inventory"
	notificationapp "github.com/stockpulse/invsync/internal/application/notification"
	"github.com/stockpulse/invsync/internal/domain/notification"
	"github.com/stockpulse/invsync/internal/infrastructure/broadcast"
	"github.com/stockpulse/invsync/internal/infrastructure/cache"
	"github.com/stockpulse/invsync/internal/infrastructure/config"
	"github.com/stockpulse/invsync/internal/infrastructure/ecommerce"
	"github.com/stockpulse/invsync/internal/infrastructure/event"
	"github.com/stockpulse/invsync/internal/infrastructure/logger"
	"github.com/stockpulse/invsync/internal/infrastructure/notify"
	"github.com/stockpulse/invsync/internal/infrastructure/persistence"
	"github.com/stockpulse/invsync/internal/infrastructure/telemetry"
)

// app holds every long-lived component of one process
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *persistence.Database
	repos    *persistence.Repositories
	backends *cache.Backends
	bus      *event.InMemoryEventBus

	runner    *integrationapp.SyncRunner
	evaluator *inventoryapp.AlertEvaluator

	closers []func(ctx context.Context) error
}

// newApp connects storage and wires the sync and alert pipeline.
// requireRedis makes a configured but unreachable Redis fatal.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger, requireRedis bool) (*app, error) {
	a := &app{cfg: cfg, log: log}

	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return a, fmt.Errorf("init tracing: %w", err)
	}
	a.closers = append(a.closers, tp.Shutdown)

	mp, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return a, fmt.Errorf("init metrics: %w", err)
	}
	a.closers = append(a.closers, mp.Shutdown)

	lp, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry)
	if err != nil {
		return a, fmt.Errorf("init log export: %w", err)
	}
	a.closers = append(a.closers, lp.Shutdown)
	a.log = lp.Attach(log, zapcore.InfoLevel)
	log = a.log

	metrics, err := telemetry.NewSyncMetrics(mp.Meter("invsync"))
	if err != nil {
		return a, fmt.Errorf("init sync metrics: %w", err)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.SQLLevel))
	a.db, err = persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return a, err
	}
	a.closers = append(a.closers, func(context.Context) error { return a.db.Close() })
	if err := telemetry.InstrumentDB(a.db.DB, cfg.Telemetry, log); err != nil {
		return a, fmt.Errorf("instrument database: %w", err)
	}
	a.repos = persistence.NewRepositories(a.db.DB)

	a.backends, err = cache.NewBackends(ctx, cfg.Redis, requireRedis, log)
	if err != nil {
		return a, err
	}
	a.closers = append(a.closers, func(context.Context) error { return a.backends.Close() })

	var redisPublisher broadcast.RedisPublisher
	if a.backends.Redis != nil {
		redisPublisher = a.backends.Redis
	}
	broadcaster, err := broadcast.New(cfg.Broadcast, redisPublisher, log)
	if err != nil {
		return a, err
	}
	if c, ok := broadcaster.(broadcast.Closer); ok {
		a.closers = append(a.closers, func(context.Context) error { return c.Close() })
	}

	var mailer notification.Mailer
	smtp, err := notify.NewSMTPMailer(cfg.Mail, log)
	switch {
	case errors.Is(err, notify.ErrMailDisabled):
		log.Info("Email channel disabled: no SMTP host configured")
	case err != nil:
		return a, err
	default:
		mailer = smtp
	}

	dispatcher := notificationapp.NewNotificationDispatcher(notificationapp.Deps{
		Alerts:      a.repos.Alerts,
		Products:    a.repos.Products,
		Stores:      a.repos.Stores,
		Users:       a.repos.Users,
		InApp:       a.repos.Notifications,
		Broadcaster: broadcaster,
		Mailer:      mailer,
		Webhooks:    notify.NewChatWebhookNotifier(cfg.Webhook.OutboundTimeout),
		Dedupe:      a.backends.Idempotency,
		DedupeTTL:   cfg.Alert.DedupeTTL,
		Metrics:     metrics,
	}, log)

	a.bus = event.NewInMemoryEventBus(log)

	a.evaluator = inventoryapp.NewAlertEvaluator(a.repos.Alerts, a.repos.Products, dispatcher, log,
		inventoryapp.WithEventPublisher(a.bus),
		inventoryapp.WithMetrics(metrics),
		inventoryapp.WithRenotifyAfter(cfg.Alert.RenotifyAfter),
	)

	a.bus.Subscribe(event.NewIdempotentHandler(
		inventoryapp.NewQuantityChangedHandler(a.evaluator), a.backends.Idempotency, 0, log))
	a.bus.Subscribe(event.NewIdempotentHandler(
		notificationapp.NewSyncCompletedHandler(broadcaster), a.backends.Idempotency, 0, log))

	a.runner = integrationapp.NewSyncRunner(integrationapp.SyncRunnerDeps{
		Stores:     a.repos.Stores,
		Logs:       a.repos.SyncLogs,
		Products:   a.repos.Products,
		Clients:    ecommerce.NewDefaultRegistry(cfg.Platform),
		Reconciler: inventoryapp.NewProductReconciler(a.repos.Products, log),
		Locker:     a.backends.Locker,
		Publisher:  a.bus,
		Metrics:    metrics,
	}, cfg.Sync, log)

	if err := a.bus.Start(ctx); err != nil {
		return a, err
	}
	a.closers = append(a.closers, a.bus.Stop)

	return a, nil
}

// Close releases resources in reverse order of acquisition
func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn("Shutdown step failed", zap.Error(err))
		}
	}
}
