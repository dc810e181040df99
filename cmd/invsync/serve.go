package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/infrastructure/config"
	"github.com/stockpulse/invsync/internal/infrastructure/scheduler"
	"github.com/stockpulse/invsync/internal/interfaces/http/handler"
	"github.com/stockpulse/invsync/internal/interfaces/http/middleware"
	"github.com/stockpulse/invsync/internal/interfaces/http/router"
)

func runServe(ctx context.Context, cfg *config.Config, log *zap.Logger) int {
	return withApp(ctx, cfg, log, cfg.App.Env == "production", func(a *app) int {
		if cfg.App.Env == "production" {
			gin.SetMode(gin.ReleaseMode)
		}

		checks := map[string]handler.Pinger{"database": a.db}
		if a.backends.Redis != nil {
			checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
				return a.backends.Redis.Ping(ctx).Err()
			})
		}

		engine := router.NewEngine(router.Handlers{
			System: handler.NewSystemHandler(cfg.App.Name, version, checks),
			Sync:   handler.NewSyncHandler(a.runner, a.repos.SyncLogs),
			Alert:  handler.NewAlertHandler(a.evaluator),
		}, router.EngineConfig{
			WebhookSecret: cfg.Webhook.Secret,
			RateLimit:     cfg.Webhook.RateLimit,
			RateBurst:     cfg.Webhook.RateBurst,
			Tracing: middleware.TracingConfig{
				ServiceName: cfg.Telemetry.ServiceName,
				Enabled:     cfg.Telemetry.Enabled,
			},
		}, a.log)

		if cfg.Webhook.Secret == "" {
			a.log.Warn("No webhook secret configured; webhook and audit routes reject every request")
		}

		triggers, err := newTriggers(cfg, a)
		if err != nil {
			a.log.Error("Failed to create triggers", zap.Error(err))
			return 1
		}
		if triggers != nil {
			if err := triggers.Start(ctx); err != nil {
				a.log.Error("Failed to start triggers", zap.Error(err))
				return 1
			}
		}

		srv := &http.Server{
			Addr:              ":" + cfg.App.Port,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
		}

		errCh := make(chan error, 1)
		go func() {
			a.log.Info("Server starting", zap.String("addr", srv.Addr), zap.String("version", version))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		code := 0
		select {
		case <-ctx.Done():
			a.log.Info("Shutting down server...")
		case err := <-errCh:
			if err != nil {
				a.log.Error("Server failed", zap.Error(err))
				code = 1
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()

		if triggers != nil {
			if err := triggers.Stop(shutdownCtx); err != nil {
				a.log.Warn("Triggers did not stop cleanly", zap.Error(err))
			}
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Error("Server forced to shutdown", zap.Error(err))
			code = 1
		}

		a.log.Info("Server exited")
		return code
	})
}

// newTriggers returns nil when the scheduler is disabled
func newTriggers(cfg *config.Config, a *app) (*scheduler.Group, error) {
	if !cfg.Scheduler.Enabled {
		return nil, nil
	}

	syncTrigger, err := scheduler.NewSyncTrigger(cfg.Scheduler, func(ctx context.Context) error {
		outcomes, err := a.runner.SyncAll(ctx, integration.SyncTypeScheduled)
		if err != nil {
			return err
		}
		failed := 0
		for _, o := range outcomes {
			if !o.Succeeded() {
				failed++
			}
		}
		if failed > 0 {
			return errors.New("one or more store syncs did not complete")
		}
		return nil
	}, a.log)
	if err != nil {
		return nil, err
	}

	alertTrigger, err := scheduler.NewAlertCheckTrigger(cfg.Scheduler, func(ctx context.Context) error {
		_, err := a.evaluator.CheckAlerts(ctx)
		return err
	}, a.log)
	if err != nil {
		return nil, err
	}

	return scheduler.NewGroup(syncTrigger, alertTrigger), nil
}
