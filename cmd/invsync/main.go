// Command invsync syncs store inventories and evaluates stock alerts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/infrastructure/config"
	"github.com/stockpulse/invsync/internal/infrastructure/logger"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}
	command, args := os.Args[1], os.Args[2:]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var code int
	switch command {
	case "sync":
		code = runSync(ctx, cfg, log, args)
	case "sync-all":
		code = runSyncAll(ctx, cfg, log)
	case "check-alerts":
		code = runCheckAlerts(ctx, cfg, log)
	case "serve":
		code = runServe(ctx, cfg, log)
	case "help", "-h", "--help":
		printUsage()
	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		code = 2
	}

	_ = logger.Sync(log)
	os.Exit(code)
}

// withApp builds the app, runs fn and tears the app down
func withApp(ctx context.Context, cfg *config.Config, log *zap.Logger, requireRedis bool, fn func(a *app) int) int {
	a, err := newApp(ctx, cfg, log, requireRedis)
	defer func() {
		if a == nil {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		a.Close(shutdownCtx)
	}()
	if err != nil {
		log.Error("Failed to start", zap.Error(err))
		return 1
	}
	return fn(a)
}

func runSync(ctx context.Context, cfg *config.Config, log *zap.Logger, args []string) int {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	storeID := fs.Uint64("store", 0, "store integration id")
	productID := fs.Uint64("product", 0, "limit the sync to one product")
	syncType := fs.String("type", string(integration.SyncTypeManual), "sync type: manual, scheduled or webhook")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *storeID == 0 && *productID == 0 {
		fmt.Fprintln(os.Stderr, "sync: -store or -product is required")
		fs.Usage()
		return 2
	}

	return withApp(ctx, cfg, log, false, func(a *app) int {
		t := integration.SyncType(*syncType)
		if *productID == 0 {
			return report(log, a.runner.SyncOne(ctx, *storeID, t))
		}
		o := a.runner.SyncProduct(ctx, *productID, t)
		if *storeID != 0 && o.StoreIntegrationID != 0 && o.StoreIntegrationID != *storeID {
			log.Warn("Product belongs to another store",
				zap.Uint64("requested_store", *storeID),
				zap.Uint64("product_store", o.StoreIntegrationID))
		}
		return report(log, o)
	})
}

func runSyncAll(ctx context.Context, cfg *config.Config, log *zap.Logger) int {
	return withApp(ctx, cfg, log, false, func(a *app) int {
		outcomes, err := a.runner.SyncAll(ctx, integration.SyncTypeManual)
		code := 0
		for _, o := range outcomes {
			if report(log, o) != 0 {
				code = 1
			}
		}
		if err != nil {
			log.Error("Sync of all stores stopped", zap.Error(err))
			return 1
		}
		return code
	})
}

func runCheckAlerts(ctx context.Context, cfg *config.Config, log *zap.Logger) int {
	return withApp(ctx, cfg, log, false, func(a *app) int {
		res, err := a.evaluator.CheckAlerts(ctx)
		if err != nil {
			log.Error("Alert check failed", zap.Error(err))
			return 1
		}
		log.Info("Alert check finished",
			zap.Int("checked", res.Checked),
			zap.Int("triggered", res.Triggered),
			zap.Int("resolved", res.Resolved),
			zap.Int("renotified", res.Renotified),
		)
		return 0
	})
}

func printUsage() {
	fmt.Println(`invsync - multi-store inventory sync and stock alerts

Usage:
  invsync <command> [flags]

Commands:
  sync -store ID [-product ID] [-type manual]   Sync one store, or one product of it
  sync-all                                      Sync every active store in turn
  check-alerts                                  Evaluate armed alerts and re-notify due ones
  serve                                         Run the HTTP API and the periodic triggers

Configuration is read from config.toml, .env and INVSYNC_* environment variables.`)
}
