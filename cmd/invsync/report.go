package main

import (
	"go.uber.org/zap"

	integrationapp "github.com/stockpulse/invsync/internal/application/integration"
)

// report logs a sync outcome and returns the process exit code for it
func report(log *zap.Logger, o integrationapp.SyncOutcome) int {
	fields := []zap.Field{
		zap.Uint64("store_integration_id", o.StoreIntegrationID),
		zap.Uint64("sync_log_id", o.SyncLogID),
		zap.String("sync_type", string(o.SyncType)),
		zap.String("status", string(o.Status)),
		zap.Int("created", o.Created),
		zap.Int("updated", o.Updated),
		zap.Int("skipped", o.Skipped),
		zap.Int("failed", o.Failed),
		zap.Duration("duration", o.Duration),
	}
	if o.Succeeded() {
		log.Info(o.Message, fields...)
		return 0
	}
	fields = append(fields, zap.String("reason", o.Reason), zap.Error(o.Err))
	log.Error("Sync did not complete", fields...)
	return 1
}
