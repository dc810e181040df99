package integration

import (
	"context"
	"time"
)

// StoreIntegrationRepository persists store integrations
type StoreIntegrationRepository interface {
	FindByID(ctx context.Context, id uint64) (*StoreIntegration, error)
	FindActive(ctx context.Context) ([]StoreIntegration, error)
	FindByUser(ctx context.Context, userID uint64) ([]StoreIntegration, error)
	Save(ctx context.Context, store *StoreIntegration) error
	// UpdateLastSyncAt stamps a successful sync without touching other columns
	UpdateLastSyncAt(ctx context.Context, id uint64, at time.Time) error
	Delete(ctx context.Context, id uint64) error
}

// SyncLogRepository persists sync audit logs
type SyncLogRepository interface {
	Create(ctx context.Context, log *InventorySyncLog) error
	// Close writes the terminal state of a log that is currently in_progress.
	// It fails with ErrSyncLogInvalidTransition if the stored row is already terminal.
	Close(ctx context.Context, log *InventorySyncLog) error
	FindByID(ctx context.Context, id uint64) (*InventorySyncLog, error)
	FindByStore(ctx context.Context, storeIntegrationID uint64, limit int) ([]InventorySyncLog, error)
}
