package integration

import "github.com/stockpulse/invsync/internal/domain/shared"

// AggregateTypeSyncLog is the aggregate type of sync events
const AggregateTypeSyncLog = "InventorySyncLog"

const (
	EventTypeSyncCompleted = "InventorySyncCompleted"
	EventTypeSyncFailed    = "InventorySyncFailed"
)

// SyncCompletedEvent is raised after a sync log is closed as completed
type SyncCompletedEvent struct {
	shared.BaseDomainEvent
	SyncLogID          uint64   `json:"sync_log_id"`
	StoreIntegrationID uint64   `json:"store_integration_id"`
	UserID             uint64   `json:"user_id"`
	Platform           Platform `json:"platform"`
	SyncType           SyncType `json:"sync_type"`
	ProductsSynced     int      `json:"products_synced"`
	ProductsFailed     int      `json:"products_failed"`
	Message            string   `json:"message"`
}

// NewSyncCompletedEvent creates the event for a closed, completed log
func NewSyncCompletedEvent(store *StoreIntegration, log *InventorySyncLog) *SyncCompletedEvent {
	return &SyncCompletedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeSyncCompleted, AggregateTypeSyncLog, log.ID),
		SyncLogID:          log.ID,
		StoreIntegrationID: store.ID,
		UserID:             store.UserID,
		Platform:           store.Platform,
		SyncType:           log.SyncType,
		ProductsSynced:     log.ProductsSynced,
		ProductsFailed:     log.ProductsFailed,
		Message:            log.Message,
	}
}

// EventType returns the event type name
func (e *SyncCompletedEvent) EventType() string {
	return EventTypeSyncCompleted
}

// SyncFailedEvent is raised after a sync log is closed as failed
type SyncFailedEvent struct {
	shared.BaseDomainEvent
	SyncLogID          uint64   `json:"sync_log_id"`
	StoreIntegrationID uint64   `json:"store_integration_id"`
	UserID             uint64   `json:"user_id"`
	SyncType           SyncType `json:"sync_type"`
	Message            string   `json:"message"`
}

// NewSyncFailedEvent creates the event for a closed, failed log
func NewSyncFailedEvent(store *StoreIntegration, log *InventorySyncLog) *SyncFailedEvent {
	return &SyncFailedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeSyncFailed, AggregateTypeSyncLog, log.ID),
		SyncLogID:          log.ID,
		StoreIntegrationID: store.ID,
		UserID:             store.UserID,
		SyncType:           log.SyncType,
		Message:            log.Message,
	}
}

// EventType returns the event type name
func (e *SyncFailedEvent) EventType() string {
	return EventTypeSyncFailed
}
