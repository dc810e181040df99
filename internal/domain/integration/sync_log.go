package integration

import (
	"errors"
	"time"
)

var (
	ErrSyncLogNotFound          = errors.New("integration: sync log not found")
	ErrSyncLogInvalidTransition = errors.New("integration: invalid sync log status transition")
)

// SyncType records what started a sync run
type SyncType string

const (
	SyncTypeManual    SyncType = "manual"
	SyncTypeScheduled SyncType = "scheduled"
	SyncTypeWebhook   SyncType = "webhook"
)

// IsValid returns true if the sync type is known
func (t SyncType) IsValid() bool {
	switch t {
	case SyncTypeManual, SyncTypeScheduled, SyncTypeWebhook:
		return true
	default:
		return false
	}
}

// SyncStatus is the lifecycle state of a sync run
type SyncStatus string

const (
	SyncStatusPending    SyncStatus = "pending"
	SyncStatusInProgress SyncStatus = "in_progress"
	SyncStatusCompleted  SyncStatus = "completed"
	SyncStatusFailed     SyncStatus = "failed"
)

// IsTerminal returns true for completed and failed
func (s SyncStatus) IsTerminal() bool {
	return s == SyncStatusCompleted || s == SyncStatusFailed
}

// SyncDetails is the structured breakdown stored with a finished sync
type SyncDetails struct {
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Skipped int              `json:"skipped"`
	Errors  []SyncItemDetail `json:"errors,omitempty"`
}

// SyncItemDetail describes a single snapshot that could not be reconciled
type SyncItemDetail struct {
	SKU     string `json:"sku"`
	Message string `json:"message"`
}

// InventorySyncLog is the audit record of one sync run.
// Status only moves forward: pending -> in_progress -> completed|failed.
type InventorySyncLog struct {
	ID                 uint64
	StoreIntegrationID uint64
	ProductID          *uint64
	SyncType           SyncType
	Status             SyncStatus
	Message            string
	ProductsSynced     int
	ProductsFailed     int
	Details            *SyncDetails
	StartedAt          *time.Time
	CompletedAt        *time.Time
	CreatedAt          time.Time
}

// NewInventorySyncLog creates a pending log for a store, optionally scoped to one product
func NewInventorySyncLog(storeIntegrationID uint64, productID *uint64, syncType SyncType) *InventorySyncLog {
	return &InventorySyncLog{
		StoreIntegrationID: storeIntegrationID,
		ProductID:          productID,
		SyncType:           syncType,
		Status:             SyncStatusPending,
		CreatedAt:          time.Now(),
	}
}

// Start moves the log to in_progress
func (l *InventorySyncLog) Start(at time.Time) error {
	if l.Status != SyncStatusPending {
		return ErrSyncLogInvalidTransition
	}
	l.Status = SyncStatusInProgress
	l.StartedAt = &at
	return nil
}

// Complete closes the log successfully with the reconciliation counts
func (l *InventorySyncLog) Complete(at time.Time, synced, failed int, message string, details *SyncDetails) error {
	if l.Status != SyncStatusInProgress {
		return ErrSyncLogInvalidTransition
	}
	l.Status = SyncStatusCompleted
	l.ProductsSynced = synced
	l.ProductsFailed = failed
	l.Message = message
	l.Details = details
	l.CompletedAt = &at
	return nil
}

// Fail closes the log as failed; nothing counts as synced
func (l *InventorySyncLog) Fail(at time.Time, message string) error {
	if l.Status.IsTerminal() {
		return ErrSyncLogInvalidTransition
	}
	l.Status = SyncStatusFailed
	l.ProductsSynced = 0
	l.Message = message
	l.CompletedAt = &at
	return nil
}

// Duration returns how long the run took, or zero while it is still open
func (l *InventorySyncLog) Duration() time.Duration {
	if l.StartedAt == nil || l.CompletedAt == nil {
		return 0
	}
	return l.CompletedAt.Sub(*l.StartedAt)
}
