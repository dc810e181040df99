package dto

import (
	"time"

	"github.com/stockpulse/invsync/internal/domain/integration"
)

// TriggerSyncRequest is the optional body of a sync trigger
type TriggerSyncRequest struct {
	SyncType string `json:"sync_type" binding:"omitempty,oneof=manual scheduled webhook"`
}

// SyncOutcomeResponse is the result of one store or product sync
type SyncOutcomeResponse struct {
	StoreIntegrationID uint64 `json:"store_integration_id"`
	SyncLogID          uint64 `json:"sync_log_id,omitempty"`
	SyncType           string `json:"sync_type"`
	Success            bool   `json:"success"`
	Status             string `json:"status,omitempty"`
	Reason             string `json:"reason,omitempty"`
	Message            string `json:"message,omitempty"`
	Error              string `json:"error,omitempty"`
	Created            int    `json:"created"`
	Updated            int    `json:"updated"`
	Skipped            int    `json:"skipped"`
	Failed             int    `json:"failed"`
	DurationMS         int64  `json:"duration_ms"`
}

// SyncLogResponse is one sync audit record
type SyncLogResponse struct {
	ID                 uint64                   `json:"id"`
	StoreIntegrationID uint64                   `json:"store_integration_id"`
	ProductID          *uint64                  `json:"product_id,omitempty"`
	SyncType           string                   `json:"sync_type"`
	Status             string                   `json:"status"`
	Message            string                   `json:"message"`
	ProductsSynced     int                      `json:"products_synced"`
	ProductsFailed     int                      `json:"products_failed"`
	Details            *integration.SyncDetails `json:"details,omitempty"`
	StartedAt          *time.Time               `json:"started_at,omitempty"`
	CompletedAt        *time.Time               `json:"completed_at,omitempty"`
	DurationMS         int64                    `json:"duration_ms"`
}

// NewSyncLogResponse converts a domain sync log
func NewSyncLogResponse(l *integration.InventorySyncLog) SyncLogResponse {
	return SyncLogResponse{
		ID:                 l.ID,
		StoreIntegrationID: l.StoreIntegrationID,
		ProductID:          l.ProductID,
		SyncType:           string(l.SyncType),
		Status:             string(l.Status),
		Message:            l.Message,
		ProductsSynced:     l.ProductsSynced,
		ProductsFailed:     l.ProductsFailed,
		Details:            l.Details,
		StartedAt:          l.StartedAt,
		CompletedAt:        l.CompletedAt,
		DurationMS:         l.Duration().Milliseconds(),
	}
}

// CheckAlertsResponse summarises an alert sweep
type CheckAlertsResponse struct {
	Checked    int `json:"checked"`
	Triggered  int `json:"triggered"`
	Resolved   int `json:"resolved"`
	Renotified int `json:"renotified"`
}
