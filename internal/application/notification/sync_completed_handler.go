package notification

import (
	"context"
	"fmt"

	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/domain/notification"
	"github.com/stockpulse/invsync/internal/domain/shared"
)

// SyncCompletedHandler pushes sync completion to the store owner's real-time channel
type SyncCompletedHandler struct {
	broadcaster notification.Broadcaster
}

// NewSyncCompletedHandler creates the handler
func NewSyncCompletedHandler(b notification.Broadcaster) *SyncCompletedHandler {
	return &SyncCompletedHandler{broadcaster: b}
}

// EventTypes returns the event types this handler is interested in
func (h *SyncCompletedHandler) EventTypes() []string {
	return []string{integration.EventTypeSyncCompleted}
}

// Handle broadcasts the sync summary
func (h *SyncCompletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	ev, ok := event.(*integration.SyncCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			integration.EventTypeSyncCompleted, event.EventType())
	}
	return h.broadcaster.Publish(ctx, notification.UserChannel(ev.UserID), notification.EventSyncCompleted, map[string]any{
		"sync_log_id":          ev.SyncLogID,
		"store_integration_id": ev.StoreIntegrationID,
		"platform":             ev.Platform.String(),
		"sync_type":            string(ev.SyncType),
		"products_synced":      ev.ProductsSynced,
		"products_failed":      ev.ProductsFailed,
		"message":              ev.Message,
	})
}

var _ shared.EventHandler = (*SyncCompletedHandler)(nil)
