package event

import (
	"context"
	"time"

	"github.com/stockpulse/invsync/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultDedupeTTL is how long a delivered event ID is remembered
const DefaultDedupeTTL = 24 * time.Hour

// IdempotentHandler drops events whose ID was already handled.
// A store outage degrades to at-least-once delivery.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	ttl     time.Duration
	logger  *zap.Logger
}

// NewIdempotentHandler wraps handler; ttl <= 0 uses DefaultDedupeTTL
func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, ttl time.Duration, l *zap.Logger) *IdempotentHandler {
	if ttl <= 0 {
		ttl = DefaultDedupeTTL
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &IdempotentHandler{handler: handler, store: store, ttl: ttl, logger: l}
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle processes event unless its ID was seen within the TTL
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	key := "event:" + event.EventID().String()

	fresh, err := h.store.MarkProcessed(ctx, key, h.ttl)
	switch {
	case err != nil:
		h.logger.Warn("Idempotency check failed, processing anyway",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	case !fresh:
		h.logger.Debug("Duplicate event skipped", zap.String("key", key))
		return nil
	}

	return h.handler.Handle(ctx, event)
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
