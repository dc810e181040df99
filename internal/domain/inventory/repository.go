package inventory

import (
	"context"
	"time"
)

// StockAlertRepository persists stock alerts.
// The Mark* methods are conditional updates so that concurrent evaluators
// cannot both win the same transition.
type StockAlertRepository interface {
	FindByID(ctx context.Context, id uint64) (*StockAlert, error)
	// FindArmedByProduct returns active alerts with no triggered_at for a product
	FindArmedByProduct(ctx context.Context, productID uint64) ([]StockAlert, error)
	// FindTriggeredByProduct returns alerts with a non-nil triggered_at for a product
	FindTriggeredByProduct(ctx context.Context, productID uint64) ([]StockAlert, error)
	// FindArmed returns every active alert with no triggered_at
	FindArmed(ctx context.Context) ([]StockAlert, error)
	// FindRenotifyDue returns active triggered alerts notified before cutoff, or never
	FindRenotifyDue(ctx context.Context, cutoff time.Time) ([]StockAlert, error)
	Save(ctx context.Context, alert *StockAlert) error

	// MarkTriggered sets status=triggered and triggered_at=at only where triggered_at is null.
	// It returns false when another caller already triggered the alert.
	MarkTriggered(ctx context.Context, id uint64, at time.Time) (bool, error)
	// MarkResolved sets status=resolved, resolved_at=at and clears triggered_at
	// only where triggered_at is not null.
	MarkResolved(ctx context.Context, id uint64, at time.Time) (bool, error)
	MarkNotified(ctx context.Context, id uint64, at time.Time) error
}
