package inventory

import "github.com/stockpulse/invsync/internal/domain/shared"

// AggregateTypeStockAlert is the aggregate type of alert events
const AggregateTypeStockAlert = "StockAlert"

const (
	EventTypeStockAlertTriggered = "StockAlertTriggered"
	EventTypeStockAlertResolved  = "StockAlertResolved"
)

// StockAlertTriggeredEvent is raised when an alert fires for a crossing
type StockAlertTriggeredEvent struct {
	shared.BaseDomainEvent
	AlertID   uint64 `json:"alert_id"`
	ProductID uint64 `json:"product_id"`
	UserID    uint64 `json:"user_id"`
	Threshold int    `json:"threshold"`
	Quantity  int    `json:"quantity"`
}

// NewStockAlertTriggeredEvent creates a new StockAlertTriggeredEvent
func NewStockAlertTriggeredEvent(a *StockAlert, quantity int) *StockAlertTriggeredEvent {
	return &StockAlertTriggeredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAlertTriggered, AggregateTypeStockAlert, a.ID),
		AlertID:         a.ID,
		ProductID:       a.ProductID,
		UserID:          a.UserID,
		Threshold:       a.Threshold,
		Quantity:        quantity,
	}
}

// EventType returns the event type name
func (e *StockAlertTriggeredEvent) EventType() string {
	return EventTypeStockAlertTriggered
}

// StockAlertResolvedEvent is raised when stock recovers above an alert threshold
type StockAlertResolvedEvent struct {
	shared.BaseDomainEvent
	AlertID   uint64 `json:"alert_id"`
	ProductID uint64 `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// NewStockAlertResolvedEvent creates a new StockAlertResolvedEvent
func NewStockAlertResolvedEvent(a *StockAlert, quantity int) *StockAlertResolvedEvent {
	return &StockAlertResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAlertResolved, AggregateTypeStockAlert, a.ID),
		AlertID:         a.ID,
		ProductID:       a.ProductID,
		Quantity:        quantity,
	}
}

// EventType returns the event type name
func (e *StockAlertResolvedEvent) EventType() string {
	return EventTypeStockAlertResolved
}
