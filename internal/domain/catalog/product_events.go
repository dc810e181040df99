package catalog

import "github.com/stockpulse/invsync/internal/domain/shared"

// AggregateTypeProduct is the aggregate type of product events
const AggregateTypeProduct = "Product"

// EventTypeProductQuantityChanged is raised whenever a sync changes a product's quantity
const EventTypeProductQuantityChanged = "ProductQuantityChanged"

// ProductQuantityChangedEvent carries the quantity transition consumed by alert evaluation
type ProductQuantityChangedEvent struct {
	shared.BaseDomainEvent
	ProductID          uint64 `json:"product_id"`
	StoreIntegrationID uint64 `json:"store_integration_id"`
	SKU                string `json:"sku"`
	OldQuantity        int    `json:"old_quantity"`
	NewQuantity        int    `json:"new_quantity"`
}

// NewProductQuantityChangedEvent creates a new ProductQuantityChangedEvent
func NewProductQuantityChangedEvent(p *Product, oldQty, newQty int) *ProductQuantityChangedEvent {
	return &ProductQuantityChangedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeProductQuantityChanged, AggregateTypeProduct, p.ID),
		ProductID:          p.ID,
		StoreIntegrationID: p.StoreIntegrationID,
		SKU:                p.SKU,
		OldQuantity:        oldQty,
		NewQuantity:        newQty,
	}
}

// EventType returns the event type name
func (e *ProductQuantityChangedEvent) EventType() string {
	return EventTypeProductQuantityChanged
}
