package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockpulse/invsync/internal/domain/shared"
)

// DefaultLowStockThreshold is applied to products created by a sync
const DefaultLowStockThreshold = 5

var (
	ErrProductNotFound = errors.New("catalog: product not found")
	ErrSKURequired     = errors.New("catalog: sku is required")
)

// Product is the local mirror of one remote catalogue item.
// (SKU, StoreIntegrationID) is unique and is the reconciliation key.
type Product struct {
	shared.BaseAggregateRoot

	ID                 uint64
	StoreIntegrationID uint64
	Title              string
	SKU                string
	PlatformProductID  *string
	Quantity           int
	LowStockThreshold  int
	Price              decimal.Decimal
	Description        string
	Images             []string
	Variants           []map[string]any
	AdditionalData     map[string]any
	LastSyncAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Listing is the remote view of a product used to create or refresh the local row
type Listing struct {
	SKU               string
	Title             string
	PlatformProductID string
	Quantity          int
	Price             decimal.Decimal
	Description       string
	Images            []string
	Variants          []map[string]any
	AdditionalData    map[string]any
}

// NewProductFromListing creates a product for a store from its first remote listing
func NewProductFromListing(storeIntegrationID uint64, l Listing, syncedAt time.Time) (*Product, error) {
	if l.SKU == "" {
		return nil, ErrSKURequired
	}
	p := &Product{
		StoreIntegrationID: storeIntegrationID,
		SKU:                l.SKU,
		LowStockThreshold:  DefaultLowStockThreshold,
		CreatedAt:          syncedAt,
	}
	p.overwrite(l, syncedAt)
	return p, nil
}

// ApplyListing overwrites the mutable fields from a fresh remote listing.
// It reports whether the quantity changed and raises ProductQuantityChangedEvent when it did.
func (p *Product) ApplyListing(l Listing, syncedAt time.Time) bool {
	old := p.Quantity
	p.overwrite(l, syncedAt)
	if old == p.Quantity {
		return false
	}
	p.AddDomainEvent(NewProductQuantityChangedEvent(p, old, p.Quantity))
	return true
}

// RecordCreated raises the quantity event for a newly persisted product.
// It must be called after the row has an ID.
func (p *Product) RecordCreated() {
	if p.Quantity != 0 {
		p.AddDomainEvent(NewProductQuantityChangedEvent(p, 0, p.Quantity))
	}
}

func (p *Product) overwrite(l Listing, syncedAt time.Time) {
	p.Title = l.Title
	p.Quantity = l.Quantity
	p.Price = l.Price
	p.Description = l.Description
	p.Images = l.Images
	p.Variants = l.Variants
	p.AdditionalData = l.AdditionalData
	if l.PlatformProductID != "" {
		id := l.PlatformProductID
		p.PlatformProductID = &id
	}
	p.LastSyncAt = &syncedAt
	p.UpdatedAt = syncedAt
}

// IsLowStock reports whether quantity is at or below the product's own threshold
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}

// SetLowStockThreshold changes the per-product threshold used by dashboards
func (p *Product) SetLowStockThreshold(threshold int) error {
	if threshold < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "Low stock threshold cannot be negative")
	}
	p.LowStockThreshold = threshold
	p.UpdatedAt = time.Now()
	return nil
}
