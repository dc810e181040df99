package integration

import (
	"context"

	"github.com/shopspring/decimal"
)

// RemoteProductSnapshot is one product as reported by the remote store
type RemoteProductSnapshot struct {
	SKU               string           `json:"sku" validate:"required,max=255"`
	Title             string           `json:"title" validate:"max=500"`
	PlatformProductID string           `json:"platform_product_id"`
	Quantity          int              `json:"quantity"`
	Price             decimal.Decimal  `json:"price"`
	Description       string           `json:"description"`
	Images            []string         `json:"images,omitempty"`
	Variants          []map[string]any `json:"variants,omitempty"`
	AdditionalData    map[string]any   `json:"additional_data,omitempty"`
}

// StoreClient fetches the full remote catalogue for one integration.
// Implementations live in the infrastructure layer, one per platform.
type StoreClient interface {
	// Platform returns the platform this client handles
	Platform() Platform

	// FetchProducts returns every product the remote store reports.
	// A returned error is a transport failure for the whole sync.
	FetchProducts(ctx context.Context, store *StoreIntegration) ([]RemoteProductSnapshot, error)
}

// StoreClientRegistry selects the StoreClient for a platform
type StoreClientRegistry interface {
	ClientFor(platform Platform) (StoreClient, error)
}
