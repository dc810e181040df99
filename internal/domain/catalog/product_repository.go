package catalog

import "context"

// ProductRepository persists products
type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (*Product, error)
	FindBySKU(ctx context.Context, storeIntegrationID uint64, sku string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]Product, error)
	FindByStore(ctx context.Context, storeIntegrationID uint64) ([]Product, error)
	// CreateIfAbsent inserts the product unless (sku, store_integration_id) already exists.
	// It returns false without error when another row holds the key.
	CreateIfAbsent(ctx context.Context, p *Product) (bool, error)
	Save(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uint64) error
}
