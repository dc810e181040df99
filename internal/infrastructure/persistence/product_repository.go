package persistence

import (
	"context"
	"errors"

	"github.com/stockpulse/invsync/internal/domain/catalog"
	"github.com/stockpulse/invsync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uint64) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySKU finds a product by its reconciliation key
func (r *GormProductRepository) FindBySKU(ctx context.Context, storeIntegrationID uint64, sku string) (*catalog.Product, error) {
	var model models.ProductModel
	err := r.db.WithContext(ctx).
		Where("store_integration_id = ? AND sku = ?", storeIntegrationID, sku).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs loads several products at once; missing IDs are silently absent
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uint64) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	return r.find(r.db.WithContext(ctx).Where("id IN ?", ids))
}

// FindByStore returns all products of a store integration
func (r *GormProductRepository) FindByStore(ctx context.Context, storeIntegrationID uint64) ([]catalog.Product, error) {
	return r.find(r.db.WithContext(ctx).Where("store_integration_id = ?", storeIntegrationID))
}

func (r *GormProductRepository) find(q *gorm.DB) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.Product, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// CreateIfAbsent inserts p with ON CONFLICT (sku, store_integration_id) DO NOTHING
func (r *GormProductRepository) CreateIfAbsent(ctx context.Context, p *catalog.Product) (bool, error) {
	model := models.ProductModelFromDomain(p)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sku"}, {Name: "store_integration_id"}},
			DoNothing: true,
		}).
		Create(model)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	p.ID = model.ID
	return true, nil
}

// Save updates an existing product
func (r *GormProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	model := models.ProductModelFromDomain(p)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	p.ID = model.ID
	return nil
}

// Delete removes a product; this is the only way a product disappears
func (r *GormProductRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
