package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStoreIntegrationRepository implements integration.StoreIntegrationRepository using GORM
type GormStoreIntegrationRepository struct {
	db *gorm.DB
}

// NewGormStoreIntegrationRepository creates a new GormStoreIntegrationRepository
func NewGormStoreIntegrationRepository(db *gorm.DB) *GormStoreIntegrationRepository {
	return &GormStoreIntegrationRepository{db: db}
}

// FindByID finds a store integration by ID
func (r *GormStoreIntegrationRepository) FindByID(ctx context.Context, id uint64) (*integration.StoreIntegration, error) {
	var model models.StoreIntegrationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrStoreNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive returns all active integrations ordered by ID
func (r *GormStoreIntegrationRepository) FindActive(ctx context.Context) ([]integration.StoreIntegration, error) {
	return r.find(r.db.WithContext(ctx).Where("is_active = ?", true))
}

// FindByUser returns every integration owned by a user
func (r *GormStoreIntegrationRepository) FindByUser(ctx context.Context, userID uint64) ([]integration.StoreIntegration, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *GormStoreIntegrationRepository) find(q *gorm.DB) ([]integration.StoreIntegration, error) {
	var rows []models.StoreIntegrationModel
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]integration.StoreIntegration, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a store integration
func (r *GormStoreIntegrationRepository) Save(ctx context.Context, store *integration.StoreIntegration) error {
	model := &models.StoreIntegrationModel{}
	model.FromDomain(store)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	store.ID = model.ID
	return nil
}

// UpdateLastSyncAt stamps last_sync_at for a successful sync
func (r *GormStoreIntegrationRepository) UpdateLastSyncAt(ctx context.Context, id uint64, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.StoreIntegrationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"last_sync_at": at, "updated_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrStoreNotFound
	}
	return nil
}

// Delete removes an integration; products and sync logs cascade in the schema
func (r *GormStoreIntegrationRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.StoreIntegrationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrStoreNotFound
	}
	return nil
}

var _ integration.StoreIntegrationRepository = (*GormStoreIntegrationRepository)(nil)
