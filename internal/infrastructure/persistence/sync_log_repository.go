package persistence

import (
	"context"
	"errors"

	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSyncLogRepository implements integration.SyncLogRepository using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Create inserts a new sync log
func (r *GormSyncLogRepository) Create(ctx context.Context, log *integration.InventorySyncLog) error {
	model := &models.InventorySyncLogModel{}
	model.FromDomain(log)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	log.ID = model.ID
	return nil
}

// Close writes the terminal columns only if the stored row is not yet terminal
func (r *GormSyncLogRepository) Close(ctx context.Context, log *integration.InventorySyncLog) error {
	if !log.Status.IsTerminal() {
		return integration.ErrSyncLogInvalidTransition
	}

	model := &models.InventorySyncLogModel{}
	model.FromDomain(log)

	result := r.db.WithContext(ctx).Model(&models.InventorySyncLogModel{}).
		Where("id = ? AND status IN ?", log.ID, []string{
			string(integration.SyncStatusPending), string(integration.SyncStatusInProgress),
		}).
		Updates(map[string]any{
			"status":          model.Status,
			"message":         model.Message,
			"products_synced": model.ProductsSynced,
			"products_failed": model.ProductsFailed,
			"details":         model.Details,
			"completed_at":    model.CompletedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrSyncLogInvalidTransition
	}
	return nil
}

// FindByID finds a sync log by ID
func (r *GormSyncLogRepository) FindByID(ctx context.Context, id uint64) (*integration.InventorySyncLog, error) {
	var model models.InventorySyncLogModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrSyncLogNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStore returns the most recent logs of a store, newest first
func (r *GormSyncLogRepository) FindByStore(ctx context.Context, storeIntegrationID uint64, limit int) ([]integration.InventorySyncLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.InventorySyncLogModel
	err := r.db.WithContext(ctx).
		Where("store_integration_id = ?", storeIntegrationID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]integration.InventorySyncLog, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

var _ integration.SyncLogRepository = (*GormSyncLogRepository)(nil)
