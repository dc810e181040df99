package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/stockpulse/invsync/internal/domain/inventory"
	"github.com/stockpulse/invsync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockAlertRepository implements inventory.StockAlertRepository using GORM
type GormStockAlertRepository struct {
	db *gorm.DB
}

// NewGormStockAlertRepository creates a new GormStockAlertRepository
func NewGormStockAlertRepository(db *gorm.DB) *GormStockAlertRepository {
	return &GormStockAlertRepository{db: db}
}

// FindByID finds an alert by ID
func (r *GormStockAlertRepository) FindByID(ctx context.Context, id uint64) (*inventory.StockAlert, error) {
	var model models.StockAlertModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrAlertNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindArmedByProduct returns active alerts of a product that have not fired
func (r *GormStockAlertRepository) FindArmedByProduct(ctx context.Context, productID uint64) ([]inventory.StockAlert, error) {
	return r.find(r.armed(ctx).Where("product_id = ?", productID))
}

// FindTriggeredByProduct returns alerts of a product that are currently triggered
func (r *GormStockAlertRepository) FindTriggeredByProduct(ctx context.Context, productID uint64) ([]inventory.StockAlert, error) {
	return r.find(r.db.WithContext(ctx).Where("product_id = ? AND triggered_at IS NOT NULL", productID))
}

// FindArmed returns every armed alert
func (r *GormStockAlertRepository) FindArmed(ctx context.Context) ([]inventory.StockAlert, error) {
	return r.find(r.armed(ctx))
}

// FindRenotifyDue returns active triggered alerts last notified before cutoff, or never notified
func (r *GormStockAlertRepository) FindRenotifyDue(ctx context.Context, cutoff time.Time) ([]inventory.StockAlert, error) {
	return r.find(r.db.WithContext(ctx).
		Where("is_active = ? AND triggered_at IS NOT NULL", true).
		Where("notified_at IS NULL OR notified_at < ?", cutoff))
}

func (r *GormStockAlertRepository) armed(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("is_active = ? AND triggered_at IS NULL", true)
}

func (r *GormStockAlertRepository) find(q *gorm.DB) ([]inventory.StockAlert, error) {
	var rows []models.StockAlertModel
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.StockAlert, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates an alert
func (r *GormStockAlertRepository) Save(ctx context.Context, alert *inventory.StockAlert) error {
	model := &models.StockAlertModel{}
	model.FromDomain(alert)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	alert.ID = model.ID
	return nil
}

// MarkTriggered fires an armed alert; false means someone else already fired it
func (r *GormStockAlertRepository) MarkTriggered(ctx context.Context, id uint64, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.StockAlertModel{}).
		Where("id = ? AND is_active = ? AND triggered_at IS NULL", id, true).
		Updates(map[string]any{
			"status":       inventory.AlertStatusTriggered,
			"triggered_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkResolved resolves a triggered alert and clears triggered_at to re-arm it
func (r *GormStockAlertRepository) MarkResolved(ctx context.Context, id uint64, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.StockAlertModel{}).
		Where("id = ? AND triggered_at IS NOT NULL", id).
		Updates(map[string]any{
			"status":       inventory.AlertStatusResolved,
			"triggered_at": nil,
			"resolved_at":  at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkNotified stamps notified_at
func (r *GormStockAlertRepository) MarkNotified(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.StockAlertModel{}).
		Where("id = ?", id).
		Update("notified_at", at).Error
}

var _ inventory.StockAlertRepository = (*GormStockAlertRepository)(nil)
