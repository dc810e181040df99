package persistence

import (
	"context"
	"errors"

	"github.com/stockpulse/invsync/internal/domain/identity"
	"github.com/stockpulse/invsync/internal/domain/notification"
	"github.com/stockpulse/invsync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a user
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	model := &models.UserModel{}
	model.FromDomain(user)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	user.ID = model.ID
	return nil
}

// GormInAppNotificationRepository implements notification.InAppNotificationRepository using GORM
type GormInAppNotificationRepository struct {
	db *gorm.DB
}

// NewGormInAppNotificationRepository creates a new GormInAppNotificationRepository
func NewGormInAppNotificationRepository(db *gorm.DB) *GormInAppNotificationRepository {
	return &GormInAppNotificationRepository{db: db}
}

// Create persists an in-app notification
func (r *GormInAppNotificationRepository) Create(ctx context.Context, n *notification.InAppNotification) error {
	model := &models.InAppNotificationModel{}
	model.FromDomain(n)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	n.ID = model.ID
	return nil
}

// FindUnreadByUser lists a user's unread notifications, newest first
func (r *GormInAppNotificationRepository) FindUnreadByUser(ctx context.Context, userID uint64) ([]notification.InAppNotification, error) {
	var rows []models.InAppNotificationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND read_at IS NULL", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]notification.InAppNotification, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

var (
	_ identity.UserRepository                  = (*GormUserRepository)(nil)
	_ notification.InAppNotificationRepository = (*GormInAppNotificationRepository)(nil)
)
