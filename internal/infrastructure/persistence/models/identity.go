package models

import (
	"time"

	"github.com/stockpulse/invsync/internal/domain/identity"
	"github.com/stockpulse/invsync/internal/domain/notification"
	"gorm.io/datatypes"
)

// UserModel is the persistence model for the User read model
type UserModel struct {
	ID                uint64         `gorm:"primaryKey;autoIncrement"`
	Name              string         `gorm:"type:varchar(255);not null;default:''"`
	Email             string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	Roles             datatypes.JSON `gorm:"type:jsonb"`
	SlackWebhookURL   string         `gorm:"type:text"`
	DiscordWebhookURL string         `gorm:"type:text"`
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		ID:                m.ID,
		Name:              m.Name,
		Email:             m.Email,
		SlackWebhookURL:   m.SlackWebhookURL,
		DiscordWebhookURL: m.DiscordWebhookURL,
	}
	fromJSON(m.Roles, &u.Roles)
	return u
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.ID = u.ID
	m.Name = u.Name
	m.Email = u.Email
	m.Roles = toJSON(u.Roles)
	m.SlackWebhookURL = u.SlackWebhookURL
	m.DiscordWebhookURL = u.DiscordWebhookURL
}

// InAppNotificationModel is the persistence model for InAppNotification
type InAppNotificationModel struct {
	ID        uint64            `gorm:"primaryKey;autoIncrement"`
	UserID    uint64            `gorm:"not null;index:idx_in_app_notifications_user_read,priority:1"`
	Type      string            `gorm:"type:varchar(100);not null"`
	Payload   datatypes.JSONMap `gorm:"type:jsonb"`
	ReadAt    *time.Time        `gorm:"index:idx_in_app_notifications_user_read,priority:2"`
	CreatedAt time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InAppNotificationModel) TableName() string {
	return "in_app_notifications"
}

// ToDomain converts the persistence model to a domain InAppNotification
func (m *InAppNotificationModel) ToDomain() *notification.InAppNotification {
	return &notification.InAppNotification{
		ID:        m.ID,
		UserID:    m.UserID,
		Type:      m.Type,
		Payload:   map[string]any(m.Payload),
		ReadAt:    m.ReadAt,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain InAppNotification
func (m *InAppNotificationModel) FromDomain(n *notification.InAppNotification) {
	m.ID = n.ID
	m.UserID = n.UserID
	m.Type = n.Type
	m.Payload = datatypes.JSONMap(n.Payload)
	m.ReadAt = n.ReadAt
	m.CreatedAt = n.CreatedAt
}

// AllModels lists every model for AutoMigrate in tests and local tooling
func AllModels() []any {
	return []any{
		&UserModel{},
		&StoreIntegrationModel{},
		&ProductModel{},
		&InventorySyncLogModel{},
		&StockAlertModel{},
		&InAppNotificationModel{},
	}
}
