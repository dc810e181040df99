package models

import (
	"time"

	"github.com/stockpulse/invsync/internal/domain/integration"
	"gorm.io/datatypes"
)

// StoreIntegrationModel is the persistence model for the StoreIntegration aggregate
type StoreIntegrationModel struct {
	ID             uint64               `gorm:"primaryKey;autoIncrement"`
	UserID         uint64               `gorm:"not null;index"`
	Name           string               `gorm:"type:varchar(255);not null;default:''"`
	Platform       integration.Platform `gorm:"type:varchar(20);not null"`
	AccessToken    string               `gorm:"type:text"`
	RefreshToken   string               `gorm:"type:text"`
	ShopDomain     string               `gorm:"type:varchar(255)"`
	TokenExpiresAt *time.Time
	IsActive       bool `gorm:"not null;index"`
	LastSyncAt     *time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StoreIntegrationModel) TableName() string {
	return "store_integrations"
}

// ToDomain converts the persistence model to a domain StoreIntegration
func (m *StoreIntegrationModel) ToDomain() *integration.StoreIntegration {
	return &integration.StoreIntegration{
		ID:       m.ID,
		UserID:   m.UserID,
		Name:     m.Name,
		Platform: m.Platform,
		Credentials: integration.Credentials{
			AccessToken:  m.AccessToken,
			RefreshToken: m.RefreshToken,
			ShopDomain:   m.ShopDomain,
			ExpiresAt:    m.TokenExpiresAt,
		},
		IsActive:   m.IsActive,
		LastSyncAt: m.LastSyncAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain StoreIntegration
func (m *StoreIntegrationModel) FromDomain(s *integration.StoreIntegration) {
	m.ID = s.ID
	m.UserID = s.UserID
	m.Name = s.Name
	m.Platform = s.Platform
	m.AccessToken = s.Credentials.AccessToken
	m.RefreshToken = s.Credentials.RefreshToken
	m.ShopDomain = s.Credentials.ShopDomain
	m.TokenExpiresAt = s.Credentials.ExpiresAt
	m.IsActive = s.IsActive
	m.LastSyncAt = s.LastSyncAt
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
}

// InventorySyncLogModel is the persistence model for InventorySyncLog
type InventorySyncLogModel struct {
	ID                 uint64                 `gorm:"primaryKey;autoIncrement"`
	StoreIntegrationID uint64                 `gorm:"not null;index:idx_sync_logs_store_created,priority:1"`
	ProductID          *uint64                `gorm:"index"`
	SyncType           integration.SyncType   `gorm:"type:varchar(20);not null"`
	Status             integration.SyncStatus `gorm:"type:varchar(20);not null;index"`
	Message            string                 `gorm:"type:text"`
	ProductsSynced     int                    `gorm:"not null;default:0"`
	ProductsFailed     int                    `gorm:"not null;default:0"`
	Details            datatypes.JSON         `gorm:"type:jsonb"`
	StartedAt          *time.Time
	CompletedAt        *time.Time
	CreatedAt          time.Time `gorm:"not null;index:idx_sync_logs_store_created,priority:2"`
}

// TableName returns the table name for GORM
func (InventorySyncLogModel) TableName() string {
	return "inventory_sync_logs"
}

// ToDomain converts the persistence model to a domain InventorySyncLog
func (m *InventorySyncLogModel) ToDomain() *integration.InventorySyncLog {
	l := &integration.InventorySyncLog{
		ID:                 m.ID,
		StoreIntegrationID: m.StoreIntegrationID,
		ProductID:          m.ProductID,
		SyncType:           m.SyncType,
		Status:             m.Status,
		Message:            m.Message,
		ProductsSynced:     m.ProductsSynced,
		ProductsFailed:     m.ProductsFailed,
		StartedAt:          m.StartedAt,
		CompletedAt:        m.CompletedAt,
		CreatedAt:          m.CreatedAt,
	}
	if len(m.Details) > 0 {
		var d integration.SyncDetails
		fromJSON(m.Details, &d)
		l.Details = &d
	}
	return l
}

// FromDomain populates the persistence model from a domain InventorySyncLog
func (m *InventorySyncLogModel) FromDomain(l *integration.InventorySyncLog) {
	m.ID = l.ID
	m.StoreIntegrationID = l.StoreIntegrationID
	m.ProductID = l.ProductID
	m.SyncType = l.SyncType
	m.Status = l.Status
	m.Message = l.Message
	m.ProductsSynced = l.ProductsSynced
	m.ProductsFailed = l.ProductsFailed
	m.StartedAt = l.StartedAt
	m.CompletedAt = l.CompletedAt
	m.CreatedAt = l.CreatedAt
	m.Details = nil
	if l.Details != nil {
		m.Details = toJSON(l.Details)
	}
}
