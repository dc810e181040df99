package models

import (
	"time"

	"github.com/stockpulse/invsync/internal/domain/inventory"
)

// StockAlertModel is the persistence model for StockAlert
type StockAlertModel struct {
	ID                 uint64                       `gorm:"primaryKey;autoIncrement"`
	ProductID          uint64                       `gorm:"not null;index:idx_stock_alerts_product_active,priority:1"`
	UserID             uint64                       `gorm:"not null;index"`
	Threshold          int                          `gorm:"not null"`
	Status             inventory.AlertStatus        `gorm:"type:varchar(20);not null;default:'pending'"`
	NotificationMethod inventory.NotificationMethod `gorm:"type:varchar(20);not null;default:'email'"`
	IsActive           bool                         `gorm:"not null;index:idx_stock_alerts_product_active,priority:2"`
	TriggeredAt        *time.Time
	ResolvedAt         *time.Time
	NotifiedAt         *time.Time
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockAlertModel) TableName() string {
	return "stock_alerts"
}

// ToDomain converts the persistence model to a domain StockAlert
func (m *StockAlertModel) ToDomain() *inventory.StockAlert {
	return &inventory.StockAlert{
		ID:                 m.ID,
		ProductID:          m.ProductID,
		UserID:             m.UserID,
		Threshold:          m.Threshold,
		Status:             m.Status,
		NotificationMethod: m.NotificationMethod,
		IsActive:           m.IsActive,
		TriggeredAt:        m.TriggeredAt,
		ResolvedAt:         m.ResolvedAt,
		NotifiedAt:         m.NotifiedAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain StockAlert
func (m *StockAlertModel) FromDomain(a *inventory.StockAlert) {
	m.ID = a.ID
	m.ProductID = a.ProductID
	m.UserID = a.UserID
	m.Threshold = a.Threshold
	m.Status = a.Status
	m.NotificationMethod = a.NotificationMethod
	m.IsActive = a.IsActive
	m.TriggeredAt = a.TriggeredAt
	m.ResolvedAt = a.ResolvedAt
	m.NotifiedAt = a.NotifiedAt
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
}
