package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockpulse/invsync/internal/domain/catalog"
	"gorm.io/datatypes"
)

// ProductModel is the persistence model for the Product aggregate
type ProductModel struct {
	ID                 uint64            `gorm:"primaryKey;autoIncrement"`
	StoreIntegrationID uint64            `gorm:"not null;uniqueIndex:idx_products_sku_store,priority:2;index"`
	Title              string            `gorm:"type:varchar(500);not null;default:''"`
	SKU                string            `gorm:"column:sku;type:varchar(255);not null;uniqueIndex:idx_products_sku_store,priority:1"`
	PlatformProductID  *string           `gorm:"type:varchar(255)"`
	Quantity           int               `gorm:"not null;default:0"`
	LowStockThreshold  int               `gorm:"not null"`
	Price              decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Description        string            `gorm:"type:text"`
	Images             datatypes.JSON    `gorm:"type:jsonb"`
	Variants           datatypes.JSON    `gorm:"type:jsonb"`
	AdditionalData     datatypes.JSONMap `gorm:"type:jsonb"`
	LastSyncAt         *time.Time
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		ID:                 m.ID,
		StoreIntegrationID: m.StoreIntegrationID,
		Title:              m.Title,
		SKU:                m.SKU,
		PlatformProductID:  m.PlatformProductID,
		Quantity:           m.Quantity,
		LowStockThreshold:  m.LowStockThreshold,
		Price:              m.Price,
		Description:        m.Description,
		LastSyncAt:         m.LastSyncAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	fromJSON(m.Images, &p.Images)
	fromJSON(m.Variants, &p.Variants)
	if m.AdditionalData != nil {
		p.AdditionalData = map[string]any(m.AdditionalData)
	}
	return p
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.ID = p.ID
	m.StoreIntegrationID = p.StoreIntegrationID
	m.Title = p.Title
	m.SKU = p.SKU
	m.PlatformProductID = p.PlatformProductID
	m.Quantity = p.Quantity
	m.LowStockThreshold = p.LowStockThreshold
	m.Price = p.Price
	m.Description = p.Description
	m.Images = nil
	if p.Images != nil {
		m.Images = toJSON(p.Images)
	}
	m.Variants = nil
	if p.Variants != nil {
		m.Variants = toJSON(p.Variants)
	}
	m.AdditionalData = nil
	if p.AdditionalData != nil {
		m.AdditionalData = datatypes.JSONMap(p.AdditionalData)
	}
	m.LastSyncAt = p.LastSyncAt
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
