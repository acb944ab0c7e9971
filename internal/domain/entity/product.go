package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultReorderThreshold applies when a product has no threshold configured
const DefaultReorderThreshold = 100

// Product represents a catalogue item. Stock is not stored here; it is the sum of
// the product's inventory movements.
type Product struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrgID            *uuid.UUID      `gorm:"type:uuid;index" json:"org_id,omitempty"`
	Name             string          `gorm:"size:255;not null;index" json:"name"`
	SKU              string          `gorm:"size:100;index" json:"sku"`
	Barcode          string          `gorm:"size:100;index" json:"barcode,omitempty"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"unit_price"`
	ReorderThreshold *int            `json:"reorder_threshold,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// Threshold returns the configured reorder threshold or the default
func (p *Product) Threshold() int {
	if p.ReorderThreshold == nil {
		return DefaultReorderThreshold
	}
	return *p.ReorderThreshold
}

// ProductWithStock is a product annotated with its ledger balance
type ProductWithStock struct {
	Product
	AvailableStock int `json:"available_stock"`
}
