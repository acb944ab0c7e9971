package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryMovement is an append-only signed stock delta. Current stock for a
// product is the sum of ChangeQty over its movements.
type InventoryMovement struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	OrgID        *uuid.UUID        `gorm:"type:uuid;index" json:"org_id,omitempty"`
	ProductID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"product_id"`
	LocationID   *uuid.UUID        `gorm:"type:uuid" json:"location_id,omitempty"`
	ChangeQty    int               `gorm:"not null" json:"change_qty"`
	MovementType enum.MovementType `gorm:"size:50;not null" json:"movement_type"`
	Reference    string            `gorm:"size:100;index" json:"reference"`
	UnitCost     decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"unit_cost"`
	CreatedAt    time.Time         `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new movement
func (m *InventoryMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InventoryMovement model
func (InventoryMovement) TableName() string {
	return "inventory_movements"
}
