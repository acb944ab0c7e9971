package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"gorm.io/gorm"
)

// Order is a wholesale order tracked on the dashboard
type Order struct {
	ID               uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	OrgID            *uuid.UUID       `gorm:"type:uuid;index" json:"org_id,omitempty"`
	OrderNumber      string           `gorm:"size:100;uniqueIndex;not null" json:"order_number"`
	CompanyName      string           `gorm:"size:255" json:"company_name"`
	Status           enum.OrderStatus `gorm:"size:30;not null;default:'pending';index" json:"status"`
	ExpectedDelivery *time.Time       `json:"expected_delivery,omitempty"`
	CreatedAt        time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
