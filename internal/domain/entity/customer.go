package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a counter customer identified by a 10-digit mobile number
type Customer struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	OrgID     *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_customers_org_mobile" json:"org_id,omitempty"`
	Mobile    string     `gorm:"size:10;not null;uniqueIndex:idx_customers_org_mobile" json:"mobile"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	Email     *string    `gorm:"size:255" json:"email,omitempty"`
	Address   *string    `gorm:"type:text" json:"address,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
