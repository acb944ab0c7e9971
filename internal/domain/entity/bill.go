package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalkInCustomerName is recorded when a bill has no named customer
const WalkInCustomerName = "Walk-in Customer"

// Bill is a finalized sale. It is never updated after creation.
type Bill struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	OrgID          *uuid.UUID         `gorm:"type:uuid;index" json:"org_id,omitempty"`
	BillNumber     string             `gorm:"size:64;uniqueIndex;not null" json:"bill_number"`
	CustomerID     *uuid.UUID         `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	CustomerName   string             `gorm:"size:255;not null" json:"customer_name"`
	CustomerMobile *string            `gorm:"size:10" json:"customer_mobile,omitempty"`
	Subtotal       decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxAmount      decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	DiscountAmount decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	GrandTotal     decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"grand_total"`
	PaymentMethod  enum.PaymentMethod `gorm:"size:30;not null" json:"payment_method"`
	PaymentStatus  enum.PaymentStatus `gorm:"size:30;not null" json:"payment_status"`
	CreatedAt      time.Time          `gorm:"index" json:"created_at"`

	Items []BillItem `gorm:"foreignKey:BillID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new bill
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// BillItem is one persisted line of a bill
type BillItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BillID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	BatchNumber string          `gorm:"size:100" json:"batch_number"`
	Qty         int             `gorm:"not null" json:"qty"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
}

// BeforeCreate generates a UUID before creating a new bill item
func (i *BillItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillItem model
func (BillItem) TableName() string {
	return "bill_items"
}

// BillSummary is the compact row shown in the recent bills list
type BillSummary struct {
	BillNumber   string          `json:"bill_number"`
	CustomerName string          `json:"customer_name"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
}
