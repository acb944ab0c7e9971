package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"gorm.io/gorm"
)

// AppUser is a staff member who can sign in to the billing screen
type AppUser struct {
	ID        uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	OrgID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"org_id"`
	Name      string        `gorm:"size:255;not null" json:"name"`
	Email     string        `gorm:"size:255;unique;not null" json:"email"`
	Password  string        `gorm:"size:255;not null" json:"-"`
	Role      enum.UserRole `gorm:"size:50;not null;default:'cashier'" json:"role"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new user
func (u *AppUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the AppUser model
func (AppUser) TableName() string {
	return "app_users"
}
