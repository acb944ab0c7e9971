package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"gorm.io/gorm"
)

type ctxKey string

const (
	// OrgIDKey is the context key for the organization ID
	OrgIDKey ctxKey = "org_id"
	txKey    ctxKey = "gorm_tx"
)

// OrgScope returns a GORM scope that filters by organization when the context
// carries one. Requests without an org see unscoped rows.
func OrgScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		orgID, ok := GetOrgID(ctx)
		if !ok {
			return db
		}
		return db.Where("org_id = ?", orgID)
	}
}

// WithOrg adds organization ID to context
func WithOrg(ctx context.Context, orgID uuid.UUID) context.Context {
	return context.WithValue(ctx, OrgIDKey, orgID)
}

// GetOrgID extracts organization ID from context
func GetOrgID(ctx context.Context) (uuid.UUID, bool) {
	orgID, ok := ctx.Value(OrgIDKey).(uuid.UUID)
	if !ok || orgID == uuid.Nil {
		return uuid.Nil, false
	}
	return orgID, true
}

// OrgIDPtr returns the context org as a nullable column value
func OrgIDPtr(ctx context.Context) *uuid.UUID {
	orgID, ok := GetOrgID(ctx)
	if !ok {
		return nil
	}
	return &orgID
}

// conn returns the transaction bound to ctx, or the base handle
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// translate maps driver-level unique violations onto the domain error.
// The connection must be opened with TranslateError enabled.
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainRepo.ErrDuplicate
	}
	return err
}
