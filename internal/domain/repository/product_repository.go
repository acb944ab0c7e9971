package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
)

// ProductSearchParams selects products by exactly one criterion, checked in the
// order barcode, sku, name. Barcode and sku match exactly; name is a
// case-insensitive contains match.
type ProductSearchParams struct {
	Barcode string
	SKU     string
	Name    string
	Limit   int
}

// IsEmpty reports whether no criterion was supplied
func (p ProductSearchParams) IsEmpty() bool {
	return p.Barcode == "" && p.SKU == "" && p.Name == ""
}

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// GetByIDs retrieves multiple products by their IDs in a single query
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	Search(ctx context.Context, params ProductSearchParams) ([]entity.Product, error)
	List(ctx context.Context) ([]entity.Product, error)
	// LockForUpdate takes row locks on the products for the enclosing transaction
	LockForUpdate(ctx context.Context, ids []uuid.UUID) error
}
