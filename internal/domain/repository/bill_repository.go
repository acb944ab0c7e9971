package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
)

// BillRepository defines the interface for bill data operations. Bills are
// insert-only; there is no update or delete.
type BillRepository interface {
	Create(ctx context.Context, bill *entity.Bill) error
	CreateItems(ctx context.Context, items []entity.BillItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	GetByNumber(ctx context.Context, billNumber string) (*entity.Bill, error)
	GetItems(ctx context.Context, billID uuid.UUID) ([]entity.BillItem, error)
	ListRecent(ctx context.Context, limit int) ([]entity.Bill, error)
	// List returns bills newest first with page-based pagination
	List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Bill, int64, error)
}
