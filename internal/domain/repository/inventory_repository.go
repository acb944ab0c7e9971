package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
)

// InventoryRepository is the stock ledger. Balances are derived by summing movements.
type InventoryRepository interface {
	SumByProduct(ctx context.Context, productID uuid.UUID) (int, error)
	// SumByProducts returns a balance for every requested id, zero when no movement exists
	SumByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error)
	CreateBatch(ctx context.Context, movements []entity.InventoryMovement) error
	ListByReference(ctx context.Context, reference string) ([]entity.InventoryMovement, error)
}
