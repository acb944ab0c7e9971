package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
)

// StockService answers "how many units are available" from the movement ledger
type StockService struct {
	inventoryRepo repository.InventoryRepository
}

// NewStockService creates a new stock service
func NewStockService(inventoryRepo repository.InventoryRepository) *StockService {
	return &StockService{inventoryRepo: inventoryRepo}
}

// AvailableStock sums the product's movements. A store failure is returned as a
// remote failure so callers never assume the stock is sufficient.
func (s *StockService) AvailableStock(ctx context.Context, productID uuid.UUID) (int, error) {
	total, err := s.inventoryRepo.SumByProduct(ctx, productID)
	if err != nil {
		return 0, apperror.NewRemoteFailure("Failed to read stock", err)
	}
	return clampStock(total), nil
}

// AvailableStocks returns the balance for every id in one ledger query
func (s *StockService) AvailableStocks(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	totals, err := s.inventoryRepo.SumByProducts(ctx, productIDs)
	if err != nil {
		return nil, apperror.NewRemoteFailure("Failed to read stock", err)
	}
	for id, qty := range totals {
		totals[id] = clampStock(qty)
	}
	return totals, nil
}

func clampStock(qty int) int {
	if qty < 0 {
		return 0
	}
	return qty
}
