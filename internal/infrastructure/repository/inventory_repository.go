package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"gorm.io/gorm"
)

type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a new inventory movement repository
func NewInventoryRepository(db *gorm.DB) domainRepo.InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) SumByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	var total int
	err := conn(ctx, r.db).Model(&entity.InventoryMovement{}).
		Scopes(OrgScope(ctx)).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(change_qty), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum stock for %s: %w", productID, err)
	}
	return total, nil
}

func (r *inventoryRepository) SumByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	totals := make(map[uuid.UUID]int, len(productIDs))
	if len(productIDs) == 0 {
		return totals, nil
	}
	for _, id := range productIDs {
		totals[id] = 0
	}

	var rows []struct {
		ProductID uuid.UUID
		Total     int
	}
	err := conn(ctx, r.db).Model(&entity.InventoryMovement{}).
		Scopes(OrgScope(ctx)).
		Select("product_id, COALESCE(SUM(change_qty), 0) AS total").
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("sum stock: %w", err)
	}
	for _, row := range rows {
		totals[row.ProductID] = row.Total
	}
	return totals, nil
}

func (r *inventoryRepository) CreateBatch(ctx context.Context, movements []entity.InventoryMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&movements).Error
}

func (r *inventoryRepository) ListByReference(ctx context.Context, reference string) ([]entity.InventoryMovement, error) {
	var movements []entity.InventoryMovement
	err := conn(ctx, r.db).Scopes(OrgScope(ctx)).
		Where("reference = ?", reference).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}
