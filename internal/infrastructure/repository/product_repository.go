package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultSearchLimit = 10

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return conn(ctx, r.db).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := conn(ctx, r.db).Scopes(OrgScope(ctx)).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &product, nil
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := conn(ctx, r.db).Scopes(OrgScope(ctx)).
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *productRepository) Search(ctx context.Context, params domainRepo.ProductSearchParams) ([]entity.Product, error) {
	limit := params.Limit
	if limit < 1 {
		limit = defaultSearchLimit
	}

	query := conn(ctx, r.db).Scopes(OrgScope(ctx))
	switch {
	case params.Barcode != "":
		query = query.Where("barcode = ?", params.Barcode)
	case params.SKU != "":
		query = query.Where("sku = ?", params.SKU)
	case params.Name != "":
		query = query.Where("name ILIKE ?", "%"+params.Name+"%")
	default:
		return []entity.Product{}, nil
	}

	var products []entity.Product
	if err := query.Order("name ASC").Limit(limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

func (r *productRepository) List(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := conn(ctx, r.db).Scopes(OrgScope(ctx)).Order("name ASC").Find(&products).Error
	return products, err
}

// LockForUpdate locks rows in id order so concurrent bills for overlapping
// products queue instead of deadlocking.
func (r *productRepository) LockForUpdate(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	var locked []entity.Product
	return conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&locked).Error
}
