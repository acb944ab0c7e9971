package repository

import (
	"context"

	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	return translate(conn(ctx, r.db).Create(order).Error)
}

func (r *orderRepository) Count(ctx context.Context, filter domainRepo.OrderCountFilter) (int64, error) {
	query := conn(ctx, r.db).Model(&entity.Order{}).Scopes(OrgScope(ctx))

	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	if len(filter.ExcludeStatus) > 0 {
		query = query.Where("status NOT IN ?", filter.ExcludeStatus)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.DeliveryFrom != nil {
		query = query.Where("expected_delivery >= ?", *filter.DeliveryFrom)
	}
	if filter.DeliveryBefore != nil {
		query = query.Where("expected_delivery < ?", *filter.DeliveryBefore)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *orderRepository) ListRecent(ctx context.Context, limit int) ([]entity.Order, error) {
	var orders []entity.Order
	err := conn(ctx, r.db).Scopes(OrgScope(ctx)).
		Select("id", "order_number", "company_name", "status", "created_at").
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
