package repository

import (
	"context"
	"time"

	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
)

// OrderCountFilter narrows an order count. Zero values mean no constraint.
type OrderCountFilter struct {
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	ExcludeStatus  []enum.OrderStatus
	Statuses       []enum.OrderStatus
	DeliveryFrom   *time.Time
	DeliveryBefore *time.Time
}

// OrderRepository defines the read model the dashboard needs
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	Count(ctx context.Context, filter OrderCountFilter) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]entity.Order, error)
}
