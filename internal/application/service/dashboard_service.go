package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
)

const (
	defaultDashboardLimit = 3
	maxDashboardLimit     = 50
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	stock       *StockService
	now         func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	stock *StockService,
) *DashboardService {
	return &DashboardService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		stock:       stock,
		now:         time.Now,
	}
}

// SetClock overrides the time source used for month and day windows
func (s *DashboardService) SetClock(now func() time.Time) {
	s.now = now
}

// OrderTotals compares the overall order count with the previous calendar month
type OrderTotals struct {
	Total            int64 `json:"total"`
	PercentageChange int64 `json:"percentage_change"`
	LastMonthTotal   int64 `json:"last_month_total"`
}

// TotalOrders counts orders, excluding cancelled ones unless asked to include them
func (s *DashboardService) TotalOrders(ctx context.Context, includeCancelled bool) (*OrderTotals, error) {
	base := repository.OrderCountFilter{}
	if !includeCancelled {
		base.ExcludeStatus = []enum.OrderStatus{enum.OrderStatusCancelled}
	}

	total, err := s.orderRepo.Count(ctx, base)
	if err != nil {
		return nil, apperror.NewRemoteFailure("Failed to count orders", err)
	}

	from, to := previousMonth(s.now())
	lastMonth := base
	lastMonth.CreatedFrom = &from
	lastMonth.CreatedTo = &to
	lastCount, err := s.orderRepo.Count(ctx, lastMonth)
	if err != nil {
		return nil, apperror.NewRemoteFailure("Failed to count orders", err)
	}

	return &OrderTotals{
		Total:            total,
		PercentageChange: percentageChange(total, lastCount),
		LastMonthTotal:   lastCount,
	}, nil
}

// previousMonth returns the inclusive bounds of the calendar month before now
func previousMonth(now time.Time) (time.Time, time.Time) {
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return startOfMonth.AddDate(0, -1, 0), startOfMonth.Add(-time.Nanosecond)
}

// percentageChange rounds half up and is 0 when there is no baseline
func percentageChange(current, previous int64) int64 {
	if previous <= 0 {
		return 0
	}
	change := float64(current-previous) / float64(previous) * 100
	return int64(math.Floor(change + 0.5))
}

// RecentOrder is the compact order row shown on the dashboard
type RecentOrder struct {
	ID          uuid.UUID        `json:"id"`
	OrderNumber string           `json:"order_number"`
	CompanyName string           `json:"company_name"`
	Status      enum.OrderStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}

// RecentOrders lists the newest orders
func (s *DashboardService) RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error) {
	orders, err := s.orderRepo.ListRecent(ctx, clampLimit(limit))
	if err != nil {
		return nil, apperror.NewRemoteFailure("Failed to list orders", err)
	}
	out := make([]RecentOrder, len(orders))
	for i, o := range orders {
		out[i] = RecentOrder{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			CompanyName: o.CompanyName,
			Status:      o.Status,
			CreatedAt:   o.CreatedAt,
		}
	}
	return out, nil
}

// LowStockItem is a product at or below its reorder threshold
type LowStockItem struct {
	Name             string `json:"name"`
	SKU              string `json:"sku"`
	CurrentQty       int    `json:"current_qty"`
	ReorderThreshold int    `json:"reorder_threshold"`
	Shortage         int    `json:"shortage"`
}

// LowStockReport holds the worst items and the number of products below threshold
type LowStockReport struct {
	Items      []LowStockItem `json:"items"`
	TotalCount int            `json:"total_count"`
}

// LowStock returns products whose stock is at or below threshold, largest shortage first
func (s *DashboardService) LowStock(ctx context.Context, limit int) (*LowStockReport, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, apperror.NewRemoteFailure("Failed to list products", err)
	}

	ids := make([]uuid.UUID, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	stock, err := s.stock.AvailableStocks(ctx, ids)
	if err != nil {
		return nil, err
	}

	low := make([]LowStockItem, 0)
	for i := range products {
		p := &products[i]
		current, threshold := stock[p.ID], p.Threshold()
		if current > threshold {
			continue
		}
		low = append(low, LowStockItem{
			Name:             p.Name,
			SKU:              p.SKU,
			CurrentQty:       current,
			ReorderThreshold: threshold,
			Shortage:         threshold - current,
		})
	}
	sort.SliceStable(low, func(i, j int) bool { return low[i].Shortage > low[j].Shortage })

	report := &LowStockReport{TotalCount: len(low), Items: low}
	if n := clampLimit(limit); len(low) > n {
		report.Items = low[:n]
	}
	return report, nil
}

// PendingDeliveries counts open deliveries and those expected today
type PendingDeliveries struct {
	Total         int64 `json:"total"`
	ArrivingToday int64 `json:"arriving_today"`
}

// PendingDeliveries counts confirmed, packed and in-transit orders
func (s *DashboardService) PendingDeliveries(ctx context.Context) (*PendingDeliveries, error) {
	filter := repository.OrderCountFilter{Statuses: enum.PendingDeliveryStatuses}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, apperror.NewRemoteFailure("Failed to count deliveries", err)
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)
	filter.DeliveryFrom = &today
	filter.DeliveryBefore = &tomorrow
	arriving, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, apperror.NewRemoteFailure("Failed to count deliveries", err)
	}

	return &PendingDeliveries{Total: total, ArrivingToday: arriving}, nil
}

func clampLimit(limit int) int {
	if limit < 1 {
		return defaultDashboardLimit
	}
	if limit > maxDashboardLimit {
		return maxDashboardLimit
	}
	return limit
}
