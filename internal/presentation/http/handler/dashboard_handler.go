package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-pos/internal/application/service"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
)

const (
	defaultDashboardLimit = 3
	maxDashboardLimit     = 50
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// TotalOrders handles the order count compared with last month
func (h *DashboardHandler) TotalOrders(c *gin.Context) {
	totals, err := h.dashboardService.TotalOrders(c.Request.Context(), queryBool(c, "includeCancelled"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, totals)
}

// RecentOrders handles listing the newest orders
func (h *DashboardHandler) RecentOrders(c *gin.Context) {
	limit := pagination.ParseLimit(c.Query("limit"), defaultDashboardLimit, maxDashboardLimit)

	orders, err := h.dashboardService.RecentOrders(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"orders": orders})
}

// LowStock handles listing products below their reorder threshold
func (h *DashboardHandler) LowStock(c *gin.Context) {
	limit := pagination.ParseLimit(c.Query("limit"), defaultDashboardLimit, maxDashboardLimit)

	report, err := h.dashboardService.LowStock(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, report)
}

// PendingDeliveries handles counting open deliveries
func (h *DashboardHandler) PendingDeliveries(c *gin.Context) {
	pending, err := h.dashboardService.PendingDeliveries(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, pending)
}
