package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sangkips/pharmacy-pos/internal/application/service"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/middleware"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
)

const (
	defaultRecentBillsLimit = 10
	maxRecentBillsLimit     = 100
)

// BillingHandler handles product lookup, bill posting and receipts
type BillingHandler struct {
	billingService *service.BillingService
	receiptService *service.ReceiptService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *service.BillingService, receiptService *service.ReceiptService) *BillingHandler {
	return &BillingHandler{billingService: billingService, receiptService: receiptService}
}

// SearchProducts handles product search by barcode, sku or name
func (h *BillingHandler) SearchProducts(c *gin.Context) {
	var req request.ProductSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.billingService.SearchProducts(c.Request.Context(), req.ToParams())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, result)
}

// GetProduct handles getting a product with its available stock
func (h *BillingHandler) GetProduct(c *gin.Context) {
	id := utils.ParseOptionalUUID(c.Param("id"))
	if id == nil {
		response.Error(c, apperror.NewNotFoundError("Product"))
		return
	}

	product, err := h.billingService.GetProduct(c.Request.Context(), *id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, product)
}

// GetProductStock returns only the stock balance, for the client pre-check
func (h *BillingHandler) GetProductStock(c *gin.Context) {
	id := utils.ParseOptionalUUID(c.Param("id"))
	if id == nil {
		response.Error(c, apperror.NewNotFoundError("Product"))
		return
	}

	product, err := h.billingService.GetProduct(c.Request.Context(), *id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{
		"product_id":      product.ID,
		"available_stock": product.AvailableStock,
	})
}

// PostBill handles posting a finalized cart
// @Summary Post bill
// @Description Persist a bill, its items and the inventory debits
// @Tags billing
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replay key"
// @Param request body request.PostBillRequest true "Cart snapshot"
// @Success 201 {object} service.PostBillResult
// @Failure 409 {object} response.ErrorResponse
// @Router /billing/bills [post]
func (h *BillingHandler) PostBill(c *gin.Context) {
	var req request.PostBillRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	middleware.ApplyPayloadOrg(c, req.OrgID)

	result, err := h.billingService.PostBill(c.Request.Context(), req.ToInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{
		"success":     true,
		"bill_number": result.BillNumber,
		"bill_id":     result.BillID,
		"total":       result.Total,
	})
}

// RecentBills handles listing the latest bills
func (h *BillingHandler) RecentBills(c *gin.Context) {
	limit := pagination.ParseLimit(c.Query("limit"), defaultRecentBillsLimit, maxRecentBillsLimit)

	bills, err := h.billingService.ListRecentBills(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"bills": bills})
}

// ListBills handles page-based bill listing
func (h *BillingHandler) ListBills(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &pagination.PaginationParams{
		Page:    page,
		PerPage: perPage,
	}

	result, err := h.billingService.ListBills(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, result)
}

// GetBill handles getting a bill by UUID or bill number
func (h *BillingHandler) GetBill(c *gin.Context) {
	bill, err := h.billingService.GetBill(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, bill)
}

// GetReceipt returns the receipt for a bill. With print=true it is also sent
// to the printer; a print failure still returns the receipt with a warning.
func (h *BillingHandler) GetReceipt(c *gin.Context) {
	identifier := c.Param("identifier")
	ctx := c.Request.Context()

	if !queryBool(c, "print") {
		receipt, err := h.receiptService.BuildReceipt(ctx, identifier)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, gin.H{"receipt": receipt, "printed": false})
		return
	}

	receipt, err := h.receiptService.PrintReceipt(ctx, identifier)
	if err != nil {
		if receipt != nil {
			response.OK(c, gin.H{
				"receipt": receipt,
				"printed": false,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"receipt": receipt, "printed": true})
}
