package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-pos/internal/application/service"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/middleware"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// Search handles looking up a customer by mobile number. A miss returns
// found=false rather than 404.
func (h *CustomerHandler) Search(c *gin.Context) {
	lookup, err := h.customerService.SearchByMobile(c.Request.Context(), c.Query("mobile"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, lookup)
}

// Create handles registering a new customer
func (h *CustomerHandler) Create(c *gin.Context) {
	var req request.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	middleware.ApplyPayloadOrg(c, req.OrgID)

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), req.ToInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{
		"customer": customer,
		"created":  true,
	})
}
