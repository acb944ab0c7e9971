package request

import (
	"time"

	"github.com/sangkips/pharmacy-pos/internal/application/service"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
	"github.com/shopspring/decimal"
)

// BillItemRequest is one cart line as the counter submits it
type BillItemRequest struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Batch string          `json:"batch"`
	Price decimal.Decimal `json:"price"`
	Qty   int             `json:"qty"`
}

// BillTotalsRequest carries the client's computed totals. They are advisory.
type BillTotalsRequest struct {
	Subtotal   *decimal.Decimal `json:"subtotal"`
	GST        *decimal.Decimal `json:"gst"`
	GrandTotal *decimal.Decimal `json:"grand_total"`
}

// PostBillRequest represents a finalized cart posted for billing
type PostBillRequest struct {
	CustomerMobile string            `json:"customer_mobile"`
	CustomerName   string            `json:"customer_name"`
	PaymentMethod  string            `json:"payment_method"`
	OrgID          string            `json:"orgId"`
	Items          []BillItemRequest `json:"items"`
	Totals         BillTotalsRequest `json:"totals"`
	CreatedAt      *time.Time        `json:"created_at"`
}

// ToInput converts the request to service input. Unparseable product ids
// become uuid.Nil and are rejected by validation.
func (r *PostBillRequest) ToInput() *service.PostBillInput {
	items := make([]service.BillLineInput, len(r.Items))
	for i, it := range r.Items {
		line := service.BillLineInput{
			Name:      it.Name,
			Batch:     it.Batch,
			Quantity:  it.Qty,
			UnitPrice: it.Price,
		}
		if id := utils.ParseOptionalUUID(it.ID); id != nil {
			line.ProductID = *id
		}
		items[i] = line
	}

	return &service.PostBillInput{
		CustomerMobile: r.CustomerMobile,
		CustomerName:   r.CustomerName,
		PaymentMethod:  r.PaymentMethod,
		Items:          items,
		Subtotal:       r.Totals.Subtotal,
		Tax:            r.Totals.GST,
		GrandTotal:     r.Totals.GrandTotal,
	}
}
