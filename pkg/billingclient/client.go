// Package billingclient talks to the billing API on behalf of a counter
// session: stock pre-checks, bill submission and customer lookup.
package billingclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/cart"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Config holds the billing API location and credentials.
type Config struct {
	BaseURL string
	Token   string
	// OrgID is sent as the orgId query parameter when no token carries one
	OrgID string
	// Timeout of zero keeps the transport default
	Timeout time.Duration
}

// Client is a resty-backed billing API client.
type Client struct {
	http  *resty.Client
	orgID string
}

// New builds a client from cfg.
func New(cfg Config) *Client {
	r := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		r.SetAuthToken(cfg.Token)
	}
	if cfg.Timeout > 0 {
		r.SetTimeout(cfg.Timeout)
	}
	return &Client{http: r, orgID: cfg.OrgID}
}

// errorBody mirrors the API's failure envelope.
type errorBody struct {
	Error   string          `json:"error"`
	Type    string          `json:"type"`
	Details json.RawMessage `json:"details"`
}

// Customer is the client's view of a stored customer.
type Customer struct {
	ID     string `json:"id"`
	Mobile string `json:"mobile"`
	Name   string `json:"name"`
}

// Order describes who is paying and how.
type Order struct {
	CustomerMobile string
	CustomerName   string
	PaymentMethod  string
}

// BillResult identifies a posted bill.
type BillResult struct {
	Success    bool            `json:"success"`
	BillNumber string          `json:"bill_number"`
	BillID     string          `json:"bill_id"`
	Total      decimal.Decimal `json:"total"`
}

type billRequest struct {
	CustomerMobile string              `json:"customer_mobile,omitempty"`
	CustomerName   string              `json:"customer_name,omitempty"`
	PaymentMethod  string              `json:"payment_method,omitempty"`
	Items          []cart.SnapshotItem `json:"items"`
	Totals         cart.Totals         `json:"totals"`
	CreatedAt      time.Time           `json:"created_at"`
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if c.orgID != "" {
		req.SetQueryParam("orgId", c.orgID)
	}
	return req
}

// AvailableStock asks the server for one product's stock.
func (c *Client) AvailableStock(ctx context.Context, productID string) (int, error) {
	var result struct {
		ProductID      string `json:"product_id"`
		AvailableStock int    `json:"available_stock"`
	}
	resp, err := c.request(ctx).
		SetResult(&result).
		SetPathParam("id", productID).
		Get("/api/billing/products/{id}/stock")
	if err := check(resp, err, "check stock"); err != nil {
		return 0, err
	}
	return result.AvailableStock, nil
}

// PrecheckStock checks every line concurrently and waits for all of them. Any
// failed check aborts the submit; sufficiency is never assumed.
func (c *Client) PrecheckStock(ctx context.Context, items []cart.SnapshotItem) error {
	available := make([]int, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i := range items {
		g.Go(func() error {
			n, err := c.AvailableStock(gctx, items[i].ProductID)
			if err != nil {
				return err
			}
			available[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var short []apperror.StockShortfall
	for i, item := range items {
		if available[i] < item.Quantity {
			short = append(short, apperror.StockShortfall{
				ProductID: item.ProductID,
				Name:      item.Name,
				Requested: item.Quantity,
				Available: available[i],
				Shortfall: item.Quantity - available[i],
			})
		}
	}
	if len(short) > 0 {
		return apperror.NewInsufficientStockError(short)
	}
	return nil
}

// PostBill submits a cart snapshot. Each call carries a fresh idempotency key.
func (c *Client) PostBill(ctx context.Context, snap cart.Snapshot, order Order) (*BillResult, error) {
	body := billRequest{
		CustomerMobile: strings.TrimSpace(order.CustomerMobile),
		CustomerName:   strings.TrimSpace(order.CustomerName),
		PaymentMethod:  order.PaymentMethod,
		Items:          snap.Items,
		Totals:         snap.Totals,
		CreatedAt:      snap.CreatedAt,
	}
	result := new(BillResult)
	resp, err := c.request(ctx).
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetBody(body).
		SetResult(result).
		Post("/api/billing/bills")
	if err := check(resp, err, "post bill"); err != nil {
		return nil, err
	}
	return result, nil
}

// Checkout runs the pre-check, posts the bill and clears the cart. The cart is
// left untouched when anything fails.
func (c *Client) Checkout(ctx context.Context, sale *cart.Cart, order Order) (*BillResult, error) {
	snap := sale.Snapshot(time.Now())
	if len(snap.Items) == 0 {
		return nil, apperror.NewBadRequestError("No items in bill")
	}
	if err := c.PrecheckStock(ctx, snap.Items); err != nil {
		return nil, err
	}
	result, err := c.PostBill(ctx, snap, order)
	if err != nil {
		return nil, err
	}
	sale.ClearAll()
	return result, nil
}

// SearchCustomer looks a customer up by mobile. A miss is not an error.
func (c *Client) SearchCustomer(ctx context.Context, mobile string) (*Customer, bool, error) {
	var result struct {
		Customer *Customer `json:"customer"`
		Found    bool      `json:"found"`
	}
	resp, err := c.request(ctx).
		SetQueryParam("mobile", mobile).
		SetResult(&result).
		Get("/api/billing/customers/search")
	if err := check(resp, err, "search customer"); err != nil {
		return nil, false, err
	}
	return result.Customer, result.Found, nil
}

// CreateCustomer registers a customer.
func (c *Client) CreateCustomer(ctx context.Context, mobile, name string) (*Customer, error) {
	var result struct {
		Customer *Customer `json:"customer"`
	}
	resp, err := c.request(ctx).
		SetBody(map[string]string{"mobile": mobile, "name": name}).
		SetResult(&result).
		Post("/api/billing/customers")
	if err := check(resp, err, "create customer"); err != nil {
		return nil, err
	}
	return result.Customer, nil
}

// check turns transport errors and non-2xx responses into AppErrors.
func check(resp *resty.Response, err error, op string) error {
	if err != nil {
		failure := apperror.NewRemoteFailure(fmt.Sprintf("Failed to %s", op), err)
		failure.Code = http.StatusBadGateway
		return failure
	}
	if !resp.IsError() {
		return nil
	}

	var body errorBody
	if jerr := json.Unmarshal(resp.Body(), &body); jerr != nil || body.Error == "" {
		failure := apperror.NewRemoteFailure(fmt.Sprintf("%s: unexpected status %d", op, resp.StatusCode()), nil)
		failure.Code = http.StatusBadGateway
		return failure
	}

	appErr := apperror.NewAppError(resp.StatusCode(), body.Error)
	if body.Type != "" {
		appErr.Type = apperror.ErrorType(body.Type)
	}
	switch appErr.Type {
	case apperror.TypeInsufficientStock:
		var short []apperror.StockShortfall
		if json.Unmarshal(body.Details, &short) == nil {
			appErr.Details = short
		}
	case apperror.TypePartialBill:
		var partial apperror.PartialBillDetails
		if json.Unmarshal(body.Details, &partial) == nil {
			appErr.Details = partial
		}
	case apperror.TypeValidation:
		var fields []apperror.FieldError
		if json.Unmarshal(body.Details, &fields) == nil {
			appErr.Errors = fields
		}
	}
	return appErr
}
