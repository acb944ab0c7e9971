package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/config"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	infraRepo "github.com/sangkips/pharmacy-pos/internal/infrastructure/repository"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/cart"
	"github.com/sangkips/pharmacy-pos/pkg/metrics"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultRecentBills = 10
	maxRecentBills     = 100
)

// BillingRepositories groups the stores the billing workflow writes to
type BillingRepositories struct {
	Products   repository.ProductRepository
	Inventory  repository.InventoryRepository
	Bills      repository.BillRepository
	Transactor repository.Transactor
}

// BillingOptions configures the posting policy
type BillingOptions struct {
	PostingMode string
	TaxRate     decimal.Decimal
}

// BillingService handles product lookup and bill posting for the counter
type BillingService struct {
	repos     BillingRepositories
	stock     *StockService
	customers *CustomerService
	numbers   BillNumberGenerator
	opts      BillingOptions
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewBillingService creates a new billing service
func NewBillingService(
	repos BillingRepositories,
	stock *StockService,
	customers *CustomerService,
	numbers BillNumberGenerator,
	opts BillingOptions,
	logger *zap.Logger,
	m *metrics.Metrics,
) *BillingService {
	if opts.PostingMode != config.PostingModeBestEffort {
		opts.PostingMode = config.PostingModeAtomic
	}
	if opts.TaxRate.IsZero() {
		opts.TaxRate = cart.DefaultGSTRate
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &BillingService{
		repos:     repos,
		stock:     stock,
		customers: customers,
		numbers:   numbers,
		opts:      opts,
		logger:    logger,
		metrics:   m,
	}
}

// PostingMode reports the active posting policy
func (s *BillingService) PostingMode() string {
	return s.opts.PostingMode
}

// ProductSearchResult carries the first match and the full match list
type ProductSearchResult struct {
	Product  *entity.ProductWithStock  `json:"product"`
	Products []entity.ProductWithStock `json:"products"`
}

// SearchProducts finds products by barcode, sku or name and annotates each with stock
func (s *BillingService) SearchProducts(ctx context.Context, params repository.ProductSearchParams) (*ProductSearchResult, error) {
	params.Barcode = strings.TrimSpace(params.Barcode)
	params.SKU = strings.TrimSpace(params.SKU)
	params.Name = strings.TrimSpace(params.Name)
	if params.IsEmpty() {
		return nil, apperror.NewBadRequestError("Please provide barcode, name, or sku")
	}

	products, err := s.repos.Products.Search(ctx, params)
	if err != nil {
		return nil, apperror.NewRemoteFailure("Failed to search products", err)
	}

	withStock, err := s.attachStock(ctx, products)
	if err != nil {
		return nil, err
	}

	result := &ProductSearchResult{Products: withStock}
	if len(withStock) > 0 {
		result.Product = &withStock[0]
	}
	return result, nil
}

// GetProduct returns one product with its available stock
func (s *BillingService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.ProductWithStock, error) {
	product, err := s.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewRemoteFailure("Failed to load product", err)
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	qty, err := s.stock.AvailableStock(ctx, id)
	if err != nil {
		return nil, err
	}
	return &entity.ProductWithStock{Product: *product, AvailableStock: qty}, nil
}

// AvailableStock exposes the ledger balance used by the client pre-check
func (s *BillingService) AvailableStock(ctx context.Context, id uuid.UUID) (int, error) {
	return s.stock.AvailableStock(ctx, id)
}

func (s *BillingService) attachStock(ctx context.Context, products []entity.Product) ([]entity.ProductWithStock, error) {
	ids := make([]uuid.UUID, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	stock, err := s.stock.AvailableStocks(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]entity.ProductWithStock, len(products))
	for i := range products {
		out[i] = entity.ProductWithStock{Product: products[i], AvailableStock: stock[products[i].ID]}
	}
	return out, nil
}

// BillLineInput is one line of a submitted cart snapshot
type BillLineInput struct {
	ProductID uuid.UUID
	Name      string
	Batch     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// PostBillInput represents a cart snapshot submitted for posting
type PostBillInput struct {
	CustomerMobile string
	CustomerName   string
	PaymentMethod  string
	Items          []BillLineInput
	// Client-side totals, advisory only
	Subtotal   *decimal.Decimal
	Tax        *decimal.Decimal
	GrandTotal *decimal.Decimal
}

// PostBillResult identifies the persisted bill
type PostBillResult struct {
	BillNumber string          `json:"bill_number"`
	BillID     uuid.UUID       `json:"bill_id"`
	Total      decimal.Decimal `json:"total"`
}

// postingPlan holds every row a bill post writes
type postingPlan struct {
	bill      *entity.Bill
	items     []entity.BillItem
	movements []entity.InventoryMovement
	requested map[uuid.UUID]int
	names     map[uuid.UUID]string
	order     []uuid.UUID
}

// PostBill validates stock and persists the bill header, its items and the
// matching inventory debits. The post runs to completion even if the caller
// goes away.
func (s *BillingService) PostBill(ctx context.Context, input *PostBillInput) (*PostBillResult, error) {
	if err := validateBill(input); err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)
	log := s.logger.With(zap.String("mode", s.opts.PostingMode))

	plan := s.newPlan(input)
	if err := s.fillNames(ctx, plan); err != nil {
		return nil, s.fail(err)
	}

	if err := s.precheck(ctx, plan); err != nil {
		return nil, s.fail(err)
	}

	customerID, customerName, err := s.resolveCustomer(ctx, input)
	if err != nil {
		return nil, s.fail(err)
	}

	s.buildRows(ctx, plan, input, customerID, customerName)
	s.compareClientTotals(log, plan.bill, input)

	if s.opts.PostingMode == config.PostingModeBestEffort {
		err = s.postBestEffort(ctx, log, plan)
	} else {
		err = s.postAtomic(ctx, plan)
	}
	if err != nil {
		return nil, s.fail(err)
	}

	s.metrics.BillsPosted.WithLabelValues(s.opts.PostingMode).Inc()
	log.Info("bill posted",
		zap.String("bill_number", plan.bill.BillNumber),
		zap.Int("items", len(plan.items)),
		zap.String("total", plan.bill.GrandTotal.StringFixed(2)),
	)

	return &PostBillResult{
		BillNumber: plan.bill.BillNumber,
		BillID:     plan.bill.ID,
		Total:      plan.bill.GrandTotal,
	}, nil
}

func validateBill(input *PostBillInput) error {
	if input == nil || len(input.Items) == 0 {
		return apperror.NewBadRequestError("No items in bill")
	}
	var fieldErrors []apperror.FieldError
	for i, item := range input.Items {
		field := fmt.Sprintf("items[%d]", i)
		if item.ProductID == uuid.Nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".id", Message: "product id is required"})
		}
		if item.Quantity < cart.MinQuantity {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".qty", Message: "quantity must be at least 1"})
		}
		if item.UnitPrice.IsNegative() {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".price", Message: "price cannot be negative"})
		}
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

func (s *BillingService) newPlan(input *PostBillInput) *postingPlan {
	plan := &postingPlan{
		requested: make(map[uuid.UUID]int, len(input.Items)),
		names:     make(map[uuid.UUID]string, len(input.Items)),
	}
	for _, item := range input.Items {
		if _, seen := plan.requested[item.ProductID]; !seen {
			plan.order = append(plan.order, item.ProductID)
		}
		plan.requested[item.ProductID] += item.Quantity
		if plan.names[item.ProductID] == "" {
			plan.names[item.ProductID] = strings.TrimSpace(item.Name)
		}
	}
	return plan
}

// fillNames uses catalogue names for lines the client sent without one
func (s *BillingService) fillNames(ctx context.Context, plan *postingPlan) error {
	var missing []uuid.UUID
	for _, id := range plan.order {
		if plan.names[id] == "" {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	products, err := s.repos.Products.GetByIDs(ctx, missing)
	if err != nil {
		return apperror.NewRemoteFailure("Failed to load products", err)
	}
	for _, p := range products {
		plan.names[p.ID] = p.Name
	}
	return nil
}

// precheck is advisory: it narrows but cannot close the window for overselling
func (s *BillingService) precheck(ctx context.Context, plan *postingPlan) error {
	available, err := s.stock.AvailableStocks(ctx, plan.order)
	if err != nil {
		return err
	}
	return plan.shortfalls(available)
}

func (p *postingPlan) shortfalls(available map[uuid.UUID]int) error {
	var short []apperror.StockShortfall
	for _, id := range p.order {
		want, have := p.requested[id], available[id]
		if have < 0 {
			have = 0
		}
		if have < want {
			short = append(short, apperror.StockShortfall{
				ProductID: id.String(),
				Name:      p.names[id],
				Requested: want,
				Available: have,
				Shortfall: want - have,
			})
		}
	}
	if len(short) > 0 {
		return apperror.NewInsufficientStockError(short)
	}
	return nil
}

// resolveCustomer links the bill to a customer by mobile, creating one when a
// name is supplied for an unknown number. Anonymous bills are allowed.
func (s *BillingService) resolveCustomer(ctx context.Context, input *PostBillInput) (*uuid.UUID, string, error) {
	mobile := strings.TrimSpace(input.CustomerMobile)
	name := strings.TrimSpace(input.CustomerName)
	if mobile == "" {
		return nil, nameOrWalkIn(name), nil
	}

	lookup, err := s.customers.SearchByMobile(ctx, mobile)
	if err != nil {
		return nil, "", err
	}
	if lookup.Found {
		if name == "" {
			name = lookup.Customer.Name
		}
		return &lookup.Customer.ID, nameOrWalkIn(name), nil
	}
	if name == "" {
		return nil, entity.WalkInCustomerName, nil
	}

	created, err := s.customers.CreateCustomer(ctx, &CreateCustomerInput{Mobile: mobile, Name: name})
	if err != nil {
		// lost a race with a concurrent create; the row is there now
		if apperror.IsType(err, apperror.TypeConflict) {
			if again, lerr := s.customers.SearchByMobile(ctx, mobile); lerr == nil && again.Found {
				return &again.Customer.ID, name, nil
			}
		}
		return nil, "", err
	}
	return &created.ID, name, nil
}

func nameOrWalkIn(name string) string {
	if name == "" {
		return entity.WalkInCustomerName
	}
	return name
}

func (s *BillingService) buildRows(ctx context.Context, plan *postingPlan, input *PostBillInput, customerID *uuid.UUID, customerName string) {
	orgID := infraRepo.OrgIDPtr(ctx)
	billNumber := s.numbers.Next()

	priced := make([]cart.Priced, len(input.Items))
	for i, item := range input.Items {
		priced[i] = cart.Priced{UnitPrice: item.UnitPrice, Quantity: item.Quantity}
	}
	totals := cart.ComputeTotals(priced, s.opts.TaxRate)

	var mobile *string
	if m := strings.TrimSpace(input.CustomerMobile); m != "" {
		mobile = &m
	}

	plan.bill = &entity.Bill{
		ID:             uuid.New(),
		OrgID:          orgID,
		BillNumber:     billNumber,
		CustomerID:     customerID,
		CustomerName:   customerName,
		CustomerMobile: mobile,
		Subtotal:       totals.Subtotal,
		TaxAmount:      totals.Tax,
		DiscountAmount: decimal.Zero,
		GrandTotal:     totals.GrandTotal,
		PaymentMethod:  enum.NormalizePaymentMethod(input.PaymentMethod),
		PaymentStatus:  enum.PaymentStatusPaid,
	}

	taxPercent := s.opts.TaxRate.Mul(decimal.NewFromInt(100))
	plan.items = make([]entity.BillItem, len(input.Items))
	plan.movements = make([]entity.InventoryMovement, len(input.Items))
	for i, item := range input.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			name = plan.names[item.ProductID]
		}
		batch := strings.TrimSpace(item.Batch)
		if batch == "" {
			batch = cart.DefaultBatch
		}
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))

		plan.items[i] = entity.BillItem{
			BillID:      plan.bill.ID,
			ProductID:   item.ProductID,
			ProductName: name,
			BatchNumber: batch,
			Qty:         item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     taxPercent,
			TaxAmount:   cart.LineTax(item.UnitPrice, item.Quantity, s.opts.TaxRate),
			LineTotal:   lineTotal,
		}
		plan.movements[i] = entity.InventoryMovement{
			OrgID:        orgID,
			ProductID:    item.ProductID,
			ChangeQty:    -item.Quantity,
			MovementType: enum.MovementTypeSale,
			Reference:    billNumber,
			UnitCost:     item.UnitPrice,
		}
	}
}

// compareClientTotals logs when the client's totals disagree with the server's.
// The server figures are the ones persisted.
func (s *BillingService) compareClientTotals(log *zap.Logger, bill *entity.Bill, input *PostBillInput) {
	mismatch := func(client *decimal.Decimal, server decimal.Decimal) bool {
		return client != nil && !client.Round(2).Equal(server.Round(2))
	}
	if mismatch(input.Subtotal, bill.Subtotal) || mismatch(input.Tax, bill.TaxAmount) || mismatch(input.GrandTotal, bill.GrandTotal) {
		s.metrics.TotalsMismatch.Inc()
		log.Warn("client totals differ from server computation",
			zap.String("bill_number", bill.BillNumber),
			zap.String("server_grand_total", bill.GrandTotal.StringFixed(2)),
			zap.Stringp("client_grand_total", decimalStringp(input.GrandTotal)),
		)
	}
}

func decimalStringp(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	v := d.StringFixed(2)
	return &v
}

// postAtomic writes header, items and debits in one transaction, re-checking
// stock under row locks so the ledger cannot go negative.
func (s *BillingService) postAtomic(ctx context.Context, plan *postingPlan) error {
	return s.repos.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repos.Products.LockForUpdate(ctx, plan.order); err != nil {
			return apperror.NewRemoteFailure("Failed to lock products", err)
		}
		available, err := s.repos.Inventory.SumByProducts(ctx, plan.order)
		if err != nil {
			return apperror.NewRemoteFailure("Failed to read stock", err)
		}
		if err := plan.shortfalls(available); err != nil {
			return err
		}
		if err := s.repos.Bills.Create(ctx, plan.bill); err != nil {
			return apperror.NewRemoteFailure("Failed to create bill", err)
		}
		if err := s.repos.Bills.CreateItems(ctx, plan.items); err != nil {
			return apperror.NewRemoteFailure("Failed to save bill items", err)
		}
		if err := s.repos.Inventory.CreateBatch(ctx, plan.movements); err != nil {
			return apperror.NewRemoteFailure("Failed to record inventory movements", err)
		}
		return nil
	})
}

// postBestEffort writes the three row sets in sequence without a transaction.
// An items failure leaves an orphan header and is reported loudly; a debit
// failure is logged and the bill still counts as posted.
func (s *BillingService) postBestEffort(ctx context.Context, log *zap.Logger, plan *postingPlan) error {
	if err := s.repos.Bills.Create(ctx, plan.bill); err != nil {
		return apperror.NewRemoteFailure("Failed to create bill", err)
	}
	if err := s.repos.Bills.CreateItems(ctx, plan.items); err != nil {
		log.Error("bill items failed after header was written",
			zap.String("bill_number", plan.bill.BillNumber),
			zap.Error(err),
		)
		return apperror.NewPartialBillError(apperror.PartialBillDetails{
			BillNumber: plan.bill.BillNumber,
			BillID:     plan.bill.ID.String(),
			Stage:      "items",
		}, err)
	}
	if err := s.repos.Inventory.CreateBatch(ctx, plan.movements); err != nil {
		s.metrics.MovementFailures.Inc()
		log.Warn("inventory debit failed; bill kept",
			zap.String("bill_number", plan.bill.BillNumber),
			zap.Error(err),
		)
	}
	return nil
}

func (s *BillingService) fail(err error) error {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.NewRemoteFailure("Failed to post bill", err)
	}
	if appErr.Type == apperror.TypeInsufficientStock {
		s.metrics.InsufficientStock.Inc()
	}
	s.metrics.BillPostFailures.WithLabelValues(string(appErr.Type)).Inc()
	return appErr
}

// ListRecentBills returns the latest bills in summary form
func (s *BillingService) ListRecentBills(ctx context.Context, limit int) ([]entity.BillSummary, error) {
	if limit < 1 {
		limit = defaultRecentBills
	}
	if limit > maxRecentBills {
		limit = maxRecentBills
	}
	bills, err := s.repos.Bills.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperror.NewRemoteFailure("Failed to list bills", err)
	}

	out := make([]entity.BillSummary, len(bills))
	for i, b := range bills {
		out[i] = entity.BillSummary{
			BillNumber:   b.BillNumber,
			CustomerName: b.CustomerName,
			Total:        b.GrandTotal,
			CreatedAt:    b.CreatedAt,
		}
	}
	return out, nil
}

// ListBills returns bills newest first, one page at a time
func (s *BillingService) ListBills(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Bill], error) {
	params.Validate()
	bills, total, err := s.repos.Bills.List(ctx, params)
	if err != nil {
		return nil, apperror.NewRemoteFailure("Failed to list bills", err)
	}
	return pagination.NewPaginatedResult(bills, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// GetBill loads a bill with its items by UUID or bill number
func (s *BillingService) GetBill(ctx context.Context, identifier string) (*entity.Bill, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, apperror.NewBadRequestError("Bill identifier required")
	}

	var (
		bill *entity.Bill
		err  error
	)
	if id, perr := uuid.Parse(identifier); perr == nil {
		bill, err = s.repos.Bills.GetByID(ctx, id)
	} else {
		bill, err = s.repos.Bills.GetByNumber(ctx, identifier)
	}
	if err != nil {
		return nil, apperror.NewRemoteFailure("Failed to load bill", err)
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}

	items, err := s.repos.Bills.GetItems(ctx, bill.ID)
	if err != nil {
		return nil, apperror.NewRemoteFailure("Failed to fetch bill items", err)
	}
	if items == nil {
		items = []entity.BillItem{}
	}
	bill.Items = items
	return bill, nil
}
