package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/config"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/internal/infrastructure/memory"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/shopspring/decimal"
)

var errStoreDown = errors.New("store unavailable")

type failingBills struct {
	repository.BillRepository
	failItems bool
}

func (f *failingBills) CreateItems(ctx context.Context, items []entity.BillItem) error {
	if f.failItems {
		return errStoreDown
	}
	return f.BillRepository.CreateItems(ctx, items)
}

type failingInventory struct {
	repository.InventoryRepository
}

func (f *failingInventory) CreateBatch(ctx context.Context, movements []entity.InventoryMovement) error {
	return errStoreDown
}

type billingFixture struct {
	store       *memory.Store
	svc         *BillingService
	paracetamol entity.Product
	amoxicillin entity.Product
}

type fixtureOption func(*BillingRepositories)

func withFailingItems() fixtureOption {
	return func(r *BillingRepositories) {
		r.Bills = &failingBills{BillRepository: r.Bills, failItems: true}
	}
}

func withFailingMovements() fixtureOption {
	return func(r *BillingRepositories) {
		r.Inventory = &failingInventory{InventoryRepository: r.Inventory}
	}
}

func newBillingFixture(t *testing.T, mode string, opts ...fixtureOption) *billingFixture {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()

	f := &billingFixture{
		store: store,
		paracetamol: entity.Product{
			Name: "Paracetamol 500mg", SKU: "PARA-500", Barcode: "8901000000011",
			UnitPrice: decimal.NewFromInt(15),
		},
		amoxicillin: entity.Product{
			Name: "Amoxicillin 250mg", SKU: "AMOX-250", Barcode: "8901000000028",
			UnitPrice: decimal.NewFromInt(12),
		},
	}
	for _, p := range []*entity.Product{&f.paracetamol, &f.amoxicillin} {
		if err := store.Products().Create(ctx, p); err != nil {
			t.Fatal(err)
		}
		opening := []entity.InventoryMovement{{ProductID: p.ID, ChangeQty: 10, MovementType: "opening"}}
		if err := store.Inventory().CreateBatch(ctx, opening); err != nil {
			t.Fatal(err)
		}
	}

	repos := BillingRepositories{
		Products:   store.Products(),
		Inventory:  store.Inventory(),
		Bills:      store.Bills(),
		Transactor: store.Transactor(),
	}
	for _, opt := range opts {
		opt(&repos)
	}

	numbers, err := NewSnowflakeBillNumbers(1)
	if err != nil {
		t.Fatal(err)
	}
	f.svc = NewBillingService(
		repos,
		NewStockService(store.Inventory()),
		NewCustomerService(store.Customers()),
		numbers,
		BillingOptions{PostingMode: mode},
		nil, nil,
	)
	return f
}

func (f *billingFixture) sampleBill() *PostBillInput {
	return &PostBillInput{
		Items: []BillLineInput{
			{ProductID: f.paracetamol.ID, Name: f.paracetamol.Name, Quantity: 2, UnitPrice: decimal.NewFromInt(15)},
			{ProductID: f.amoxicillin.ID, Name: f.amoxicillin.Name, Batch: "AMX-24", Quantity: 1, UnitPrice: decimal.NewFromInt(12)},
		},
	}
}

func (f *billingFixture) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	n, err := f.store.Inventory().SumByProduct(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func (f *billingFixture) billCount(t *testing.T) int {
	t.Helper()
	bills, err := f.store.Bills().ListRecent(context.Background(), 100)
	if err != nil {
		t.Fatal(err)
	}
	return len(bills)
}

func TestPostBillComputesTotalsAndDebitsStock(t *testing.T) {
	f := newBillingFixture(t, config.PostingModeAtomic)
	ctx := context.Background()

	result, err := f.svc.PostBill(ctx, f.sampleBill())
	if err != nil {
		t.Fatalf("PostBill: %v", err)
	}
	if !strings.HasPrefix(result.BillNumber, BillNumberPrefix) {
		t.Fatalf("bill number %q lacks prefix", result.BillNumber)
	}
	if result.Total.StringFixed(2) != "47.04" {
		t.Fatalf("total = %s, want 47.04", result.Total.StringFixed(2))
	}

	bill, err := f.svc.GetBill(ctx, result.BillNumber)
	if err != nil {
		t.Fatal(err)
	}
	if bill.Subtotal.StringFixed(2) != "42.00" || bill.TaxAmount.StringFixed(2) != "5.04" {
		t.Fatalf("subtotal %s tax %s", bill.Subtotal, bill.TaxAmount)
	}
	if bill.CustomerName != entity.WalkInCustomerName || bill.PaymentMethod != "cash" || bill.PaymentStatus != "paid" {
		t.Fatalf("unexpected header defaults: %+v", bill)
	}
	if len(bill.Items) != 2 {
		t.Fatalf("items = %d", len(bill.Items))
	}
	if bill.Items[0].BatchNumber != "N/A" || bill.Items[1].BatchNumber != "AMX-24" {
		t.Fatalf("batches %q %q", bill.Items[0].BatchNumber, bill.Items[1].BatchNumber)
	}
	if !bill.Items[0].TaxRate.Equal(decimal.NewFromInt(12)) || bill.Items[0].TaxAmount.StringFixed(2) != "3.60" {
		t.Fatalf("line tax %s at %s", bill.Items[0].TaxAmount, bill.Items[0].TaxRate)
	}

	movements, _ := f.store.Inventory().ListByReference(ctx, result.BillNumber)
	if len(movements) != 2 || movements[0].ChangeQty != -2 || movements[1].ChangeQty != -1 {
		t.Fatalf("movements %+v", movements)
	}
	if f.stockOf(t, f.paracetamol.ID) != 8 || f.stockOf(t, f.amoxicillin.ID) != 9 {
		t.Fatal("stock not debited")
	}

	byID, err := f.svc.GetBill(ctx, result.BillID.String())
	if err != nil || byID.BillNumber != result.BillNumber {
		t.Fatalf("lookup by id: %v", err)
	}
}

func TestPostBillRejectsInsufficientStock(t *testing.T) {
	for _, mode := range []string{config.PostingModeAtomic, config.PostingModeBestEffort} {
		t.Run(mode, func(t *testing.T) {
			f := newBillingFixture(t, mode)
			input := f.sampleBill()
			input.Items[0].Quantity = 11

			_, err := f.svc.PostBill(context.Background(), input)
			if !apperror.IsType(err, apperror.TypeInsufficientStock) {
				t.Fatalf("expected insufficient stock, got %v", err)
			}
			details := apperror.GetAppError(err).Details.([]apperror.StockShortfall)
			if len(details) != 1 || details[0].Requested != 11 || details[0].Available != 10 || details[0].Shortfall != 1 {
				t.Fatalf("details %+v", details)
			}
			if f.billCount(t) != 0 || f.stockOf(t, f.paracetamol.ID) != 10 {
				t.Fatal("nothing should be persisted")
			}
		})
	}
}

func TestPostBillAggregatesRepeatedProducts(t *testing.T) {
	f := newBillingFixture(t, config.PostingModeAtomic)
	input := &PostBillInput{Items: []BillLineInput{
		{ProductID: f.paracetamol.ID, Quantity: 6, UnitPrice: decimal.NewFromInt(15)},
		{ProductID: f.paracetamol.ID, Quantity: 6, UnitPrice: decimal.NewFromInt(15)},
	}}

	_, err := f.svc.PostBill(context.Background(), input)
	if !apperror.IsType(err, apperror.TypeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	details := apperror.GetAppError(err).Details.([]apperror.StockShortfall)
	if details[0].Name != f.paracetamol.Name {
		t.Fatalf("missing name should come from the catalogue, got %q", details[0].Name)
	}
}

func TestPostBillValidation(t *testing.T) {
	f := newBillingFixture(t, config.PostingModeAtomic)

	_, err := f.svc.PostBill(context.Background(), &PostBillInput{})
	if appErr := apperror.GetAppError(err); appErr.Code != 400 || appErr.Message != "No items in bill" {
		t.Fatalf("empty bill: %v", err)
	}

	_, err = f.svc.PostBill(context.Background(), &PostBillInput{Items: []BillLineInput{{Quantity: 0}}})
	if appErr := apperror.GetAppError(err); appErr.Type != apperror.TypeValidation || len(appErr.Errors) != 2 {
		t.Fatalf("bad line: %+v", err)
	}
}

func TestAtomicPostRollsBackOnFailure(t *testing.T) {
	cases := map[string]fixtureOption{
		"items":     withFailingItems(),
		"movements": withFailingMovements(),
	}
	for name, opt := range cases {
		t.Run(name, func(t *testing.T) {
			f := newBillingFixture(t, config.PostingModeAtomic, opt)

			_, err := f.svc.PostBill(context.Background(), f.sampleBill())
			if !apperror.IsType(err, apperror.TypeRemoteFailure) {
				t.Fatalf("expected remote failure, got %v", err)
			}
			if !errors.Is(err, errStoreDown) {
				t.Fatal("cause should be preserved")
			}
			if f.billCount(t) != 0 {
				t.Fatal("bill header should have been rolled back")
			}
			if f.stockOf(t, f.paracetamol.ID) != 10 {
				t.Fatal("stock should be untouched")
			}
		})
	}
}

func TestBestEffortReportsPartialBill(t *testing.T) {
	f := newBillingFixture(t, config.PostingModeBestEffort, withFailingItems())

	_, err := f.svc.PostBill(context.Background(), f.sampleBill())
	if !apperror.IsType(err, apperror.TypePartialBill) {
		t.Fatalf("expected partial bill, got %v", err)
	}
	details := apperror.GetAppError(err).Details.(apperror.PartialBillDetails)
	if !strings.Contains(err.Error(), details.BillNumber) || details.Stage != "items" {
		t.Fatalf("details %+v", details)
	}
	if f.billCount(t) != 1 {
		t.Fatal("orphan header should remain for reconciliation")
	}
}

func TestBestEffortKeepsBillWhenDebitFails(t *testing.T) {
	f := newBillingFixture(t, config.PostingModeBestEffort, withFailingMovements())

	result, err := f.svc.PostBill(context.Background(), f.sampleBill())
	if err != nil {
		t.Fatalf("debit failure must not fail the bill: %v", err)
	}
	if result.BillNumber == "" || f.billCount(t) != 1 {
		t.Fatal("bill should be posted")
	}
	if f.stockOf(t, f.paracetamol.ID) != 10 {
		t.Fatal("stock should not have moved")
	}
}

func TestPostBillResolvesCustomer(t *testing.T) {
	f := newBillingFixture(t, config.PostingModeAtomic)
	ctx := context.Background()

	input := f.sampleBill()
	input.CustomerMobile = "9876543210"
	input.CustomerName = "Asha Verma"
	first, err := f.svc.PostBill(ctx, input)
	if err != nil {
		t.Fatal(err)
	}

	customer, _ := f.store.Customers().GetByMobile(ctx, "9876543210")
	if customer == nil || customer.Name != "Asha Verma" {
		t.Fatalf("customer should be created, got %+v", customer)
	}
	bill, _ := f.svc.GetBill(ctx, first.BillNumber)
	if bill.CustomerID == nil || *bill.CustomerID != customer.ID {
		t.Fatal("bill should link the new customer")
	}

	again := f.sampleBill()
	again.Items = again.Items[:1]
	again.CustomerMobile = "9876543210"
	second, err := f.svc.PostBill(ctx, again)
	if err != nil {
		t.Fatal(err)
	}
	bill, _ = f.svc.GetBill(ctx, second.BillNumber)
	if bill.CustomerName != "Asha Verma" || *bill.CustomerID != customer.ID {
		t.Fatalf("known mobile should reuse the customer, got %q", bill.CustomerName)
	}
	if first.BillNumber == second.BillNumber {
		t.Fatal("bill numbers must be unique")
	}
}

func TestPostBillUnknownMobileWithoutName(t *testing.T) {
	f := newBillingFixture(t, config.PostingModeAtomic)
	ctx := context.Background()

	input := f.sampleBill()
	input.CustomerMobile = "9000000001"
	result, err := f.svc.PostBill(ctx, input)
	if err != nil {
		t.Fatal(err)
	}
	bill, _ := f.svc.GetBill(ctx, result.BillNumber)
	if bill.CustomerName != entity.WalkInCustomerName || bill.CustomerID != nil {
		t.Fatalf("expected anonymous walk-in, got %+v", bill)
	}
	if c, _ := f.store.Customers().GetByMobile(ctx, "9000000001"); c != nil {
		t.Fatal("no customer should be created without a name")
	}
}

func TestSearchProducts(t *testing.T) {
	f := newBillingFixture(t, config.PostingModeAtomic)
	ctx := context.Background()

	if _, err := f.svc.SearchProducts(ctx, repository.ProductSearchParams{Name: "  "}); !apperror.IsType(err, apperror.TypeValidation) {
		t.Fatalf("blank search should be rejected, got %v", err)
	}

	res, err := f.svc.SearchProducts(ctx, repository.ProductSearchParams{Barcode: f.amoxicillin.Barcode, Name: "para"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Product == nil || res.Product.ID != f.amoxicillin.ID || res.Product.AvailableStock != 10 {
		t.Fatalf("barcode should win over name, got %+v", res.Product)
	}

	res, _ = f.svc.SearchProducts(ctx, repository.ProductSearchParams{Name: "zzz"})
	if res.Product != nil || len(res.Products) != 0 {
		t.Fatal("expected no match")
	}
}

func TestGetBillAndProductNotFound(t *testing.T) {
	f := newBillingFixture(t, config.PostingModeAtomic)
	ctx := context.Background()

	if _, err := f.svc.GetBill(ctx, "BILL-404"); !apperror.IsType(err, apperror.TypeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.svc.GetProduct(ctx, uuid.New()); !apperror.IsType(err, apperror.TypeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListRecentBills(t *testing.T) {
	f := newBillingFixture(t, config.PostingModeAtomic)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		input := f.sampleBill()
		input.Items = input.Items[1:]
		if _, err := f.svc.PostBill(ctx, input); err != nil {
			t.Fatal(err)
		}
	}
	recent, err := f.svc.ListRecentBills(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].Total.StringFixed(2) != "13.44" {
		t.Fatalf("recent %+v", recent)
	}
}

func TestPostingModeDefaultsToAtomic(t *testing.T) {
	f := newBillingFixture(t, "sometimes")
	if f.svc.PostingMode() != config.PostingModeAtomic {
		t.Fatalf("mode = %q", f.svc.PostingMode())
	}
}
