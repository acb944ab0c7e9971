package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/pkg/cart"
	"github.com/sangkips/pharmacy-pos/pkg/metrics"
	"github.com/sangkips/pharmacy-pos/pkg/printer"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Receipt footer lines
const (
	ReceiptThanks   = "Thank you for your business!"
	ReceiptComputed = "*** COMPUTER GENERATED BILL ***"
)

// ReceiptOptions configures the printed header and paper width
type ReceiptOptions struct {
	Header      entity.ReceiptHeader
	TaxRate     decimal.Decimal
	PrinterType string
	CharWidth   int
}

// ReceiptService renders finalized bills and sends them to the thermal printer
type ReceiptService struct {
	billing *BillingService
	printer printer.Printer
	opts    ReceiptOptions
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewReceiptService creates a new receipt service
func NewReceiptService(billing *BillingService, p printer.Printer, opts ReceiptOptions, logger *zap.Logger, m *metrics.Metrics) *ReceiptService {
	if p == nil {
		p = printer.NewNullPrinter()
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
	return &ReceiptService{billing: billing, printer: p, opts: opts, logger: logger, metrics: m}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *ReceiptService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.opts.PrinterType != "none" && s.opts.PrinterType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.opts.PrinterType,
	}
}

// TestPrint sends a sample receipt. The receipt is returned even when printing fails.
func (s *ReceiptService) TestPrint() (*entity.Receipt, error) {
	bill := &entity.Bill{
		BillNumber:    "TEST-001",
		CustomerName:  entity.WalkInCustomerName,
		PaymentMethod: "cash",
		CreatedAt:     time.Now(),
		Items: []entity.BillItem{
			{ProductName: "Test Item 1", BatchNumber: "T-1", Qty: 1, UnitPrice: decimal.NewFromInt(10), LineTotal: decimal.NewFromInt(10)},
			{ProductName: "Test Item 2", BatchNumber: "T-2", Qty: 2, UnitPrice: decimal.NewFromInt(5), LineTotal: decimal.NewFromInt(10)},
		},
	}
	percent := s.opts.TaxRate.Mul(decimal.NewFromInt(100))
	for i := range bill.Items {
		bill.Items[i].TaxRate = percent
	}
	totals := cart.ComputeTotals([]cart.Priced{{UnitPrice: decimal.NewFromInt(20), Quantity: 1}}, s.opts.TaxRate)
	bill.Subtotal, bill.TaxAmount, bill.GrandTotal = totals.Subtotal, totals.Tax, totals.GrandTotal

	receipt := s.compose(bill)
	if err := s.printer.Print(FormatReceipt(receipt, s.opts.CharWidth)); err != nil {
		s.metrics.ReceiptPrintFailures.Inc()
		return receipt, fmt.Errorf("test print failed: %w", err)
	}
	return receipt, nil
}

// BuildReceipt composes the receipt for a bill identified by id or number
func (s *ReceiptService) BuildReceipt(ctx context.Context, identifier string) (*entity.Receipt, error) {
	bill, err := s.billing.GetBill(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return s.compose(bill), nil
}

// PrintReceipt composes and prints a bill's receipt. A print failure still
// returns the receipt alongside the error so the caller can show it on screen.
func (s *ReceiptService) PrintReceipt(ctx context.Context, identifier string) (*entity.Receipt, error) {
	receipt, err := s.BuildReceipt(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if err := s.printer.Print(FormatReceipt(receipt, s.opts.CharWidth)); err != nil {
		s.metrics.ReceiptPrintFailures.Inc()
		s.logger.Warn("receipt print failed", zap.String("bill_number", receipt.BillNumber), zap.Error(err))
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}

func (s *ReceiptService) compose(bill *entity.Bill) *entity.Receipt {
	header := s.opts.Header
	if header.StoreName == "" {
		header.StoreName = "LIGIMED PHARMACY"
	}

	receipt := &entity.Receipt{
		Header:        header,
		BillNumber:    bill.BillNumber,
		Date:          bill.CreatedAt.Format("02/01/2006 15:04"),
		Customer:      bill.CustomerName,
		PaymentMethod: strings.ToUpper(string(bill.PaymentMethod)),
		Items:         make([]entity.ReceiptItem, 0, len(bill.Items)),
		Subtotal:      bill.Subtotal,
		TaxLabel:      s.billTaxLabel(bill),
		Tax:           bill.TaxAmount,
		GrandTotal:    bill.GrandTotal,
		Footer:        []string{ReceiptThanks, ReceiptComputed},
	}
	if receipt.Customer == "" {
		receipt.Customer = entity.WalkInCustomerName
	}
	if bill.CustomerMobile != nil {
		receipt.Mobile = *bill.CustomerMobile
	}

	for _, item := range bill.Items {
		name := item.ProductName
		if name == "" {
			name = "Product"
		}
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      name,
			Batch:     item.BatchNumber,
			Quantity:  item.Qty,
			UnitPrice: item.UnitPrice,
			Total:     item.LineTotal,
		})
	}
	return receipt
}

// billTaxLabel labels with the rate the bill was posted at, not the configured one
func (s *ReceiptService) billTaxLabel(bill *entity.Bill) string {
	if len(bill.Items) > 0 {
		return percentLabel(bill.Items[0].TaxRate)
	}
	return TaxLabel(s.opts.TaxRate)
}

// TaxLabel renders a rate such as 0.12 as "GST (12%)"
func TaxLabel(rate decimal.Decimal) string {
	return percentLabel(rate.Mul(decimal.NewFromInt(100)))
}

func percentLabel(percent decimal.Decimal) string {
	return "GST (" + percent.String() + "%)"
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, charWidth int) []byte {
	doc := printer.NewDocument(charWidth)

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("Bill No:", r.BillNumber).
		KeyValue("Date:", r.Date).
		KeyValue("Customer:", r.Customer)

	if r.Mobile != "" {
		doc.KeyValue("Mobile:", r.Mobile)
	}
	if r.PaymentMethod != "" {
		doc.KeyValue("Payment:", r.PaymentMethod)
	}

	doc.Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, item.Total.StringFixed(2))
		if item.Batch != "" && item.Batch != cart.DefaultBatch {
			doc.TextF("  Batch: %s", item.Batch)
		}
		if item.Quantity > 1 {
			doc.TextF("  @ %s each", item.UnitPrice.StringFixed(2))
		}
	}

	doc.Separator('-')

	doc.KeyValue("Subtotal:", r.Subtotal.StringFixed(2)).
		KeyValue(r.TaxLabel+":", r.Tax.StringFixed(2)).
		SetBold(true).
		KeyValue("TOTAL:", r.GrandTotal.StringFixed(2)).
		SetBold(false)

	doc.Separator('-')

	doc.SetAlign(printer.AlignCenter).
		LineFeed()
	for _, line := range r.Footer {
		doc.Text(line)
	}
	doc.LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
