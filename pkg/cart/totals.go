package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Priced is the minimum a line needs to contribute to totals.
type Priced struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Totals are always derived, never stored on the cart.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"gst"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// ComputeTotals sums price times quantity over lines with a positive quantity.
// The subtotal is exact; tax is rounded to cents before the grand total is formed.
func ComputeTotals(lines []Priced, rate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	tax := subtotal.Mul(rate).Round(2)
	return Totals{
		Subtotal:   subtotal,
		Tax:        tax,
		GrandTotal: subtotal.Add(tax),
	}
}

// LineTax is the per-line tax persisted with a bill item.
func LineTax(unitPrice decimal.Decimal, qty int, rate decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty))).Mul(rate).Round(2)
}

// SnapshotItem is one bill line frozen from the cart.
type SnapshotItem struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Batch     string          `json:"batch"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"qty"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Snapshot is the bill payload derived from a cart at submit time.
type Snapshot struct {
	Items     []SnapshotItem `json:"items"`
	Totals    Totals         `json:"totals"`
	CreatedAt time.Time      `json:"created_at"`
}
