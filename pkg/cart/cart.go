// Package cart holds the billing-screen cart: an ordered set of line items keyed by
// product id, with derived subtotal, GST and grand total.
//
// A Cart is owned by one billing session and is not safe for concurrent use.
package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinQuantity = 1
	MaxQuantity = 9999

	// DefaultBatch is used when a product carries no SKU.
	DefaultBatch = "N/A"
)

// DefaultGSTRate is the fixed GST applied to the subtotal.
var DefaultGSTRate = decimal.New(12, -2)

// LineState distinguishes a live line from one the clerk removed.
type LineState int

const (
	Active LineState = iota
	Removed
)

func (s LineState) String() string {
	if s == Removed {
		return "removed"
	}
	return "active"
}

// Product is the subset of a catalogue product the cart needs.
type Product struct {
	ID        string
	Name      string
	SKU       string
	UnitPrice decimal.Decimal
}

// Line is one cart entry. A removed line keeps its slot so re-adding the product
// revives it in place.
type Line struct {
	ProductID string
	Name      string
	Batch     string
	UnitPrice decimal.Decimal
	State     LineState
	qty       int
}

// Quantity is 0 for a removed line.
func (l Line) Quantity() int {
	if l.State == Removed {
		return 0
	}
	return l.qty
}

// Total is unit price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity())))
}

// Cart is an ordered collection of lines with unique product ids.
type Cart struct {
	lines   []*Line
	index   map[string]int
	taxRate decimal.Decimal
}

// New creates an empty cart using DefaultGSTRate.
func New() *Cart {
	return NewWithRate(DefaultGSTRate)
}

// NewWithRate creates an empty cart with a custom tax rate.
func NewWithRate(rate decimal.Decimal) *Cart {
	return &Cart{
		index:   make(map[string]int),
		taxRate: rate,
	}
}

// TaxRate returns the rate used for Totals.
func (c *Cart) TaxRate() decimal.Decimal {
	return c.taxRate
}

// AddOrIncrement bumps the quantity of an existing line or appends a new one with quantity 1.
func (c *Cart) AddOrIncrement(p Product) {
	if i, ok := c.index[p.ID]; ok {
		line := c.lines[i]
		if line.State == Removed {
			line.State = Active
			line.qty = MinQuantity
			return
		}
		line.qty = clamp(line.qty + 1)
		return
	}

	batch := p.SKU
	if batch == "" {
		batch = DefaultBatch
	}
	c.index[p.ID] = len(c.lines)
	c.lines = append(c.lines, &Line{
		ProductID: p.ID,
		Name:      p.Name,
		Batch:     batch,
		UnitPrice: p.UnitPrice,
		State:     Active,
		qty:       MinQuantity,
	})
}

// SetQuantity sets an active line's quantity, clamped to [MinQuantity, MaxQuantity].
// Unknown or removed products are ignored.
func (c *Cart) SetQuantity(productID string, qty int) {
	line := c.active(productID)
	if line == nil {
		return
	}
	line.qty = clamp(qty)
}

// Decrement lowers an active line's quantity by one, never below MinQuantity.
func (c *Cart) Decrement(productID string) {
	line := c.active(productID)
	if line == nil {
		return
	}
	if line.qty > MinQuantity {
		line.qty--
	}
}

// Remove marks the line as removed.
func (c *Cart) Remove(productID string) {
	if line := c.active(productID); line != nil {
		line.State = Removed
		line.qty = 0
	}
}

// ClearAll removes every line.
func (c *Cart) ClearAll() {
	for _, line := range c.lines {
		line.State = Removed
		line.qty = 0
	}
}

// Line returns a copy of the line for productID, including removed lines.
func (c *Cart) Line(productID string) (Line, bool) {
	i, ok := c.index[productID]
	if !ok {
		return Line{}, false
	}
	return *c.lines[i], true
}

// Lines returns copies of the visible lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.lines))
	for _, line := range c.lines {
		if line.Quantity() > 0 {
			out = append(out, *line)
		}
	}
	return out
}

// Len counts every slot, removed ones included.
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether no line is visible.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines()) == 0
}

// Totals derives subtotal, tax and grand total from the visible lines.
func (c *Cart) Totals() Totals {
	lines := c.Lines()
	priced := make([]Priced, len(lines))
	for i, l := range lines {
		priced[i] = Priced{UnitPrice: l.UnitPrice, Quantity: l.Quantity()}
	}
	return ComputeTotals(priced, c.taxRate)
}

// Snapshot freezes the visible lines into a bill payload stamped with now.
func (c *Cart) Snapshot(now time.Time) Snapshot {
	lines := c.Lines()
	items := make([]SnapshotItem, len(lines))
	for i, l := range lines {
		items[i] = SnapshotItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Batch:     l.Batch,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity(),
			LineTotal: l.Total(),
		}
	}
	return Snapshot{
		Items:     items,
		Totals:    c.Totals(),
		CreatedAt: now,
	}
}

func (c *Cart) active(productID string) *Line {
	i, ok := c.index[productID]
	if !ok {
		return nil
	}
	line := c.lines[i]
	if line.State != Active {
		return nil
	}
	return line
}

func clamp(qty int) int {
	if qty < MinQuantity {
		return MinQuantity
	}
	if qty > MaxQuantity {
		return MaxQuantity
	}
	return qty
}
