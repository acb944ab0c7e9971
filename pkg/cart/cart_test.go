package cart

import (
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAddOrIncrementSameProductTwice(t *testing.T) {
	c := New()
	p := Product{ID: "p1", Name: "Paracetamol 500mg", SKU: "PCM-500", UnitPrice: dec("4.50")}
	c.AddOrIncrement(p)
	c.AddOrIncrement(p)

	lines := c.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	if lines[0].Quantity() != 2 {
		t.Fatalf("expected qty 2, got %d", lines[0].Quantity())
	}
}

func TestAddOrIncrementDefaults(t *testing.T) {
	c := New()
	c.AddOrIncrement(Product{ID: "p1", Name: "Bandage"})

	line, ok := c.Line("p1")
	if !ok {
		t.Fatal("expected line")
	}
	if line.Batch != DefaultBatch {
		t.Fatalf("expected batch %q, got %q", DefaultBatch, line.Batch)
	}
	if !line.UnitPrice.IsZero() {
		t.Fatalf("expected zero price, got %s", line.UnitPrice)
	}
}

func TestTotalsReferenceScenario(t *testing.T) {
	c := New()
	c.AddOrIncrement(Product{ID: "a", Name: "A", UnitPrice: dec("4.5")})
	c.SetQuantity("a", 4)
	c.AddOrIncrement(Product{ID: "b", Name: "B", UnitPrice: dec("24.0")})

	totals := c.Totals()
	if !totals.Subtotal.Equal(dec("42.00")) {
		t.Errorf("subtotal = %s, want 42.00", totals.Subtotal)
	}
	if !totals.Tax.Equal(dec("5.04")) {
		t.Errorf("gst = %s, want 5.04", totals.Tax)
	}
	if !totals.GrandTotal.Equal(dec("47.04")) {
		t.Errorf("grand total = %s, want 47.04", totals.GrandTotal)
	}
}

func TestSetQuantityClamps(t *testing.T) {
	c := New()
	c.AddOrIncrement(Product{ID: "p1", Name: "Syrup", UnitPrice: dec("10")})

	c.SetQuantity("p1", 0)
	if got := mustLine(t, c, "p1").Quantity(); got != 1 {
		t.Fatalf("setQuantity(0) should clamp to 1, got %d", got)
	}
	c.SetQuantity("p1", -5)
	if got := mustLine(t, c, "p1").Quantity(); got != 1 {
		t.Fatalf("setQuantity(-5) should clamp to 1, got %d", got)
	}
	c.SetQuantity("p1", 100000)
	if got := mustLine(t, c, "p1").Quantity(); got != MaxQuantity {
		t.Fatalf("expected clamp to %d, got %d", MaxQuantity, got)
	}
}

func TestSetQuantityUnknownProductIsNoop(t *testing.T) {
	c := New()
	c.SetQuantity("ghost", 3)
	if c.Len() != 0 {
		t.Fatal("setQuantity must not create lines")
	}
}

func TestDecrementNeverBelowOne(t *testing.T) {
	c := New()
	c.AddOrIncrement(Product{ID: "p1", Name: "Gauze"})
	c.Decrement("p1")
	c.Decrement("p1")
	if got := mustLine(t, c, "p1").Quantity(); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestRemoveExcludedFromLinesAndTotals(t *testing.T) {
	c := New()
	c.AddOrIncrement(Product{ID: "a", Name: "A", UnitPrice: dec("10")})
	c.AddOrIncrement(Product{ID: "b", Name: "B", UnitPrice: dec("5")})
	c.Remove("a")

	line := mustLine(t, c, "a")
	if line.State != Removed || line.Quantity() != 0 {
		t.Fatalf("expected removed line with qty 0, got %v/%d", line.State, line.Quantity())
	}
	if len(c.Lines()) != 1 {
		t.Fatalf("expected 1 visible line, got %d", len(c.Lines()))
	}
	if !c.Totals().Subtotal.Equal(dec("5")) {
		t.Fatalf("removed line leaked into subtotal: %s", c.Totals().Subtotal)
	}
	if c.Len() != 2 {
		t.Fatal("removed line should keep its slot")
	}
}

func TestAddAfterRemoveRevivesInPlace(t *testing.T) {
	c := New()
	p := Product{ID: "a", Name: "A", UnitPrice: dec("1")}
	c.AddOrIncrement(p)
	c.SetQuantity("a", 7)
	c.Remove("a")
	c.AddOrIncrement(p)

	if c.Len() != 1 {
		t.Fatalf("expected a single slot, got %d", c.Len())
	}
	if got := mustLine(t, c, "a").Quantity(); got != 1 {
		t.Fatalf("revived line should restart at 1, got %d", got)
	}
}

func TestSetQuantityIgnoresRemovedLine(t *testing.T) {
	c := New()
	c.AddOrIncrement(Product{ID: "a", Name: "A"})
	c.Remove("a")
	c.SetQuantity("a", 5)
	if got := mustLine(t, c, "a").Quantity(); got != 0 {
		t.Fatalf("removed line must stay removed, got qty %d", got)
	}
}

func TestClearAll(t *testing.T) {
	c := New()
	c.AddOrIncrement(Product{ID: "a", Name: "A", UnitPrice: dec("3")})
	c.AddOrIncrement(Product{ID: "b", Name: "B", UnitPrice: dec("4")})
	c.ClearAll()

	if !c.IsEmpty() {
		t.Fatal("expected empty cart")
	}
	if !c.Totals().GrandTotal.IsZero() {
		t.Fatal("expected zero totals")
	}
}

func TestSnapshotExcludesRemovedAndStampsTime(t *testing.T) {
	c := New()
	c.AddOrIncrement(Product{ID: "a", Name: "A", SKU: "B-1", UnitPrice: dec("2.25")})
	c.AddOrIncrement(Product{ID: "b", Name: "B", UnitPrice: dec("1")})
	c.SetQuantity("a", 2)
	c.Remove("b")

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	snap := c.Snapshot(now)
	if !snap.CreatedAt.Equal(now) {
		t.Fatalf("expected createdAt %v, got %v", now, snap.CreatedAt)
	}
	if len(snap.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(snap.Items))
	}
	item := snap.Items[0]
	if item.Batch != "B-1" || item.Quantity != 2 || !item.LineTotal.Equal(dec("4.5")) {
		t.Fatalf("unexpected item %+v", item)
	}
	if !snap.Totals.Subtotal.Equal(dec("4.5")) {
		t.Fatalf("unexpected subtotal %s", snap.Totals.Subtotal)
	}
}

func TestRenderingIsIdempotent(t *testing.T) {
	c := New()
	c.AddOrIncrement(Product{ID: "a", Name: "A", UnitPrice: dec("1.10")})
	c.AddOrIncrement(Product{ID: "b", Name: "B", UnitPrice: dec("2.20")})

	first, second := c.Lines(), c.Lines()
	if len(first) != len(second) {
		t.Fatal("line count changed between renders")
	}
	for i := range first {
		if first[i].ProductID != second[i].ProductID || first[i].Quantity() != second[i].Quantity() {
			t.Fatalf("render %d differs", i)
		}
	}
	if !c.Totals().GrandTotal.Equal(c.Totals().GrandTotal) {
		t.Fatal("totals changed between renders")
	}
}

func TestRandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := []string{"a", "b", "c", "d"}

	for run := 0; run < 200; run++ {
		c := New()
		for step := 0; step < 300; step++ {
			id := ids[rng.Intn(len(ids))]
			switch rng.Intn(5) {
			case 0, 1:
				c.AddOrIncrement(Product{ID: id, Name: id, UnitPrice: decimal.NewFromInt(int64(rng.Intn(50)))})
			case 2:
				c.Decrement(id)
			case 3:
				c.Remove(id)
			case 4:
				c.SetQuantity(id, rng.Intn(20000)-5000)
			}
		}

		seen := map[string]bool{}
		expected := decimal.Zero
		for _, line := range c.Lines() {
			q := line.Quantity()
			if q < MinQuantity || q > MaxQuantity {
				t.Fatalf("run %d: quantity %d out of bounds", run, q)
			}
			if seen[line.ProductID] {
				t.Fatalf("run %d: duplicate product %s", run, line.ProductID)
			}
			seen[line.ProductID] = true
			expected = expected.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(q))))
		}
		if c.Len() > len(ids) {
			t.Fatalf("run %d: %d slots for %d products", run, c.Len(), len(ids))
		}
		if !c.Totals().Subtotal.Equal(expected) {
			t.Fatalf("run %d: subtotal %s, want %s", run, c.Totals().Subtotal, expected)
		}
	}
}

func TestAddOrIncrementCapsAtMax(t *testing.T) {
	c := New()
	p := Product{ID: "a", Name: "A"}
	c.AddOrIncrement(p)
	c.SetQuantity("a", MaxQuantity)
	c.AddOrIncrement(p)
	if got := mustLine(t, c, "a").Quantity(); got != MaxQuantity {
		t.Fatalf("expected cap at %d, got %d", MaxQuantity, got)
	}
}

func TestLineTax(t *testing.T) {
	got := LineTax(dec("4.50"), 4, DefaultGSTRate)
	if !got.Equal(dec("2.16")) {
		t.Fatalf("line tax = %s, want 2.16", got)
	}
}

func TestNewWithRate(t *testing.T) {
	c := NewWithRate(dec("0.05"))
	for i := 0; i < 3; i++ {
		c.AddOrIncrement(Product{ID: strconv.Itoa(i), Name: "x", UnitPrice: dec("10")})
	}
	if !c.Totals().Tax.Equal(dec("1.5")) {
		t.Fatalf("tax = %s, want 1.50", c.Totals().Tax)
	}
}

func mustLine(t *testing.T, c *Cart, id string) Line {
	t.Helper()
	line, ok := c.Line(id)
	if !ok {
		t.Fatalf("line %s not found", id)
	}
	return line
}
