package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sangkips/pharmacy-pos/internal/config"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type recordingPrinter struct {
	jobs [][]byte
	err  error
}

func (p *recordingPrinter) Print(data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, data)
	return nil
}

func (p *recordingPrinter) Close() error      { return nil }
func (p *recordingPrinter) IsConnected() bool { return p.err == nil }

func TestBuildReceipt(t *testing.T) {
	f := newBillingFixture(t, config.PostingModeAtomic)
	ctx := context.Background()

	input := f.sampleBill()
	input.CustomerMobile = "9876543210"
	input.CustomerName = "Asha Verma"
	input.PaymentMethod = "upi"
	posted, err := f.svc.PostBill(ctx, input)
	if err != nil {
		t.Fatal(err)
	}

	svc := NewReceiptService(f.svc, &recordingPrinter{}, ReceiptOptions{
		Header: entity.ReceiptHeader{Address: "12 Market Road"},
	}, nil, nil)

	receipt, err := svc.BuildReceipt(ctx, posted.BillNumber)
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Header.StoreName != "LIGIMED PHARMACY" || receipt.Header.Address != "12 Market Road" {
		t.Fatalf("header %+v", receipt.Header)
	}
	if receipt.Customer != "Asha Verma" || receipt.Mobile != "9876543210" || receipt.PaymentMethod != "UPI" {
		t.Fatalf("receipt %+v", receipt)
	}
	if receipt.TaxLabel != "GST (12%)" || receipt.GrandTotal.StringFixed(2) != "47.04" {
		t.Fatalf("totals %s %s", receipt.TaxLabel, receipt.GrandTotal)
	}
	if len(receipt.Items) != 2 || len(receipt.Footer) != 2 || receipt.Footer[1] != ReceiptComputed {
		t.Fatalf("items %d footer %v", len(receipt.Items), receipt.Footer)
	}
}

func TestReceiptKeepsPostedTaxRate(t *testing.T) {
	f := newBillingFixture(t, config.PostingModeAtomic)
	ctx := context.Background()

	posted, err := f.svc.PostBill(ctx, f.sampleBill())
	if err != nil {
		t.Fatal(err)
	}

	// the configured rate moved to 18% after the bill was posted at 12%
	svc := NewReceiptService(f.svc, &recordingPrinter{}, ReceiptOptions{
		TaxRate: decimal.RequireFromString("0.18"),
	}, nil, nil)

	receipt, err := svc.BuildReceipt(ctx, posted.BillNumber)
	if err != nil {
		t.Fatal(err)
	}
	if receipt.TaxLabel != "GST (12%)" {
		t.Fatalf("reprint should keep the posted rate, got %q", receipt.TaxLabel)
	}
}

func TestPrintReceiptSendsEscPos(t *testing.T) {
	f := newBillingFixture(t, config.PostingModeAtomic)
	posted, err := f.svc.PostBill(context.Background(), f.sampleBill())
	if err != nil {
		t.Fatal(err)
	}

	p := &recordingPrinter{}
	svc := NewReceiptService(f.svc, p, ReceiptOptions{CharWidth: 32}, nil, nil)
	if _, err := svc.PrintReceipt(context.Background(), posted.BillNumber); err != nil {
		t.Fatal(err)
	}
	if len(p.jobs) != 1 {
		t.Fatalf("jobs = %d", len(p.jobs))
	}
	job := p.jobs[0]
	for _, want := range []string{posted.BillNumber, "47.04", "Batch: AMX-24", ReceiptThanks} {
		if !bytes.Contains(job, []byte(want)) {
			t.Errorf("receipt missing %q", want)
		}
	}
	if bytes.Contains(job, []byte("Batch: N/A")) {
		t.Error("default batch should not be printed")
	}
}

func TestPrintReceiptFailureKeepsReceipt(t *testing.T) {
	f := newBillingFixture(t, config.PostingModeAtomic)
	posted, _ := f.svc.PostBill(context.Background(), f.sampleBill())

	jammed := errors.New("paper jam")
	svc := NewReceiptService(f.svc, &recordingPrinter{err: jammed}, ReceiptOptions{}, nil, nil)
	receipt, err := svc.PrintReceipt(context.Background(), posted.BillNumber)
	if !errors.Is(err, jammed) {
		t.Fatalf("expected print error, got %v", err)
	}
	if receipt == nil || receipt.BillNumber != posted.BillNumber {
		t.Fatal("receipt should still be returned")
	}

	if _, err := svc.PrintReceipt(context.Background(), "BILL-missing"); err == nil || errors.Is(err, jammed) {
		t.Fatalf("unknown bill should fail before printing, got %v", err)
	}
}

func TestPrinterStatusAndTestPrint(t *testing.T) {
	p := &recordingPrinter{}
	svc := NewReceiptService(nil, p, ReceiptOptions{PrinterType: "network"}, nil, nil)

	status := svc.GetStatus()
	if !status.Configured || !status.Connected || status.Type != "network" {
		t.Fatalf("status %+v", status)
	}

	receipt, err := svc.TestPrint()
	if err != nil {
		t.Fatal(err)
	}
	if receipt.BillNumber != "TEST-001" || !receipt.GrandTotal.Equal(decimal.RequireFromString("22.4")) || len(p.jobs) != 1 {
		t.Fatalf("test receipt %+v", receipt)
	}
	if receipt.TaxLabel != "GST (12%)" {
		t.Fatalf("test receipt label %q", receipt.TaxLabel)
	}
}

func TestTaxLabel(t *testing.T) {
	if got := TaxLabel(decimal.RequireFromString("0.05")); got != "GST (5%)" {
		t.Fatalf("TaxLabel = %q", got)
	}
}
