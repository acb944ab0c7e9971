package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/infrastructure/memory"
	infraRepo "github.com/sangkips/pharmacy-pos/internal/infrastructure/repository"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
)

func TestSearchByMobile(t *testing.T) {
	store := memory.NewStore()
	svc := NewCustomerService(store.Customers())
	ctx := context.Background()

	if _, err := svc.SearchByMobile(ctx, ""); apperror.GetAppError(err).Message != "Mobile number required" {
		t.Fatalf("blank mobile: %v", err)
	}
	if _, err := svc.SearchByMobile(ctx, "98765"); !apperror.IsType(err, apperror.TypeValidation) {
		t.Fatalf("short mobile: %v", err)
	}

	miss, err := svc.SearchByMobile(ctx, "9876543210")
	if err != nil || miss.Found || miss.Customer != nil {
		t.Fatalf("miss should not be an error: %+v %v", miss, err)
	}

	if _, err := svc.CreateCustomer(ctx, &CreateCustomerInput{Mobile: "9876543210", Name: "Ravi"}); err != nil {
		t.Fatal(err)
	}
	hit, err := svc.SearchByMobile(ctx, " 9876543210 ")
	if err != nil || !hit.Found || hit.Customer.Name != "Ravi" {
		t.Fatalf("hit %+v %v", hit, err)
	}
}

func TestCreateCustomer(t *testing.T) {
	store := memory.NewStore()
	svc := NewCustomerService(store.Customers())
	orgID := uuid.New()
	ctx := infraRepo.WithOrg(context.Background(), orgID)

	if _, err := svc.CreateCustomer(ctx, &CreateCustomerInput{Mobile: "9876543210"}); apperror.GetAppError(err).Message != "Mobile and name are required" {
		t.Fatalf("missing name: %v", err)
	}

	blank := "  "
	c, err := svc.CreateCustomer(ctx, &CreateCustomerInput{Mobile: "9876543210", Name: " Meena ", Email: &blank})
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "Meena" || c.Email != nil || c.OrgID == nil || *c.OrgID != orgID {
		t.Fatalf("customer %+v", c)
	}

	if _, err := svc.CreateCustomer(ctx, &CreateCustomerInput{Mobile: "9876543210", Name: "Other"}); !apperror.IsType(err, apperror.TypeConflict) {
		t.Fatalf("duplicate mobile: %v", err)
	}

	otherOrg := infraRepo.WithOrg(context.Background(), uuid.New())
	if _, err := svc.CreateCustomer(otherOrg, &CreateCustomerInput{Mobile: "9876543210", Name: "Other"}); err != nil {
		t.Fatalf("mobile is unique per organization only: %v", err)
	}
}
