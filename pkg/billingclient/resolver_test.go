package billingclient

import (
	"context"
	"testing"

	"github.com/sangkips/pharmacy-pos/pkg/apperror"
)

type countingDirectory struct {
	CustomerDirectory
	calls int
}

func (d *countingDirectory) SearchCustomer(ctx context.Context, mobile string) (*Customer, bool, error) {
	d.calls++
	return d.CustomerDirectory.SearchCustomer(ctx, mobile)
}

func TestResolverAddsUnknownCustomer(t *testing.T) {
	_, srv := newFakeAPI(t)
	r := NewCustomerResolver(New(Config{BaseURL: srv.URL}))
	ctx := context.Background()

	r.SetMobile("9876543210")
	found, err := r.Fetch(ctx)
	if err != nil || found {
		t.Fatalf("first lookup should miss: %v %v", found, err)
	}
	if r.State() != StateAdd {
		t.Fatalf("state = %s", r.State())
	}

	if _, err := r.Add(ctx, " Priya "); err != nil {
		t.Fatal(err)
	}
	if r.State() != StateFetch || r.Name() != "Priya" {
		t.Fatalf("after add: %s %q", r.State(), r.Name())
	}

	again := NewCustomerResolver(New(Config{BaseURL: srv.URL}))
	again.SetMobile("9876543210")
	if found, err := again.Fetch(ctx); err != nil || !found || again.Name() != "Priya" {
		t.Fatalf("customer should be retrievable: %v %v %q", found, err, again.Name())
	}
}

func TestResolverRejectsMalformedMobileLocally(t *testing.T) {
	_, srv := newFakeAPI(t)
	dir := &countingDirectory{CustomerDirectory: New(Config{BaseURL: srv.URL})}
	r := NewCustomerResolver(dir)

	for _, mobile := range []string{"", "98765", "98765432101", "98765abcde"} {
		r.SetMobile(mobile)
		if _, err := r.Fetch(context.Background()); !apperror.IsType(err, apperror.TypeValidation) {
			t.Fatalf("%q: expected validation error, got %v", mobile, err)
		}
	}
	if dir.calls != 0 {
		t.Fatalf("no remote call expected, got %d", dir.calls)
	}
}

func TestResolverMobileChangeResetsToFetch(t *testing.T) {
	_, srv := newFakeAPI(t)
	r := NewCustomerResolver(New(Config{BaseURL: srv.URL}))

	r.SetMobile("9000000001")
	if _, err := r.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if r.State() != StateAdd {
		t.Fatal("expected add state")
	}

	r.SetMobile("9000000002")
	if r.State() != StateFetch {
		t.Fatalf("mobile change should reset, state = %s", r.State())
	}
	if _, err := r.Add(context.Background(), "Late"); !apperror.IsType(err, apperror.TypeValidation) {
		t.Fatalf("add outside add state should be rejected, got %v", err)
	}
}
