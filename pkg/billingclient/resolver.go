package billingclient

import (
	"context"
	"strings"

	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
)

// ResolverState is where the customer panel is in the lookup flow.
type ResolverState int

const (
	// StateFetch waits for a mobile to look up
	StateFetch ResolverState = iota
	// StateAdd collects a name for an unknown mobile
	StateAdd
)

func (s ResolverState) String() string {
	if s == StateAdd {
		return "add"
	}
	return "fetch"
}

// CustomerDirectory is the remote side of customer resolution.
type CustomerDirectory interface {
	SearchCustomer(ctx context.Context, mobile string) (*Customer, bool, error)
	CreateCustomer(ctx context.Context, mobile, name string) (*Customer, error)
}

// CustomerResolver drives the fetch/add customer panel for one billing session.
type CustomerResolver struct {
	dir    CustomerDirectory
	state  ResolverState
	mobile string
	name   string
}

// NewCustomerResolver starts in the fetch state.
func NewCustomerResolver(dir CustomerDirectory) *CustomerResolver {
	return &CustomerResolver{dir: dir, state: StateFetch}
}

func (r *CustomerResolver) State() ResolverState { return r.state }
func (r *CustomerResolver) Mobile() string       { return r.mobile }

// Name is the resolved customer name, empty until a lookup or add succeeds.
func (r *CustomerResolver) Name() string { return r.name }

// SetMobile records the typed mobile. Editing it drops any resolved name and
// abandons a pending add.
func (r *CustomerResolver) SetMobile(mobile string) {
	mobile = strings.TrimSpace(mobile)
	if mobile == r.mobile {
		return
	}
	r.mobile = mobile
	r.name = ""
	r.state = StateFetch
}

// Fetch looks the current mobile up. A miss switches to the add state and
// reports found=false without an error.
func (r *CustomerResolver) Fetch(ctx context.Context) (bool, error) {
	if err := validMobile(r.mobile); err != nil {
		return false, err
	}
	customer, found, err := r.dir.SearchCustomer(ctx, r.mobile)
	if err != nil {
		return false, err
	}
	if !found || customer == nil {
		r.state = StateAdd
		return false, nil
	}
	r.name = customer.Name
	r.state = StateFetch
	return true, nil
}

// Add creates the customer for the current mobile and returns to fetch.
func (r *CustomerResolver) Add(ctx context.Context, name string) (*Customer, error) {
	if r.state != StateAdd {
		return nil, apperror.NewBadRequestError("Look the mobile number up before adding a customer")
	}
	if err := validMobile(r.mobile); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewBadRequestError("Mobile and name are required")
	}

	customer, err := r.dir.CreateCustomer(ctx, r.mobile, name)
	if err != nil {
		return nil, err
	}
	r.name = customer.Name
	r.state = StateFetch
	return customer, nil
}

func validMobile(mobile string) error {
	if mobile == "" {
		return apperror.NewBadRequestError("Mobile number required")
	}
	if !utils.IsMobileNumber(mobile) {
		return apperror.NewValidationError([]apperror.FieldError{{Field: "mobile", Message: "must be exactly 10 digits"}})
	}
	return nil
}
