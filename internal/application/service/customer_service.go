package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	infraRepo "github.com/sangkips/pharmacy-pos/internal/infrastructure/repository"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
)

// CustomerService handles customer lookup and creation at the counter
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CustomerLookup is the result of a mobile search
type CustomerLookup struct {
	Customer *entity.Customer `json:"customer"`
	Found    bool             `json:"found"`
}

// SearchByMobile finds a customer by mobile number. A miss is not an error.
func (s *CustomerService) SearchByMobile(ctx context.Context, mobile string) (*CustomerLookup, error) {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return nil, apperror.NewBadRequestError("Mobile number required")
	}
	if !utils.IsMobileNumber(mobile) {
		return nil, apperror.NewBadRequestError("Mobile number must be exactly 10 digits")
	}

	customer, err := s.customerRepo.GetByMobile(ctx, mobile)
	if err != nil {
		return nil, apperror.NewRemoteFailure("Failed to look up customer", err)
	}
	return &CustomerLookup{Customer: customer, Found: customer != nil}, nil
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	Mobile  string
	Name    string
	Email   *string
	Address *string
}

// CreateCustomer registers a new customer under the request's organization
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	mobile := strings.TrimSpace(input.Mobile)
	name := strings.TrimSpace(input.Name)
	if mobile == "" || name == "" {
		return nil, apperror.NewBadRequestError("Mobile and name are required")
	}
	if !utils.IsMobileNumber(mobile) {
		return nil, apperror.NewBadRequestError("Mobile number must be exactly 10 digits")
	}

	customer := &entity.Customer{
		OrgID:   infraRepo.OrgIDPtr(ctx),
		Mobile:  mobile,
		Name:    name,
		Email:   blankToNil(input.Email),
		Address: blankToNil(input.Address),
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.NewConflictError("A customer with this mobile number already exists")
		}
		return nil, apperror.NewRemoteFailure("Failed to create customer", err)
	}
	return customer, nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
