package request

import "github.com/sangkips/pharmacy-pos/internal/application/service"

// CreateCustomerRequest represents a customer registration from the counter
type CreateCustomerRequest struct {
	Mobile  string  `json:"mobile"`
	Name    string  `json:"name"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	OrgID   string  `json:"orgId"`
}

// ToInput converts the request to service input
func (r *CreateCustomerRequest) ToInput() *service.CreateCustomerInput {
	return &service.CreateCustomerInput{
		Mobile:  r.Mobile,
		Name:    r.Name,
		Email:   r.Email,
		Address: r.Address,
	}
}
