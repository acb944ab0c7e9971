package request

import "github.com/sangkips/pharmacy-pos/internal/domain/repository"

// ProductSearchRequest represents product search parameters. Exactly one
// criterion is used, checked in the order barcode, sku, name.
type ProductSearchRequest struct {
	Barcode string `form:"barcode"`
	SKU     string `form:"sku"`
	Name    string `form:"name"`
}

// ToParams converts the query into repository search parameters
func (r *ProductSearchRequest) ToParams() repository.ProductSearchParams {
	return repository.ProductSearchParams{
		Barcode: r.Barcode,
		SKU:     r.SKU,
		Name:    r.Name,
	}
}
