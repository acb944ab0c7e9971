package enum

// PaymentStatus of a bill. Counter sales settle immediately.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
)

// PaymentMethod is how the customer paid at the counter
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodUPI  PaymentMethod = "upi"
)

// NormalizePaymentMethod falls back to cash for blank input
func NormalizePaymentMethod(method string) PaymentMethod {
	if method == "" {
		return PaymentMethodCash
	}
	return PaymentMethod(method)
}
