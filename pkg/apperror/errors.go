package apperror

import (
	"errors"
	"net/http"
)

// ErrorType classifies an AppError for clients that branch on failure kind
type ErrorType string

const (
	TypeValidation        ErrorType = "validation"
	TypeNotFound          ErrorType = "not_found"
	TypeInsufficientStock ErrorType = "insufficient_stock"
	TypeRemoteFailure     ErrorType = "remote_failure"
	TypePartialBill       ErrorType = "partial_bill"
	TypeUnauthorized      ErrorType = "unauthorized"
	TypeConflict          ErrorType = "conflict"
	TypeInternal          ErrorType = "internal"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Type    ErrorType    `json:"type"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Details interface{}  `json:"details,omitempty"`
	cause   error
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// StockShortfall describes one cart line that cannot be fulfilled
type StockShortfall struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Shortfall int    `json:"shortfall"`
}

// PartialBillDetails identifies a bill header that was persisted without its items
type PartialBillDetails struct {
	BillNumber string `json:"bill_number"`
	BillID     string `json:"bill_id"`
	Stage      string `json:"stage"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying store or transport error, if any
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches on Type so sentinel comparisons work through wrapping
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && (t.Message == "" || e.Message == t.Message)
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Type: TypeNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Type: TypeUnauthorized, Message: "Unauthorized"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Type: TypeValidation, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Type: TypeInternal, Message: "Internal server error"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Type: TypeUnauthorized, Message: "Invalid email or password"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Type: TypeUnauthorized, Message: "Invalid token"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Type:    typeForStatus(code),
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Type:    TypeValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Type:    TypeNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Type:    TypeConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Type:    TypeValidation,
		Message: message,
	}
}

// NewInsufficientStockError lists every line whose requested quantity exceeds available stock
func NewInsufficientStockError(shortfalls []StockShortfall) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Type:    TypeInsufficientStock,
		Message: "Insufficient stock",
		Details: shortfalls,
	}
}

// NewRemoteFailure wraps a store or transport error. The operation did not complete.
func NewRemoteFailure(message string, cause error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Type:    TypeRemoteFailure,
		Message: message,
		cause:   cause,
	}
}

// NewPartialBillError reports a bill header persisted without its line items
func NewPartialBillError(details PartialBillDetails, cause error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Type:    TypePartialBill,
		Message: "Bill " + details.BillNumber + " was created but its items could not be saved; manual reconciliation required",
		Details: details,
		cause:   cause,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Type:    TypeInternal,
		Message: err.Error(),
		cause:   err,
	}
}

func typeForStatus(code int) ErrorType {
	switch {
	case code == http.StatusNotFound:
		return TypeNotFound
	case code == http.StatusUnauthorized:
		return TypeUnauthorized
	case code == http.StatusConflict:
		return TypeConflict
	case code >= 400 && code < 500:
		return TypeValidation
	default:
		return TypeInternal
	}
}
