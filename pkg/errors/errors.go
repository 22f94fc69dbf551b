package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrGone           = errors.New("gone")
	ErrServiceUnavail = errors.New("service unavailable")

	// Checkout-specific sentinels. Each maps to a distinct caller-facing
	// status and user-facing message; internal diagnostic detail is logged
	// but never echoed to the shopper.
	ErrOutOfStock          = errors.New("out of stock")
	ErrPersistenceFailure  = errors.New("persistence failure")
	ErrPaymentGateway      = errors.New("payment gateway error")
	ErrOrderCreationFailed = errors.New("order creation failed")
	ErrSessionExpired      = errors.New("payment session expired")
	ErrPaymentFailed       = errors.New("payment failed")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Status  int            `json:"-"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail attaches a key-value pair to the error's detail payload.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidRequest creates a 400 error for a malformed or incomplete checkout
// request.
func InvalidRequest(message string) *AppError {
	return &AppError{
		Code:    "INVALID_REQUEST",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// VariantNotFound creates a 400 error for a cart line referencing a missing or
// inactive variant. Within checkout a catalog miss is a client error (stale
// cart), not a 404.
func VariantNotFound(variantID string) *AppError {
	return &AppError{
		Code:    "VARIANT_NOT_FOUND",
		Message: fmt.Sprintf("product variant %s is not available", variantID),
		Status:  http.StatusBadRequest,
		Err:     ErrNotFound,
	}
}

// OutOfStock creates a 400 error carrying the SKU, product name, and the
// available vs. requested quantities.
func OutOfStock(sku, name string, available, requested int) *AppError {
	e := &AppError{
		Code:    "OUT_OF_STOCK",
		Message: fmt.Sprintf("insufficient stock for %s (%s): %d available, %d requested", name, sku, available, requested),
		Status:  http.StatusBadRequest,
		Err:     ErrOutOfStock,
	}
	e.WithDetail("sku", sku)
	e.WithDetail("product_name", name)
	e.WithDetail("available", available)
	e.WithDetail("requested", requested)
	return e
}

// PersistenceFailure creates a 500 error for database read/write failures
// outside the order-write path.
func PersistenceFailure(err error) *AppError {
	return &AppError{
		Code:    "PERSISTENCE_FAILURE",
		Message: "a storage error occurred, please try again",
		Status:  http.StatusInternalServerError,
		Err:     fmt.Errorf("%w: %w", ErrPersistenceFailure, err),
	}
}

// PaymentGateway creates a 500 error for payment session creation failures.
// The gateway's own message is preserved on the wrapped error for diagnostics
// and is never part of the user-facing message.
func PaymentGateway(err error) *AppError {
	return &AppError{
		Code:    "PAYMENT_GATEWAY_ERROR",
		Message: "payment could not be initiated, please try again",
		Status:  http.StatusInternalServerError,
		Err:     fmt.Errorf("%w: %w", ErrPaymentGateway, err),
	}
}

// OrderCreationFailed creates a 500 error for order/line-item insert failures.
func OrderCreationFailed(err error) *AppError {
	return &AppError{
		Code:    "ORDER_CREATION_FAILED",
		Message: "your order could not be recorded, please try again",
		Status:  http.StatusInternalServerError,
		Err:     fmt.Errorf("%w: %w", ErrOrderCreationFailed, err),
	}
}

// SessionExpired creates a 410 error for a payment session that outlived its
// 30-minute window.
func SessionExpired(sessionID string) *AppError {
	return &AppError{
		Code:    "SESSION_EXPIRED",
		Message: fmt.Sprintf("payment session %s has expired", sessionID),
		Status:  http.StatusGone,
		Err:     ErrSessionExpired,
	}
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Gone creates a 410 error.
func Gone(message string) *AppError {
	return &AppError{
		Code:    "GONE",
		Message: message,
		Status:  http.StatusGone,
		Err:     ErrGone,
	}
}

// PaymentFailed creates a 422 error for a payment declined by the gateway
// after session creation.
func PaymentFailed(message string) *AppError {
	return &AppError{
		Code:    "PAYMENT_FAILED",
		Message: message,
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrPaymentFailed,
	}
}

// ServiceUnavailable creates a 503 error.
func ServiceUnavailable(message string) *AppError {
	return &AppError{
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     ErrServiceUnavail,
	}
}

// Internal creates a 500 error for anything uncategorized.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrOutOfStock):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrGone), errors.Is(err, ErrSessionExpired):
		return http.StatusGone
	case errors.Is(err, ErrPaymentFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
