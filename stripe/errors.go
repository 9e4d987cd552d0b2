package stripe

import (
	"errors"
	"fmt"
)

// StripeError represents a Stripe-specific error
type StripeError struct {
	Code    string
	Message string
	Err     error
}

func (e *StripeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stripe error [%s]: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("stripe error [%s]: %s", e.Code, e.Message)
}

func (e *StripeError) Unwrap() error {
	return e.Err
}

// Is matches StripeErrors by code, so errors.Is(err, ErrWebhookValidation)
// holds for any webhook validation failure.
func (e *StripeError) Is(target error) bool {
	t, ok := target.(*StripeError)
	return ok && t.Code == e.Code
}

// Common Stripe errors
var (
	ErrInvalidEvent         = &StripeError{Code: "invalid_event", Message: "invalid webhook event"}
	ErrCompanyNotFound      = &StripeError{Code: "company_not_found", Message: "company not found"}
	ErrPackageNotFound      = &StripeError{Code: "package_not_found", Message: "survey package not found"}
	ErrInvalidConfiguration = &StripeError{Code: "invalid_configuration", Message: "invalid stripe configuration"}
	ErrAPICallFailed        = &StripeError{Code: "api_call_failed", Message: "stripe API call failed"}
	ErrWebhookValidation    = &StripeError{Code: "webhook_validation", Message: "webhook signature validation failed"}
)

// NewStripeError creates a new StripeError with the given code, message, and underlying error
func NewStripeError(code, message string, err error) *StripeError {
	return &StripeError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsRetryableError determines if an error, or any error it wraps, is a
// StripeError worth retrying.
func IsRetryableError(err error) bool {
	var stripeErr *StripeError
	if !errors.As(err, &stripeErr) {
		return false
	}
	switch stripeErr.Code {
	case "api_call_failed", "rate_limit_error", "temporary_error":
		return true
	default:
		return false
	}
}
