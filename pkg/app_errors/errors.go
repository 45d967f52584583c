package apperrors

import (
	"errors"
	"fmt"
)

var (
	// configuration
	ErrConfiguration      = errors.New("configuration error")
	ErrStoreNotConfigured = fmt.Errorf("%w: store not initialized", ErrConfiguration)

	// caller
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrSelfRoleChange = errors.New("cannot change own role")
	ErrInvalidInput   = errors.New("invalid input")

	// store
	ErrConnectivity = errors.New("store unreachable")

	// not found
	ErrTitleNotFound    = errors.New("title not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrRightNotFound    = errors.New("right not found")
	ErrProposalNotFound = errors.New("proposal not found")

	// conflicts
	ErrTitleNotAvailable       = errors.New("title not available for purchase")
	ErrTitleSoldOut            = errors.New("title sold out")
	ErrTitleInUse              = errors.New("title has rights and cannot be deleted")
	ErrPriceMismatch           = errors.New("price mismatch")
	ErrProposalAlreadyReviewed = errors.New("proposal already reviewed")
	ErrLimitBelowPurchased     = errors.New("purchasable limit below purchased count")
	ErrProposalNotApproved     = errors.New("proposal not approved")

	// payment events
	ErrSignatureInvalid      = errors.New("invalid signature")
	ErrMalformedPaymentEvent = errors.New("malformed payment event")
	ErrAlreadyGranted        = errors.New("right already granted for payment")
	ErrEventInProgress       = errors.New("payment event is being processed")

	ErrInternalServerError = errors.New("internal server error")
)

// UpstreamError carries the payment processor's rejection details.
type UpstreamError struct {
	StatusCode int
	Code       string
	Type       string
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upstream error (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("upstream error: %s", e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsNonRetryablePaymentOutcome reports whether a payment event finished
// without side effects that a redelivery could change.
func IsNonRetryablePaymentOutcome(err error) bool {
	return errors.Is(err, ErrMalformedPaymentEvent) ||
		errors.Is(err, ErrAlreadyGranted) ||
		errors.Is(err, ErrTitleNotFound)
}
