package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation: user input failed a precondition. State unchanged.
	ErrValidation = errors.New("validation failed")

	// ErrConstraintViolation: the item carries inconsistent quantity bounds
	// (min above max). The mutation is rejected, never clamped.
	ErrConstraintViolation = errors.New("quantity constraint violation")

	// ErrNotFound: the referenced id is absent. Idempotent operations treat
	// this as a no-op; loads surface it as a soft failure.
	ErrNotFound = errors.New("not found")

	// ErrPersistence: the durable store is unavailable or holds corrupt data.
	// In-memory state stays authoritative.
	ErrPersistence = errors.New("persistence failure")

	// ErrDecodeFailure: a shareable cart code is malformed or tampered.
	// Decoding fails closed and the active cart is untouched.
	ErrDecodeFailure = errors.New("shareable code decode failure")
)

// Coupon rejection reasons returned by the validation service.
const (
	CouponReasonExpired           = "expired"
	CouponReasonUsageLimitReached = "usage_limit_reached"
	CouponReasonMinPurchaseNotMet = "min_purchase_not_met"
	CouponReasonNotFound          = "not_found"
	CouponReasonInactive          = "inactive"
)

// CouponRejectedError carries the specific reason the validation service
// refused a code, so the user sees more than "something went wrong".
type CouponRejectedError struct {
	Code   string
	Reason string
}

func (e *CouponRejectedError) Error() string {
	return fmt.Sprintf("coupon %q rejected: %s", e.Code, e.Reason)
}
