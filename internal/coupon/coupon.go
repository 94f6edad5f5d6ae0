// Package coupon is the boundary to the coupon validation service. Business
// rules (expiry, usage limits, minimum purchase) live in that service; the
// cart core only clamps and records what it returns.
package coupon

import (
	"context"

	"github.com/shopspring/decimal"
)

// Result is the validation service's verdict on a code. When Valid is false,
// Reason holds one of the domain.CouponReason* values.
type Result struct {
	Valid       bool            `json:"valid"`
	Discount    decimal.Decimal `json:"discount"`
	MinSubtotal decimal.Decimal `json:"min_subtotal,omitempty"`
	Reason      string          `json:"reason,omitempty"`
}

// Validator asks the external service whether a code applies to the given
// subtotal and customer.
type Validator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal, userID string) (*Result, error)
}
