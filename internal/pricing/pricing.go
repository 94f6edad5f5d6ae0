package pricing

import (
	"github.com/Iamabhih/storefront-cart/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultFreeShippingThreshold is used when no threshold is configured.
var DefaultFreeShippingThreshold = decimal.NewFromInt(500)

// Totals are the derived figures for a ledger plus metadata. All currency
// fields accumulate at full decimal precision; rounding to two places is a
// presentation concern.
type Totals struct {
	Subtotal             decimal.Decimal `json:"subtotal"`
	TotalSavings         decimal.Decimal `json:"total_savings"`
	TotalItems           int             `json:"total_items"`
	CouponDiscount       decimal.Decimal `json:"coupon_discount"`
	GrandTotal           decimal.Decimal `json:"grand_total"`
	ShippingProgress     float64         `json:"shipping_progress"`
	AmountToFreeShipping decimal.Decimal `json:"amount_to_free_shipping"`
}

// Calculate recomputes totals from scratch. It is a pure function of the
// ledger and metadata so every mutation can call it without ordering concerns.
//
// The coupon discount is clamped to [0, subtotal]: a discount never exceeds
// the amount it is applied against, and the grand total never goes negative.
func Calculate(items []domain.CartItem, meta domain.CartMetadata, freeShippingThreshold decimal.Decimal) Totals {
	t := Totals{
		Subtotal:       decimal.Zero,
		TotalSavings:   decimal.Zero,
		CouponDiscount: decimal.Zero,
	}

	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		t.Subtotal = t.Subtotal.Add(item.Price.Mul(qty))
		t.TotalSavings = t.TotalSavings.Add(item.Savings().Mul(qty))
		t.TotalItems += item.Quantity
	}

	discount := meta.CouponDiscount
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(t.Subtotal) {
		discount = t.Subtotal
	}
	t.CouponDiscount = discount
	t.GrandTotal = t.Subtotal.Sub(discount)
	if t.GrandTotal.IsNegative() {
		t.GrandTotal = decimal.Zero
	}

	if freeShippingThreshold.IsPositive() {
		remaining := freeShippingThreshold.Sub(t.Subtotal)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		t.AmountToFreeShipping = remaining

		progress, _ := t.Subtotal.Div(freeShippingThreshold).Mul(decimal.NewFromInt(100)).Float64()
		if progress > 100 {
			progress = 100
		}
		t.ShippingProgress = progress
	} else {
		t.AmountToFreeShipping = decimal.Zero
		t.ShippingProgress = 100
	}

	return t
}
