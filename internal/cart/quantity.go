package cart

import (
	"github.com/Iamabhih/storefront-cart/internal/domain"
)

// clampQuantity applies the quantity rules to a requested absolute quantity:
//
//  1. a request of zero or less is removal intent (reported via remove=true),
//  2. below the minimum clamps up to the minimum,
//  3. above the maximum (when set) clamps down to the maximum.
//
// An item whose minimum exceeds its maximum is upstream data corruption; the
// request is rejected with ErrConstraintViolation instead of oscillating
// between the two bounds.
func clampQuantity(item domain.CartItem, requested int) (qty int, remove bool, err error) {
	min := item.MinQuantity
	if min < 1 {
		min = 1
	}
	max := item.MaxQuantity

	if max > 0 && min > max {
		return 0, false, domain.ErrConstraintViolation
	}

	if requested <= 0 {
		return 0, true, nil
	}
	if requested < min {
		return min, false, nil
	}
	if max > 0 && requested > max {
		return max, false, nil
	}
	return requested, false, nil
}

// step is the quantity delta used by increment/decrement. Pack-size products
// (min order 6, sold in sixes) step by their minimum, everything else by 1.
func step(item domain.CartItem) int {
	if item.MinQuantity > 1 {
		return item.MinQuantity
	}
	return 1
}

// AtMaxQuantity reports whether further increments should be disabled.
func AtMaxQuantity(item domain.CartItem) bool {
	return item.MaxQuantity > 0 && item.Quantity >= item.MaxQuantity
}
