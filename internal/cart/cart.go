// Package cart holds the in-memory cart state container: the item ledger,
// the quantity rules applied to every mutation, and the coupon metadata.
// It performs no I/O; the service layer hydrates a container from the
// repository, mutates it, and persists the result.
package cart

import (
	"strings"
	"time"

	"github.com/Iamabhih/storefront-cart/internal/domain"
	"github.com/shopspring/decimal"
)

// Cart is an explicitly constructed state container for one user session.
// It is not safe for concurrent use; each request works on its own instance.
type Cart struct {
	items []domain.CartItem
	meta  domain.CartMetadata
}

// New returns an empty container.
func New() *Cart {
	return &Cart{}
}

// FromDomain hydrates a container from a persisted cart. Quantities are
// re-clamped on the way in so corrupt stored state cannot violate the
// quantity invariant; lines whose bounds are inconsistent are kept as-is
// (they will reject further increments).
func FromDomain(c *domain.Cart) *Cart {
	out := &Cart{}
	if c == nil {
		return out
	}
	out.meta = c.Metadata
	for _, item := range c.Items {
		qty, remove, err := clampQuantity(item, item.Quantity)
		if err == nil && !remove {
			item.Quantity = qty
		}
		out.items = append(out.items, item)
	}
	return out
}

// Items returns a copy of the ledger.
func (c *Cart) Items() []domain.CartItem {
	return copyItems(c.items)
}

// Metadata returns the cart-level metadata.
func (c *Cart) Metadata() domain.CartMetadata {
	return c.meta
}

// Len returns the number of lines (not the summed quantity).
func (c *Cart) Len() int {
	return len(c.items)
}

// AddItem merges the incoming line into the ledger. An existing line with the
// same id, or the same product+variant identity, absorbs the incoming
// quantity (bounded by the line's maximum); otherwise a new line is appended
// with the item's minimum quantity as the floor. Duplicate adds are merge
// semantics, never an error.
func (c *Cart) AddItem(item domain.CartItem) (domain.CartItem, error) {
	if item.Quantity <= 0 {
		item.Quantity = item.MinQuantity
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	if idx := c.findMergeTarget(item); idx >= 0 {
		existing := c.items[idx]
		qty, _, err := clampQuantity(existing, existing.Quantity+item.Quantity)
		if err != nil {
			return domain.CartItem{}, err
		}
		c.items[idx].Quantity = qty
		return c.items[idx], nil
	}

	qty, remove, err := clampQuantity(item, item.Quantity)
	if err != nil {
		return domain.CartItem{}, err
	}
	if remove {
		// Unreachable given the floor above, kept for safety.
		return domain.CartItem{}, domain.ErrValidation
	}
	item.Quantity = qty
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	c.items = append(c.items, item)
	return item, nil
}

// RemoveItem drops the line entirely. Removing an absent id is a no-op; the
// return value reports whether anything changed.
func (c *Cart) RemoveItem(id string) bool {
	for i, item := range c.items {
		if item.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateQuantity sets an absolute quantity. A request of zero or less removes
// the line; anything else is clamped into the line's bounds.
func (c *Cart) UpdateQuantity(id string, quantity int) error {
	idx := c.find(id)
	if idx < 0 {
		return domain.ErrNotFound
	}
	qty, remove, err := clampQuantity(c.items[idx], quantity)
	if err != nil {
		return err
	}
	if remove {
		c.RemoveItem(id)
		return nil
	}
	c.items[idx].Quantity = qty
	return nil
}

// AdjustQuantity applies one increment (direction > 0) or decrement
// (direction < 0) using the line's step, which equals its minimum quantity
// for pack-size products. A decrement that lands at or below zero removes
// the line.
func (c *Cart) AdjustQuantity(id string, direction int) error {
	idx := c.find(id)
	if idx < 0 {
		return domain.ErrNotFound
	}
	item := c.items[idx]
	delta := step(item)
	if direction < 0 {
		delta = -delta
	}
	return c.UpdateQuantity(id, item.Quantity+delta)
}

// UpdateItemNotes overwrites the free-text note; an empty string clears it.
// Absent ids are a no-op.
func (c *Cart) UpdateItemNotes(id, text string) bool {
	idx := c.find(id)
	if idx < 0 {
		return false
	}
	c.items[idx].Notes = text
	return true
}

// Clear empties the ledger and resets metadata, dropping any active coupon.
func (c *Cart) Clear() {
	c.items = nil
	c.meta = domain.CartMetadata{}
}

// Replace swaps the whole ledger for the given items (used when restoring a
// saved cart or importing a shared one). The incoming items are value-copied
// and the coupon is dropped, since it was validated against the old contents.
func (c *Cart) Replace(items []domain.CartItem) {
	c.items = copyItems(items)
	c.meta = domain.CartMetadata{}
}

// ApplyCoupon records a validated coupon against the cart.
func (c *Cart) ApplyCoupon(code string, discount, minSubtotal decimal.Decimal) {
	c.meta = domain.CartMetadata{
		CouponCode:        code,
		CouponDiscount:    discount,
		CouponMinSubtotal: minSubtotal,
	}
}

// RemoveCoupon drops the active coupon, if any.
func (c *Cart) RemoveCoupon() bool {
	if !c.meta.HasCoupon() {
		return false
	}
	c.meta = domain.CartMetadata{}
	return true
}

// ReconcileCoupon drops the coupon when the subtotal has fallen under the
// coupon's recorded minimum purchase. The stale discount is invalidated
// optimistically; the user re-applies the code if it still qualifies.
func (c *Cart) ReconcileCoupon(subtotal decimal.Decimal) (dropped bool) {
	if !c.meta.HasCoupon() {
		return false
	}
	if c.meta.CouponMinSubtotal.IsPositive() && subtotal.LessThan(c.meta.CouponMinSubtotal) {
		c.meta = domain.CartMetadata{}
		return true
	}
	return false
}

// Snapshot returns a deep copy of the ledger for saved-cart archiving.
// Mutating the active cart afterwards never alters the snapshot.
func (c *Cart) Snapshot() []domain.CartItem {
	return copyItems(c.items)
}

// ToDomain writes the container state back onto a persisted cart document.
func (c *Cart) ToDomain(dst *domain.Cart) {
	dst.Items = copyItems(c.items)
	dst.Metadata = c.meta
}

func (c *Cart) find(id string) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// findMergeTarget matches by line id first, then by product+variant identity,
// so "add to cart" from a product page merges with an existing line even when
// the caller did not know the line id.
func (c *Cart) findMergeTarget(item domain.CartItem) int {
	for i, existing := range c.items {
		if item.ID != "" && existing.ID == item.ID {
			return i
		}
		if existing.ProductID == item.ProductID && existing.VariantID == item.VariantID {
			return i
		}
	}
	return -1
}

func copyItems(items []domain.CartItem) []domain.CartItem {
	if items == nil {
		return nil
	}
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}

// ValidSavedCartName trims and validates a user-supplied saved-cart name.
func ValidSavedCartName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", domain.ErrValidation
	}
	return trimmed, nil
}
