package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line of the active cart ledger. ID identifies the line and
// stays stable across renames; for simple products it may equal ProductID.
type CartItem struct {
	ID             string          `bson:"id" json:"id"`
	ProductID      string          `bson:"product_id" json:"product_id"`
	VariantID      string          `bson:"variant_id,omitempty" json:"variant_id,omitempty"`
	Name           string          `bson:"name" json:"name"`
	VariantName    string          `bson:"variant_name,omitempty" json:"variant_name,omitempty"`
	SKU            string          `bson:"sku,omitempty" json:"sku,omitempty"`
	Price          decimal.Decimal `bson:"price" json:"price"`
	CompareAtPrice decimal.Decimal `bson:"compare_at_price,omitempty" json:"compare_at_price,omitempty"`
	Quantity       int             `bson:"quantity" json:"quantity"`
	MinQuantity    int             `bson:"min_quantity" json:"min_quantity"`
	MaxQuantity    int             `bson:"max_quantity,omitempty" json:"max_quantity,omitempty"` // 0 = unbounded
	ImageURL       string          `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Notes          string          `bson:"notes,omitempty" json:"notes,omitempty"`
	AddedAt        time.Time       `bson:"added_at" json:"added_at"`
}

// Savings is the per-unit discount against the compare-at price, zero when the
// item is not marked down.
func (i CartItem) Savings() decimal.Decimal {
	if i.CompareAtPrice.GreaterThan(i.Price) {
		return i.CompareAtPrice.Sub(i.Price)
	}
	return decimal.Zero
}

// CartMetadata carries cart-level state that is not a line item. A zero value
// means no coupon is active. CouponMinSubtotal records the minimum purchase
// the validator reported so the coupon can be dropped when the subtotal falls
// under it.
type CartMetadata struct {
	CouponCode        string          `bson:"coupon_code,omitempty" json:"coupon_code,omitempty"`
	CouponDiscount    decimal.Decimal `bson:"coupon_discount,omitempty" json:"coupon_discount,omitempty"`
	CouponMinSubtotal decimal.Decimal `bson:"coupon_min_subtotal,omitempty" json:"coupon_min_subtotal,omitempty"`
}

// HasCoupon reports whether a coupon is currently applied.
func (m CartMetadata) HasCoupon() bool {
	return m.CouponCode != ""
}

type Cart struct {
	ID        string       `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string       `bson:"user_id" json:"user_id"`
	Items     []CartItem   `bson:"items" json:"items"`
	Metadata  CartMetadata `bson:"metadata" json:"metadata"`
	CreatedAt time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time    `bson:"updated_at" json:"updated_at"`
}

// SavedCart is a named snapshot of a ledger. Items are value copies taken at
// save time; later catalog or active-cart changes never touch them.
type SavedCart struct {
	ID        string     `bson:"_id" json:"id"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Name      string     `bson:"name" json:"name"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

// CheckoutSnapshot is the read-only handoff consumed by the checkout flow.
type CheckoutSnapshot struct {
	Items      []CartItem      `json:"items"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	CouponCode string          `json:"coupon_code,omitempty"`
}
