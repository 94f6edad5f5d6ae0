// Package catalog is the boundary to the product catalog. The cart core uses
// it to price additions and to re-price shared or restored carts; embedded
// prices are never trusted.
package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ProductID      string          `json:"product_id"`
	VariantID      string          `json:"variant_id,omitempty"`
	Name           string          `json:"name"`
	VariantName    string          `json:"variant_name,omitempty"`
	SKU            string          `json:"sku,omitempty"`
	Price          decimal.Decimal `json:"price"`
	CompareAtPrice decimal.Decimal `json:"compare_at_price,omitempty"`
	MinQuantity    int             `json:"min_quantity"`
	MaxQuantity    int             `json:"max_quantity,omitempty"`
	Stock          int             `json:"stock"`
	ImageURL       string          `json:"image_url,omitempty"`
}

// Client looks up live product data. Consumers define this interface; the
// HTTP implementation lives alongside it.
type Client interface {
	GetProduct(ctx context.Context, productID, variantID string) (*Product, error)
}
