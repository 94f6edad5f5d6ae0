package service

import (
	"context"
	"errors"
	"log"

	"github.com/Iamabhih/storefront-cart/internal/cart"
	"github.com/Iamabhih/storefront-cart/internal/catalog"
	"github.com/Iamabhih/storefront-cart/internal/domain"
	"github.com/Iamabhih/storefront-cart/internal/events"
	"github.com/Iamabhih/storefront-cart/internal/share"
)

// ShareCode encodes the active ledger into a URL-safe code carrying item
// identities and quantities only.
func (s *CartService) ShareCode(ctx context.Context, userID string) (string, error) {
	_, container := s.loadForMutation(ctx, userID)
	if container.Len() == 0 {
		return "", domain.ErrValidation
	}
	return share.Encode(container.Items())
}

// ImportShared decodes a shared cart code and replaces the active ledger
// with its contents, priced from the live catalog. A malformed code fails
// closed: the active cart is untouched. Products that no longer exist are
// skipped, not errors, so a shared link survives a catalog cleanup.
func (s *CartService) ImportShared(ctx context.Context, userID, code string) (*CartView, error) {
	lines, err := share.Decode(code)
	if err != nil {
		return nil, err
	}

	hydrated := cart.New()
	for _, line := range lines {
		product, errGet := s.catalog.GetProduct(ctx, line.ProductID, line.VariantID)
		if errGet != nil {
			if errors.Is(errGet, catalog.ErrProductNotFound) {
				log.Printf("shared cart references unknown product %s, skipping", line.ProductID)
				continue
			}
			return nil, errGet
		}
		if _, errAdd := hydrated.AddItem(lineFromProduct(product, line.Quantity, "")); errAdd != nil {
			log.Printf("shared cart line %s rejected: %v", line.ProductID, errAdd)
		}
	}

	dcart, container := s.loadForMutation(ctx, userID)
	container.Replace(hydrated.Items())

	view, err := s.persist(ctx, dcart, container)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.New(events.TypeShareImported, userID, "shared cart loaded", map[string]any{"lines": len(view.Cart.Items)}))
	return view, nil
}

// repriceItems refreshes prices and quantity bounds from the live catalog,
// dropping items whose products have vanished. Stored prices are display
// history, never a source of truth.
func (s *CartService) repriceItems(ctx context.Context, items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		product, err := s.catalog.GetProduct(ctx, item.ProductID, item.VariantID)
		if err != nil {
			log.Printf("reprice skipped item %s: %v", item.ID, err)
			continue
		}
		fresh := lineFromProduct(product, item.Quantity, item.Notes)
		fresh.AddedAt = item.AddedAt
		out = append(out, fresh)
	}
	return out
}

// CheckoutSnapshot is the read-only handoff to the checkout flow. The cart
// core's responsibility ends here; the checkout-completed event drains the
// cart afterwards.
func (s *CartService) CheckoutSnapshot(ctx context.Context, userID string) (*domain.CheckoutSnapshot, error) {
	view, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.CheckoutSnapshot{
		Items:      view.Cart.Items,
		GrandTotal: view.Totals.GrandTotal,
		CouponCode: view.Cart.Metadata.CouponCode,
	}, nil
}
