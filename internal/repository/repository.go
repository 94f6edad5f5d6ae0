package repository

import (
	"context"

	"github.com/Iamabhih/storefront-cart/internal/domain"
)

// CartRepository defines the interface for active-cart persistence.
// Consumers define this interface, not the MongoDB implementation.
//
// Writes are full-state upserts: the service layer recomputes the whole cart
// in memory and mirrors it through on every mutation, so the store never
// holds a partially-applied change.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

// SavedCartRepository persists named snapshots independently of the active
// cart's lifecycle.
type SavedCartRepository interface {
	Insert(ctx context.Context, saved *domain.SavedCart) error
	List(ctx context.Context, userID string) ([]domain.SavedCart, error)
	Get(ctx context.Context, userID, id string) (*domain.SavedCart, error)
	Delete(ctx context.Context, userID, id string) error
}
