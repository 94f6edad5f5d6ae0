package service

import (
	"context"
	"errors"
	"time"

	"github.com/Iamabhih/storefront-cart/internal/cart"
	"github.com/Iamabhih/storefront-cart/internal/domain"
	"github.com/Iamabhih/storefront-cart/internal/events"
	"github.com/Iamabhih/storefront-cart/internal/repository"
	"github.com/google/uuid"
)

// SaveForLater snapshots the current ledger under a user-supplied name.
// Items are value-copied: later mutation of the active cart never touches
// the snapshot.
func (s *CartService) SaveForLater(ctx context.Context, userID, name string) (*domain.SavedCart, error) {
	trimmed, err := cart.ValidSavedCartName(name)
	if err != nil {
		return nil, err
	}

	_, container := s.loadForMutation(ctx, userID)
	if container.Len() == 0 {
		return nil, domain.ErrValidation
	}

	saved := &domain.SavedCart{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      trimmed,
		Items:     container.Snapshot(),
		CreatedAt: time.Now(),
	}

	if errInsert := s.saved.Insert(ctx, saved); errInsert != nil {
		return nil, errInsert
	}

	s.emitter.Emit(ctx, events.New(events.TypeCartSaved, userID, "cart saved as "+trimmed, map[string]any{"saved_cart_id": saved.ID}))
	return saved, nil
}

// ListSavedCarts returns the user's snapshots, newest first.
func (s *CartService) ListSavedCarts(ctx context.Context, userID string) ([]domain.SavedCart, error) {
	return s.saved.List(ctx, userID)
}

// LoadSavedCart replaces the active ledger with the snapshot's items,
// re-priced against the live catalog. The coupon is dropped with the old
// contents. Replace, not merge: restoring a cart means getting exactly that
// cart back.
func (s *CartService) LoadSavedCart(ctx context.Context, userID, id string) (*CartView, error) {
	saved, err := s.saved.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrSavedCartNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	items := s.repriceItems(ctx, saved.Items)

	dcart, container := s.loadForMutation(ctx, userID)
	container.Replace(items)

	view, err := s.persist(ctx, dcart, container)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.New(events.TypeCartRestored, userID, "saved cart "+saved.Name+" restored", map[string]any{"saved_cart_id": saved.ID}))
	return view, nil
}

// DeleteSavedCart removes the snapshot permanently. Idempotent.
func (s *CartService) DeleteSavedCart(ctx context.Context, userID, id string) error {
	return s.saved.Delete(ctx, userID, id)
}
