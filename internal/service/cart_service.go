package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Iamabhih/storefront-cart/internal/cache"
	"github.com/Iamabhih/storefront-cart/internal/cart"
	"github.com/Iamabhih/storefront-cart/internal/catalog"
	"github.com/Iamabhih/storefront-cart/internal/coupon"
	"github.com/Iamabhih/storefront-cart/internal/domain"
	"github.com/Iamabhih/storefront-cart/internal/events"
	"github.com/Iamabhih/storefront-cart/internal/pricing"
	"github.com/Iamabhih/storefront-cart/internal/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// ErrSuperseded marks a coupon validation whose response arrived after a
// newer apply request was issued for the same user. The stale result is
// discarded without touching the cart.
var ErrSuperseded = errors.New("coupon request superseded")

// CartView pairs a cart with its derived totals. Totals are recomputed from
// scratch on every read and after every mutation.
type CartView struct {
	Cart   domain.Cart    `json:"cart"`
	Totals pricing.Totals `json:"totals"`
}

type CartService struct {
	repo      repository.CartRepository
	saved     repository.SavedCartRepository
	cache     cache.CartCache
	catalog   catalog.Client
	validator coupon.Validator
	emitter   events.Emitter
	threshold decimal.Decimal
	sfg       singleflight.Group // Prevents cache stampede

	couponMu  sync.Mutex
	couponSeq map[string]uint64
}

func NewCartService(
	repo repository.CartRepository,
	saved repository.SavedCartRepository,
	cartCache cache.CartCache,
	catalogClient catalog.Client,
	validator coupon.Validator,
	emitter events.Emitter,
	freeShippingThreshold decimal.Decimal,
) *CartService {
	if !freeShippingThreshold.IsPositive() {
		freeShippingThreshold = pricing.DefaultFreeShippingThreshold
	}
	return &CartService{
		repo:      repo,
		saved:     saved,
		cache:     cartCache,
		catalog:   catalogClient,
		validator: validator,
		emitter:   emitter,
		threshold: freeShippingThreshold,
		couponSeq: make(map[string]uint64),
	}
}

// GetCart reads through the cache. Absent or unreadable state falls open to
// an empty cart: the storefront must never fail to render because the cart
// store had a bad day.
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		c, errCache := s.cache.Get(ctx, userID)
		if errCache == nil {
			return c, nil
		}
		if !errors.Is(errCache, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", errCache) // log cache error but continue
		}

		c, errGet := s.repo.GetCart(ctx, userID)
		if errGet != nil {
			if !errors.Is(errGet, repository.ErrCartNotFound) {
				log.Printf("cart load failed for user %s, serving empty cart: %v", userID, errGet)
			}
			return emptyCart(userID), nil
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if errSet := s.cache.Set(setCtx, userID, c); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return c, nil
	})
	if err != nil {
		return nil, err
	}

	return s.view(v.(*domain.Cart)), nil
}

// AddItem prices the product against the live catalog and merges it into the
// ledger. Adding a product already in the cart increases its quantity.
func (s *CartService) AddItem(ctx context.Context, userID, productID, variantID string, quantity int, notes string) (*CartView, error) {
	product, err := s.catalog.GetProduct(ctx, productID, variantID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	dcart, container := s.loadForMutation(ctx, userID)

	item := lineFromProduct(product, quantity, notes)
	added, err := container.AddItem(item)
	if err != nil {
		return nil, err
	}

	view, err := s.persist(ctx, dcart, container)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.New(events.TypeItemAdded, userID, added.Name+" added to cart", map[string]any{
		"line_id":  added.ID,
		"quantity": added.Quantity,
	}))
	return view, nil
}

// UpdateQuantity sets an absolute quantity; zero or less removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) (*CartView, error) {
	return s.mutateLine(ctx, userID, lineID, func(c *cart.Cart) error {
		return c.UpdateQuantity(lineID, quantity)
	})
}

// AdjustQuantity applies one step up or down. The step equals the line's
// minimum quantity, so a pack-of-six decrements straight to removal.
func (s *CartService) AdjustQuantity(ctx context.Context, userID, lineID string, direction int) (*CartView, error) {
	return s.mutateLine(ctx, userID, lineID, func(c *cart.Cart) error {
		return c.AdjustQuantity(lineID, direction)
	})
}

func (s *CartService) mutateLine(ctx context.Context, userID, lineID string, mutate func(*cart.Cart) error) (*CartView, error) {
	dcart, container := s.loadForMutation(ctx, userID)

	hadLine := containsLine(container.Items(), lineID)
	if err := mutate(container); err != nil {
		return nil, err
	}

	subtotal := pricing.Calculate(container.Items(), container.Metadata(), s.threshold).Subtotal
	couponDropped := container.ReconcileCoupon(subtotal)

	view, err := s.persist(ctx, dcart, container)
	if err != nil {
		return nil, err
	}

	removed := hadLine && !containsLine(container.Items(), lineID)
	switch {
	case removed:
		s.emitter.Emit(ctx, events.New(events.TypeItemRemoved, userID, "item removed from cart", map[string]any{"line_id": lineID}))
	default:
		s.emitter.Emit(ctx, events.New(events.TypeQuantityUpdated, userID, "cart updated", map[string]any{"line_id": lineID}))
	}
	if couponDropped {
		s.emitter.Emit(ctx, events.New(events.TypeCouponRemoved, userID, "coupon no longer meets its minimum purchase, please re-apply", nil))
	}
	return view, nil
}

// RemoveItem drops a line; removing an absent line is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, userID, lineID string) (*CartView, error) {
	dcart, container := s.loadForMutation(ctx, userID)

	if !container.RemoveItem(lineID) {
		return s.view(dcart), nil
	}

	subtotal := pricing.Calculate(container.Items(), container.Metadata(), s.threshold).Subtotal
	couponDropped := container.ReconcileCoupon(subtotal)

	view, err := s.persist(ctx, dcart, container)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.New(events.TypeItemRemoved, userID, "item removed from cart", map[string]any{"line_id": lineID}))
	if couponDropped {
		s.emitter.Emit(ctx, events.New(events.TypeCouponRemoved, userID, "coupon no longer meets its minimum purchase, please re-apply", nil))
	}
	return view, nil
}

// UpdateItemNotes overwrites a line's free-text note.
func (s *CartService) UpdateItemNotes(ctx context.Context, userID, lineID, notes string) (*CartView, error) {
	dcart, container := s.loadForMutation(ctx, userID)

	if !container.UpdateItemNotes(lineID, notes) {
		return s.view(dcart), nil
	}

	return s.persist(ctx, dcart, container)
}

// ClearCart empties the ledger and drops the coupon.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	errDelete := s.repo.DeleteCart(ctx, userID)
	if errDelete != nil && !errors.Is(errDelete, repository.ErrCartNotFound) {
		log.Printf("repo delete cart error: %v", errDelete)
		return domain.ErrPersistence
	}

	s.invalidateCache(userID)
	s.emitter.Emit(ctx, events.New(events.TypeCartCleared, userID, "cart cleared", nil))
	return nil
}

func (s *CartService) loadForMutation(ctx context.Context, userID string) (*domain.Cart, *cart.Cart) {
	dcart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrCartNotFound) {
			// The in-memory mutation proceeds against an empty cart; losing
			// the stored state is logged, never silent.
			log.Printf("cart load failed for user %s, mutating from empty: %v", userID, err)
		}
		dcart = emptyCart(userID)
	}
	return dcart, cart.FromDomain(dcart)
}

func (s *CartService) persist(ctx context.Context, dcart *domain.Cart, container *cart.Cart) (*CartView, error) {
	container.ToDomain(dcart)

	if err := s.repo.UpsertCart(ctx, dcart); err != nil {
		log.Printf("repo upsert cart error: %v", err)
		return nil, domain.ErrPersistence
	}

	s.invalidateCache(dcart.UserID)
	return s.view(dcart), nil
}

func (s *CartService) view(dcart *domain.Cart) *CartView {
	return &CartView{
		Cart:   *dcart,
		Totals: pricing.Calculate(dcart.Items, dcart.Metadata, s.threshold),
	}
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}

func emptyCart(userID string) *domain.Cart {
	now := time.Now()
	return &domain.Cart{
		UserID:    userID,
		Items:     nil,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func containsLine(items []domain.CartItem, lineID string) bool {
	for _, item := range items {
		if item.ID == lineID {
			return true
		}
	}
	return false
}

func lineFromProduct(p *catalog.Product, quantity int, notes string) domain.CartItem {
	id := p.ProductID
	if p.VariantID != "" {
		id = p.ProductID + ":" + p.VariantID
	}
	return domain.CartItem{
		ID:             id,
		ProductID:      p.ProductID,
		VariantID:      p.VariantID,
		Name:           p.Name,
		VariantName:    p.VariantName,
		SKU:            p.SKU,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Quantity:       quantity,
		MinQuantity:    p.MinQuantity,
		MaxQuantity:    p.MaxQuantity,
		ImageURL:       p.ImageURL,
		Notes:          notes,
		AddedAt:        time.Now(),
	}
}
