package service

import (
	"context"
	"sync"

	"github.com/Iamabhih/storefront-cart/internal/cache"
	"github.com/Iamabhih/storefront-cart/internal/catalog"
	"github.com/Iamabhih/storefront-cart/internal/coupon"
	"github.com/Iamabhih/storefront-cart/internal/domain"
	"github.com/Iamabhih/storefront-cart/internal/repository"
	"github.com/shopspring/decimal"
)

type mockRepository struct {
	m     sync.RWMutex
	carts map[string]*domain.Cart
	err   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{carts: make(map[string]*domain.Cart)}
}

func (m *mockRepository) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *mockRepository) UpsertCart(_ context.Context, c *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	clone := *c
	m.carts[c.UserID] = &clone
	return nil
}

func (m *mockRepository) DeleteCart(_ context.Context, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.carts[userID]; !ok {
		return repository.ErrCartNotFound
	}
	delete(m.carts, userID)
	return nil
}

type mockSavedRepository struct {
	m     sync.RWMutex
	saved map[string]*domain.SavedCart
	err   error
}

func newMockSavedRepository() *mockSavedRepository {
	return &mockSavedRepository{saved: make(map[string]*domain.SavedCart)}
}

func (m *mockSavedRepository) Insert(_ context.Context, s *domain.SavedCart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	clone := *s
	m.saved[s.ID] = &clone
	return nil
}

func (m *mockSavedRepository) List(_ context.Context, userID string) ([]domain.SavedCart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.SavedCart
	for _, s := range m.saved {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockSavedRepository) Get(_ context.Context, userID, id string) (*domain.SavedCart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.saved[id]
	if !ok || s.UserID != userID {
		return nil, repository.ErrSavedCartNotFound
	}
	clone := *s
	return &clone, nil
}

func (m *mockSavedRepository) Delete(_ context.Context, userID, id string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if s, ok := m.saved[id]; ok && s.UserID == userID {
		delete(m.saved, id)
	}
	return nil
}

type mockCache struct {
	m     sync.RWMutex
	carts map[string]*domain.Cart
	err   error
}

func newMockCache() *mockCache {
	return &mockCache{carts: make(map[string]*domain.Cart)}
}

func (m *mockCache) Get(_ context.Context, userID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return c, nil
}

func (m *mockCache) Set(_ context.Context, userID string, c *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.carts[userID] = c
	return m.err
}

func (m *mockCache) Delete(_ context.Context, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.carts, userID)
	return m.err
}

func (m *mockCache) getCart(userID string) *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.carts[userID]
}

type mockCatalog struct {
	m        sync.RWMutex
	products map[string]*catalog.Product
	err      error
}

func newMockCatalog(products ...*catalog.Product) *mockCatalog {
	m := &mockCatalog{products: make(map[string]*catalog.Product)}
	for _, p := range products {
		m.products[p.ProductID+":"+p.VariantID] = p
	}
	return m
}

func (m *mockCatalog) GetProduct(_ context.Context, productID, variantID string) (*catalog.Product, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[productID+":"+variantID]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

type mockValidator struct {
	m      sync.Mutex
	result *coupon.Result
	err    error

	// gate, when set, blocks Validate until released. Lets tests hold one
	// validation in flight while a newer one completes. entered is signalled
	// when a gated call has started.
	gate    chan struct{}
	entered chan struct{}

	lastSubtotal decimal.Decimal
}

func (m *mockValidator) Validate(_ context.Context, _ string, subtotal decimal.Decimal, _ string) (*coupon.Result, error) {
	m.m.Lock()
	gate := m.gate
	entered := m.entered
	m.lastSubtotal = subtotal
	result, err := m.result, m.err
	m.m.Unlock()

	if gate != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
