package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Iamabhih/storefront-cart/internal/catalog"
	"github.com/Iamabhih/storefront-cart/internal/domain"
	"github.com/Iamabhih/storefront-cart/internal/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fixture struct {
	repo      *mockRepository
	saved     *mockSavedRepository
	cache     *mockCache
	catalog   *mockCatalog
	validator *mockValidator
	emitter   *events.MemoryEmitter
	sut       *CartService
}

func newFixture(products ...*catalog.Product) *fixture {
	f := &fixture{
		repo:      newMockRepository(),
		saved:     newMockSavedRepository(),
		cache:     newMockCache(),
		catalog:   newMockCatalog(products...),
		validator: &mockValidator{},
		emitter:   &events.MemoryEmitter{},
	}
	f.sut = NewCartService(f.repo, f.saved, f.cache, f.catalog, f.validator, f.emitter, dec(500))
	return f
}

func product(id string, price int64) *catalog.Product {
	return &catalog.Product{
		ProductID:   id,
		Name:        "product " + id,
		Price:       dec(price),
		MinQuantity: 1,
		Stock:       100,
	}
}

func eventTypes(e *events.MemoryEmitter) []events.Type {
	var out []events.Type
	for _, ev := range e.Events() {
		out = append(out, ev.Type)
	}
	return out
}

func TestGetCart_EmptyForNewUser(t *testing.T) {
	f := newFixture()

	view, err := f.sut.GetCart(context.Background(), "123")
	require.NoError(t, err)
	assert.Empty(t, view.Cart.Items)
	assert.True(t, view.Totals.GrandTotal.IsZero())
}

func TestGetCart_FailsOpenOnRepoError(t *testing.T) {
	f := newFixture()
	f.repo.err = fmt.Errorf("mongo is down")

	view, err := f.sut.GetCart(context.Background(), "123")
	require.NoError(t, err)
	assert.Empty(t, view.Cart.Items)
}

func TestGetCart_PopulatesCacheFromRepo(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.repo.UpsertCart(context.Background(), &domain.Cart{
		UserID: "123",
		Items:  []domain.CartItem{{ID: "p1", ProductID: "p1", Price: dec(10), Quantity: 1, MinQuantity: 1}},
	}))

	view, err := f.sut.GetCart(context.Background(), "123")
	require.NoError(t, err)
	require.Len(t, view.Cart.Items, 1)

	require.Eventually(t, func() bool {
		return f.cache.getCart("123") != nil
	}, 100*time.Millisecond, 10*time.Millisecond, "cache was not populated")
}

func TestAddItem_PricesFromCatalog(t *testing.T) {
	f := newFixture(product("p1", 100))

	view, err := f.sut.AddItem(context.Background(), "123", "p1", "", 2, "")
	require.NoError(t, err)
	require.Len(t, view.Cart.Items, 1)
	assert.Equal(t, 2, view.Cart.Items[0].Quantity)
	assert.True(t, view.Totals.Subtotal.Equal(dec(200)))
	assert.Equal(t, []events.Type{events.TypeItemAdded}, eventTypes(f.emitter))
}

func TestAddItem_MergeGrowsQuantityAndSubtotal(t *testing.T) {
	f := newFixture(product("p1", 100))
	ctx := context.Background()

	_, err := f.sut.AddItem(ctx, "123", "p1", "", 1, "")
	require.NoError(t, err)

	view, err := f.sut.AddItem(ctx, "123", "p1", "", 2, "")
	require.NoError(t, err)

	require.Len(t, view.Cart.Items, 1)
	assert.Equal(t, 3, view.Cart.Items[0].Quantity)
	assert.True(t, view.Totals.Subtotal.Equal(dec(300)), "subtotal = %s", view.Totals.Subtotal)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	f := newFixture()

	_, err := f.sut.AddItem(context.Background(), "123", "ghost", "", 1, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddItem_InvalidatesCache(t *testing.T) {
	f := newFixture(product("p1", 100))
	require.NoError(t, f.cache.Set(context.Background(), "123", &domain.Cart{UserID: "123"}))

	_, err := f.sut.AddItem(context.Background(), "123", "p1", "", 1, "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return f.cache.getCart("123") == nil
	}, 100*time.Millisecond, 10*time.Millisecond, "cache was not invalidated")
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	f := newFixture(product("p1", 100))
	ctx := context.Background()

	_, err := f.sut.AddItem(ctx, "123", "p1", "", 2, "")
	require.NoError(t, err)

	view, err := f.sut.UpdateQuantity(ctx, "123", "p1", 0)
	require.NoError(t, err)
	assert.Empty(t, view.Cart.Items)
	assert.Contains(t, eventTypes(f.emitter), events.TypeItemRemoved)
}

func TestUpdateQuantity_PersistsThrough(t *testing.T) {
	f := newFixture(product("p1", 100))
	ctx := context.Background()

	_, err := f.sut.AddItem(ctx, "123", "p1", "", 1, "")
	require.NoError(t, err)

	_, err = f.sut.UpdateQuantity(ctx, "123", "p1", 5)
	require.NoError(t, err)

	stored, err := f.repo.GetCart(ctx, "123")
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 5, stored.Items[0].Quantity)
}

func TestUpdateQuantity_RepoErrorSurfacesAsPersistence(t *testing.T) {
	f := newFixture(product("p1", 100))
	ctx := context.Background()

	_, err := f.sut.AddItem(ctx, "123", "p1", "", 1, "")
	require.NoError(t, err)

	f.repo.err = fmt.Errorf("database error")
	_, err = f.sut.UpdateQuantity(ctx, "123", "p1", 5)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestRemoveItem_IdempotentAcrossCalls(t *testing.T) {
	f := newFixture(product("p1", 100))
	ctx := context.Background()

	_, err := f.sut.AddItem(ctx, "123", "p1", "", 1, "")
	require.NoError(t, err)

	first, err := f.sut.RemoveItem(ctx, "123", "p1")
	require.NoError(t, err)
	second, err := f.sut.RemoveItem(ctx, "123", "p1")
	require.NoError(t, err)

	assert.Empty(t, first.Cart.Items)
	assert.Empty(t, second.Cart.Items)
}

func TestAdjustQuantity_PackProductDecrementRemoves(t *testing.T) {
	pack := product("p6", 60)
	pack.MinQuantity = 6
	f := newFixture(pack)
	ctx := context.Background()

	view, err := f.sut.AddItem(ctx, "123", "p6", "", 0, "")
	require.NoError(t, err)
	require.Equal(t, 6, view.Cart.Items[0].Quantity)

	view, err = f.sut.AdjustQuantity(ctx, "123", "p6", -1)
	require.NoError(t, err)
	assert.Empty(t, view.Cart.Items)
}

func TestClearCart_DrainsStoreAndCache(t *testing.T) {
	f := newFixture(product("p1", 100))
	ctx := context.Background()

	_, err := f.sut.AddItem(ctx, "123", "p1", "", 1, "")
	require.NoError(t, err)

	require.NoError(t, f.sut.ClearCart(ctx, "123"))

	view, err := f.sut.GetCart(ctx, "123")
	require.NoError(t, err)
	assert.Empty(t, view.Cart.Items)
	assert.Contains(t, eventTypes(f.emitter), events.TypeCartCleared)
}

func TestClearCart_NoCartIsFine(t *testing.T) {
	f := newFixture()
	assert.NoError(t, f.sut.ClearCart(context.Background(), "123"))
}

func TestClearCart_StoreFailureMapsToPersistenceError(t *testing.T) {
	f := newFixture(product("p1", 100))
	ctx := context.Background()

	_, err := f.sut.AddItem(ctx, "123", "p1", "", 1, "")
	require.NoError(t, err)

	f.repo.err = errors.New("connection reset")

	err = f.sut.ClearCart(ctx, "123")
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestUpdateItemNotes_RoundTrips(t *testing.T) {
	f := newFixture(product("p1", 100))
	ctx := context.Background()

	_, err := f.sut.AddItem(ctx, "123", "p1", "", 1, "")
	require.NoError(t, err)

	view, err := f.sut.UpdateItemNotes(ctx, "123", "p1", "no onions")
	require.NoError(t, err)
	assert.Equal(t, "no onions", view.Cart.Items[0].Notes)

	stored, err := f.repo.GetCart(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "no onions", stored.Items[0].Notes)
}

func TestCheckoutSnapshot(t *testing.T) {
	f := newFixture(product("p1", 120))
	ctx := context.Background()

	_, err := f.sut.AddItem(ctx, "123", "p1", "", 2, "")
	require.NoError(t, err)

	snapshot, err := f.sut.CheckoutSnapshot(ctx, "123")
	require.NoError(t, err)
	require.Len(t, snapshot.Items, 1)
	assert.True(t, snapshot.GrandTotal.Equal(dec(240)))
	assert.Empty(t, snapshot.CouponCode)
}
