package cart

import (
	"testing"

	"github.com/Iamabhih/storefront-cart/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItem(id string, price int64, quantity int) domain.CartItem {
	return domain.CartItem{
		ID:          id,
		ProductID:   id,
		Name:        "item " + id,
		Price:       decimal.NewFromInt(price),
		Quantity:    quantity,
		MinQuantity: 1,
	}
}

func TestAddItem_NewLine(t *testing.T) {
	c := New()

	added, err := c.AddItem(testItem("p1", 100, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, added.Quantity)
	assert.Equal(t, 1, c.Len())
}

func TestAddItem_MergesSameID(t *testing.T) {
	c := New()

	_, err := c.AddItem(testItem("p1", 100, 1))
	require.NoError(t, err)

	// Adding 2 more of the same item merges into quantity 3.
	added, err := c.AddItem(testItem("p1", 100, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, added.Quantity)
	assert.Equal(t, 1, c.Len())
}

func TestAddItem_MergesByProductVariantIdentity(t *testing.T) {
	c := New()

	first := testItem("line-1", 50, 1)
	first.ProductID = "p1"
	first.VariantID = "v1"
	_, err := c.AddItem(first)
	require.NoError(t, err)

	second := testItem("", 50, 2)
	second.ProductID = "p1"
	second.VariantID = "v1"
	_, err = c.AddItem(second)
	require.NoError(t, err)

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 3, c.Items()[0].Quantity)
}

func TestAddItem_MergeBoundedByMax(t *testing.T) {
	c := New()

	item := testItem("p1", 100, 4)
	item.MaxQuantity = 5
	_, err := c.AddItem(item)
	require.NoError(t, err)

	merged, err := c.AddItem(item)
	require.NoError(t, err)
	assert.Equal(t, 5, merged.Quantity)
}

func TestAddItem_MinQuantityFloor(t *testing.T) {
	c := New()

	item := testItem("p1", 100, 0)
	item.MinQuantity = 6

	added, err := c.AddItem(item)
	require.NoError(t, err)
	assert.Equal(t, 6, added.Quantity)
}

func TestAddItem_InconsistentBoundsRejected(t *testing.T) {
	c := New()

	item := testItem("p1", 100, 3)
	item.MinQuantity = 10
	item.MaxQuantity = 5

	_, err := c.AddItem(item)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
	assert.Equal(t, 0, c.Len())
}

func TestRemoveItem_Idempotent(t *testing.T) {
	c := New()
	_, err := c.AddItem(testItem("p1", 100, 1))
	require.NoError(t, err)

	assert.True(t, c.RemoveItem("p1"))
	assert.False(t, c.RemoveItem("p1"))
	assert.Equal(t, 0, c.Len())
}

func TestUpdateQuantity_ZeroRemoves(t *testing.T) {
	c := New()
	_, err := c.AddItem(testItem("p1", 100, 2))
	require.NoError(t, err)

	require.NoError(t, c.UpdateQuantity("p1", 0))
	assert.Equal(t, 0, c.Len())
}

func TestUpdateQuantity_ClampsIntoBounds(t *testing.T) {
	c := New()
	item := testItem("p1", 100, 5)
	item.MinQuantity = 2
	item.MaxQuantity = 8
	_, err := c.AddItem(item)
	require.NoError(t, err)

	require.NoError(t, c.UpdateQuantity("p1", 1))
	assert.Equal(t, 2, c.Items()[0].Quantity)

	require.NoError(t, c.UpdateQuantity("p1", 50))
	assert.Equal(t, 8, c.Items()[0].Quantity)
}

func TestUpdateQuantity_UnknownLine(t *testing.T) {
	c := New()
	assert.ErrorIs(t, c.UpdateQuantity("ghost", 3), domain.ErrNotFound)
}

func TestAdjustQuantity_PackSizeDecrementRemoves(t *testing.T) {
	c := New()

	// Pack-size product: min order 6, stepped in sixes. One decrement from 6
	// lands at 0 and removes the line.
	item := testItem("p1", 100, 0)
	item.MinQuantity = 6
	added, err := c.AddItem(item)
	require.NoError(t, err)
	require.Equal(t, 6, added.Quantity)

	require.NoError(t, c.AdjustQuantity("p1", -1))
	assert.Equal(t, 0, c.Len())
}

func TestAdjustQuantity_StepsByMin(t *testing.T) {
	c := New()
	item := testItem("p1", 100, 0)
	item.MinQuantity = 6
	_, err := c.AddItem(item)
	require.NoError(t, err)

	require.NoError(t, c.AdjustQuantity("p1", +1))
	assert.Equal(t, 12, c.Items()[0].Quantity)
}

func TestUpdateItemNotes(t *testing.T) {
	c := New()
	_, err := c.AddItem(testItem("p1", 100, 1))
	require.NoError(t, err)

	assert.True(t, c.UpdateItemNotes("p1", "gift wrap please"))
	assert.Equal(t, "gift wrap please", c.Items()[0].Notes)

	assert.True(t, c.UpdateItemNotes("p1", ""))
	assert.Empty(t, c.Items()[0].Notes)

	assert.False(t, c.UpdateItemNotes("ghost", "hello"))
}

func TestClear_ResetsItemsAndCoupon(t *testing.T) {
	c := New()
	_, err := c.AddItem(testItem("p1", 100, 1))
	require.NoError(t, err)
	c.ApplyCoupon("SAVE10", decimal.NewFromInt(10), decimal.Zero)

	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Metadata().HasCoupon())
}

func TestReplace_DropsCoupon(t *testing.T) {
	c := New()
	_, err := c.AddItem(testItem("p1", 100, 1))
	require.NoError(t, err)
	c.ApplyCoupon("SAVE10", decimal.NewFromInt(10), decimal.Zero)

	c.Replace([]domain.CartItem{testItem("p2", 50, 2)})

	require.Equal(t, 1, c.Len())
	assert.Equal(t, "p2", c.Items()[0].ID)
	assert.False(t, c.Metadata().HasCoupon())
}

func TestReconcileCoupon_DropsBelowMinimum(t *testing.T) {
	c := New()
	c.ApplyCoupon("SAVE10", decimal.NewFromInt(10), decimal.NewFromInt(200))

	assert.False(t, c.ReconcileCoupon(decimal.NewFromInt(250)))
	assert.True(t, c.Metadata().HasCoupon())

	assert.True(t, c.ReconcileCoupon(decimal.NewFromInt(150)))
	assert.False(t, c.Metadata().HasCoupon())

	// Already dropped: nothing further to reconcile.
	assert.False(t, c.ReconcileCoupon(decimal.NewFromInt(150)))
}

func TestSnapshot_IsolatedFromLaterMutation(t *testing.T) {
	c := New()
	_, err := c.AddItem(testItem("p1", 100, 2))
	require.NoError(t, err)

	snapshot := c.Snapshot()

	require.NoError(t, c.UpdateQuantity("p1", 9))
	c.UpdateItemNotes("p1", "changed")

	require.Len(t, snapshot, 1)
	assert.Equal(t, 2, snapshot[0].Quantity)
	assert.Empty(t, snapshot[0].Notes)
}

func TestFromDomain_ReclampsCorruptQuantities(t *testing.T) {
	stored := &domain.Cart{
		UserID: "u1",
		Items: []domain.CartItem{
			{ID: "p1", ProductID: "p1", Quantity: 1, MinQuantity: 6},
		},
	}

	c := FromDomain(stored)

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 6, c.Items()[0].Quantity)
}

func TestValidSavedCartName(t *testing.T) {
	name, err := ValidSavedCartName("  weekly shop  ")
	require.NoError(t, err)
	assert.Equal(t, "weekly shop", name)

	_, err = ValidSavedCartName("   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
