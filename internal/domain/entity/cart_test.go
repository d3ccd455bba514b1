package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrices(productID string) (float64, bool) {
	prices := map[string]float64{
		"sku-1": 9.99,
		"sku-2": 39.50,
	}
	price, ok := prices[productID]

	return price, ok
}

func TestCartUpsertAggregatesQuantity(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	cart := Cart{}

	cart.Upsert("sku-1", 1, now)
	cart.Upsert("sku-1", 2, now.Add(time.Minute))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, now, cart.Items[0].AddedAt)
	assert.Equal(t, now.Add(time.Minute), cart.Items[0].UpdatedAt)
}

func TestCartUpsertAppendsNewLine(t *testing.T) {
	now := time.Now()
	cart := Cart{}

	cart.Upsert("sku-1", 1, now)
	cart.Upsert("sku-2", 1, now)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, "sku-2", cart.Items[1].ProductID)
}

func TestCartRemoveFiltersLine(t *testing.T) {
	now := time.Now()
	cart := Cart{}
	cart.Upsert("sku-1", 1, now)
	cart.Upsert("sku-2", 1, now)

	cart.Remove("sku-1", now)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, "sku-2", cart.Items[0].ProductID)

	// Removing an absent product leaves the cart untouched.
	cart.Remove("sku-9", now)
	require.Len(t, cart.Items, 1)
}

func TestCartRecomputeFromCatalogPrices(t *testing.T) {
	now := time.Now()
	cart := Cart{}
	cart.Upsert("sku-1", 3, now)
	cart.Upsert("sku-2", 1, now)

	cart.Recompute(testPrices)

	assert.InDelta(t, 69.47, cart.Total, 0.001)
}

func TestCartRecomputeSkipsVanishedProducts(t *testing.T) {
	now := time.Now()
	cart := Cart{}
	cart.Upsert("sku-1", 1, now)
	cart.Upsert("sku-gone", 5, now)

	cart.Recompute(testPrices)

	assert.InDelta(t, 9.99, cart.Total, 0.001)
}

func TestCartSnapshotIsIndependent(t *testing.T) {
	now := time.Now()
	cart := Cart{}
	cart.Upsert("sku-1", 1, now)

	snapshot := cart.Snapshot()
	cart.Items[0].Quantity = 99

	assert.Equal(t, 1, snapshot[0].Quantity)
}

func TestPushAbandonedKeepsMostRecent(t *testing.T) {
	now := time.Now()
	shopping := Shopping{}

	for i := 0; i < MaxAbandonedCarts+3; i++ {
		cart := Cart{}
		cart.Upsert("sku-1", i+1, now)
		shopping.PushAbandoned(cart, now)
	}

	require.Len(t, shopping.AbandonedCarts, MaxAbandonedCarts)
	last := shopping.AbandonedCarts[len(shopping.AbandonedCarts)-1]
	assert.Equal(t, MaxAbandonedCarts+3, last.Items[0].Quantity)
}

func TestHasWishlisted(t *testing.T) {
	shopping := Shopping{
		Wishlist: []WishlistEntry{{ProductID: "sku-1"}},
	}

	assert.True(t, shopping.HasWishlisted("sku-1"))
	assert.False(t, shopping.HasWishlisted("sku-2"))
}
