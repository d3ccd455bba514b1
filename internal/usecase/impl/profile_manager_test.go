package impl

import (
	"context"
	"fmt"
	"testing"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeProfile_SynthesizesGuest(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())

	profile := manager.InitializeProfile(context.Background())

	require.NotNil(t, profile)
	assert.Equal(t, entity.GuestProfileID("sess-1"), profile.ID)
	assert.Equal(t, entity.ProfileTypeGuest, profile.Type)
	assert.Equal(t, "sess-1", profile.SessionID)
	assert.Equal(t, 1, profile.Metadata.VisitCount)
	assert.True(t, fixture.cache.has("sess-1"), "guest profile should write through to the session cache")
}

func TestInitializeProfile_RestoresGuestFromCacheAndCountsVisit(t *testing.T) {
	fixture := newTestFixture()
	first := NewRemoteProfileManager("sess-1", fixture.deps())
	first.InitializeProfile(context.Background())
	require.NoError(t, first.AddToCart(context.Background(), "sku-1", 1))

	second := NewRemoteProfileManager("sess-1", fixture.deps())
	profile := second.InitializeProfile(context.Background())

	require.NotNil(t, profile)
	assert.Equal(t, 2, profile.Metadata.VisitCount)
	require.Len(t, profile.Shopping.Cart.Items, 1)
	assert.Equal(t, "sku-1", profile.Shopping.Cart.Items[0].ProductID)
}

func TestInitializeProfile_Idempotent(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())

	first := manager.InitializeProfile(context.Background())
	second := manager.InitializeProfile(context.Background())

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, second.Metadata.VisitCount, "repeat initialization should not count another visit")
}

func TestCurrentProfile_ReturnsSnapshot(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	manager.InitializeProfile(context.Background())

	snapshot := manager.CurrentProfile()
	snapshot.PersonalInfo.Email = "mutated@example.com"

	assert.Empty(t, manager.CurrentProfile().PersonalInfo.Email,
		"mutating a snapshot must not leak into the authoritative profile")
}

func TestAddToCart_RepeatedAddAggregatesQuantity(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	manager.InitializeProfile(context.Background())

	require.NoError(t, manager.AddToCart(context.Background(), "sku-1", 1))
	require.NoError(t, manager.AddToCart(context.Background(), "sku-1", 2))

	profile := manager.CurrentProfile()
	require.Len(t, profile.Shopping.Cart.Items, 1, "same product must aggregate, not duplicate")
	assert.Equal(t, 3, profile.Shopping.Cart.Items[0].Quantity)
	assert.InDelta(t, 29.97, profile.Shopping.Cart.Total, 0.001)
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	manager.InitializeProfile(context.Background())

	err := manager.AddToCart(context.Background(), "sku-missing", 1)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrProductNotFound))
	assert.Empty(t, manager.CurrentProfile().Shopping.Cart.Items)
}

func TestCartTotal_AlwaysMatchesCatalogPrices(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	manager.InitializeProfile(context.Background())
	ctx := context.Background()

	require.NoError(t, manager.AddToCart(ctx, "sku-1", 2)) // 19.98
	require.NoError(t, manager.AddToCart(ctx, "sku-2", 1)) // +39.50
	assert.InDelta(t, 59.48, manager.CurrentProfile().Shopping.Cart.Total, 0.001)

	require.NoError(t, manager.UpdateCartQuantity(ctx, "sku-1", 1))
	assert.InDelta(t, 49.49, manager.CurrentProfile().Shopping.Cart.Total, 0.001)

	require.NoError(t, manager.RemoveFromCart(ctx, "sku-2"))
	assert.InDelta(t, 9.99, manager.CurrentProfile().Shopping.Cart.Total, 0.001)
}

func TestUpdateCartQuantity_NonPositiveRemovesLine(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	manager.InitializeProfile(context.Background())

	require.NoError(t, manager.AddToCart(context.Background(), "sku-1", 2))
	require.NoError(t, manager.UpdateCartQuantity(context.Background(), "sku-1", 0))

	profile := manager.CurrentProfile()
	assert.Empty(t, profile.Shopping.Cart.Items)
	assert.Zero(t, profile.Shopping.Cart.Total)
}

func TestClearCart_SnapshotsAbandonedCart(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	manager.InitializeProfile(context.Background())

	require.NoError(t, manager.AddToCart(context.Background(), "sku-1", 2))
	require.NoError(t, manager.ClearCart(context.Background()))

	profile := manager.CurrentProfile()
	assert.Empty(t, profile.Shopping.Cart.Items)
	require.Len(t, profile.Shopping.AbandonedCarts, 1)
	assert.InDelta(t, 19.98, profile.Shopping.AbandonedCarts[0].Total, 0.001)

	// Clearing an already-empty cart records nothing.
	require.NoError(t, manager.ClearCart(context.Background()))
	assert.Len(t, manager.CurrentProfile().Shopping.AbandonedCarts, 1)
}

func TestClearCart_AbandonedRingBufferIsBounded(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	manager.InitializeProfile(context.Background())
	ctx := context.Background()

	for i := 0; i < entity.MaxAbandonedCarts+5; i++ {
		require.NoError(t, manager.AddToCart(ctx, "sku-1", i+1))
		require.NoError(t, manager.ClearCart(ctx))
	}

	profile := manager.CurrentProfile()
	require.Len(t, profile.Shopping.AbandonedCarts, entity.MaxAbandonedCarts)
	// The oldest snapshots fell off; the newest survives.
	last := profile.Shopping.AbandonedCarts[len(profile.Shopping.AbandonedCarts)-1]
	assert.Equal(t, entity.MaxAbandonedCarts+5, last.Items[0].Quantity)
}

func TestTrackAction_EventBufferIsBounded(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	manager.InitializeProfile(context.Background())
	ctx := context.Background()

	for i := 0; i < entity.MaxAnalyticsEvents+10; i++ {
		manager.TrackAction(ctx, fmt.Sprintf("action-%d", i), nil)
	}

	events := manager.CurrentProfile().Analytics.Events
	require.Len(t, events, entity.MaxAnalyticsEvents)
	assert.Equal(t, fmt.Sprintf("action-%d", entity.MaxAnalyticsEvents+9), events[len(events)-1].Action,
		"most recent events must survive truncation")
}

func TestTrackAction_PublisherFailureIsInvisible(t *testing.T) {
	fixture := newTestFixture()
	fixture.publisher.err = errors.New("sink down")
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	manager.InitializeProfile(context.Background())

	manager.TrackAction(context.Background(), "newsletter_signup", nil)

	events := manager.CurrentProfile().Analytics.Events
	require.NotEmpty(t, events)
	assert.Equal(t, "newsletter_signup", events[len(events)-1].Action)
}

func TestAddToWishlist_DuplicateIsNoOp(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	manager.InitializeProfile(context.Background())

	require.NoError(t, manager.AddToWishlist(context.Background(), "sku-2", map[string]any{"name": "Pour-Over Kettle"}))
	require.NoError(t, manager.AddToWishlist(context.Background(), "sku-2", nil))

	assert.Len(t, manager.CurrentProfile().Shopping.Wishlist, 1)
}

func TestRemoveFromWishlist(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	manager.InitializeProfile(context.Background())

	require.NoError(t, manager.AddToWishlist(context.Background(), "sku-1", nil))
	require.NoError(t, manager.AddToWishlist(context.Background(), "sku-2", nil))
	require.NoError(t, manager.RemoveFromWishlist(context.Background(), "sku-1"))

	wishlist := manager.CurrentProfile().Shopping.Wishlist
	require.Len(t, wishlist, 1)
	assert.Equal(t, "sku-2", wishlist[0].ProductID)
}

func TestAddPurchase_RecordsOrderWithoutAbandoning(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	manager.InitializeProfile(context.Background())
	ctx := context.Background()

	require.NoError(t, manager.AddToCart(ctx, "sku-1", 2))
	require.NoError(t, manager.AddPurchase(ctx, &usecase.PurchaseInput{OrderID: "order-1"}))

	profile := manager.CurrentProfile()
	require.Len(t, profile.Shopping.PurchaseHistory, 1)
	order := profile.Shopping.PurchaseHistory[0]
	assert.Equal(t, "order-1", order.OrderID)
	assert.InDelta(t, 19.98, order.Total, 0.001)
	require.Len(t, order.Items, 1)

	assert.Empty(t, profile.Shopping.Cart.Items)
	assert.Empty(t, profile.Shopping.AbandonedCarts, "a paid cart is not an abandoned cart")
}

func TestUpdateProfile_ShallowMerge(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	manager.InitializeProfile(context.Background())

	email := "ada@example.com"
	updated, err := manager.UpdateProfile(context.Background(), &usecase.UpdateProfileInput{
		Email:       &email,
		Preferences: map[string]any{"theme": "dark"},
	})
	require.NoError(t, err)
	assert.Equal(t, email, updated.PersonalInfo.Email)
	assert.Equal(t, "dark", updated.Preferences["theme"])

	first := "Ada"
	second, err := manager.UpdateProfile(context.Background(), &usecase.UpdateProfileInput{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, email, second.PersonalInfo.Email, "untouched fields must survive a partial update")
	assert.Equal(t, first, second.PersonalInfo.FirstName)
}

func TestUpdateProfile_NilInput(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	manager.InitializeProfile(context.Background())

	// An empty request body binds to a nil input; it must surface as an
	// error, not a panic.
	updated, err := manager.UpdateProfile(context.Background(), nil)

	require.Error(t, err)
	assert.Nil(t, updated)
	assert.Empty(t, manager.CurrentProfile().PersonalInfo.Email)
}

func TestCartView_DropsVanishedProducts(t *testing.T) {
	fixture := newTestFixture()
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	manager.InitializeProfile(context.Background())
	ctx := context.Background()

	require.NoError(t, manager.AddToCart(ctx, "sku-1", 2))
	require.NoError(t, manager.AddToCart(ctx, "sku-2", 1))

	delete(fixture.catalog.products, "sku-2")

	lines, err := manager.CartView(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "sku-1", lines[0].ID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.InDelta(t, 19.98, lines[0].LineTotal, 0.001)
}
