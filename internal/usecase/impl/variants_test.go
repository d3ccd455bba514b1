package impl

import (
	"context"
	"testing"
	"time"

	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteManager_DebouncedWriteBack(t *testing.T) {
	fixture := newTestFixture()
	deps := fixture.deps()
	deps.DebounceInterval = 20 * time.Millisecond
	manager := NewRemoteProfileManager("sess-1", deps)
	ctx := context.Background()

	manager.InitializeProfile(ctx)
	before := fixture.store.setCalls

	// A burst of mutations inside the window coalesces into one write.
	require.NoError(t, manager.AddToCart(ctx, "sku-1", 1))
	require.NoError(t, manager.AddToCart(ctx, "sku-1", 1))
	require.NoError(t, manager.AddToCart(ctx, "sku-2", 1))
	assert.Equal(t, before, fixture.store.setCalls, "writes inside the debounce window must not hit the store")

	require.Eventually(t, func() bool {
		return fixture.store.setCalls > before
	}, time.Second, 5*time.Millisecond)

	profile, err := fixture.store.Get(ctx, manager.CurrentProfile().ID)
	require.NoError(t, err)
	require.Len(t, profile.Shopping.Cart.Items, 2, "the debounced write carries the latest full state")
	assert.Equal(t, 2, profile.Shopping.Cart.Items[0].Quantity)
}

func TestRemoteManager_FlushForcesPendingWrite(t *testing.T) {
	fixture := newTestFixture()
	deps := fixture.deps()
	deps.DebounceInterval = time.Hour
	manager := NewRemoteProfileManager("sess-1", deps)
	ctx := context.Background()

	manager.InitializeProfile(ctx)
	require.NoError(t, manager.AddToCart(ctx, "sku-1", 1))
	require.False(t, fixture.store.has(manager.CurrentProfile().ID))

	require.NoError(t, manager.Flush(ctx))

	profile, err := fixture.store.Get(ctx, manager.CurrentProfile().ID)
	require.NoError(t, err)
	assert.Len(t, profile.Shopping.Cart.Items, 1)
}

func TestRemoteManager_WriteFailureKeepsMemoryAuthoritative(t *testing.T) {
	fixture := newTestFixture()
	fixture.store.setErr = errors.New("store down")
	manager := NewRemoteProfileManager("sess-1", fixture.deps())
	ctx := context.Background()

	manager.InitializeProfile(ctx)
	require.NoError(t, manager.AddToCart(ctx, "sku-1", 1))
	require.NoError(t, manager.Flush(ctx))

	assert.Len(t, manager.CurrentProfile().Shopping.Cart.Items, 1,
		"a failed remote write must not roll back in-memory state")
}

func TestCacheManager_PersistsSynchronously(t *testing.T) {
	fixture := newTestFixture()
	manager := NewCacheProfileManager("sess-1", fixture.deps())
	ctx := context.Background()

	manager.InitializeProfile(ctx)
	require.NoError(t, manager.AddToCart(ctx, "sku-1", 2))

	cached, err := fixture.cache.GetProfile(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, cached.Shopping.Cart.Items, 1)
	assert.Equal(t, 2, cached.Shopping.Cart.Items[0].Quantity)
	assert.Equal(t, 0, fixture.store.setCalls, "the fallback variant never touches the remote store")
}

func TestCacheManager_ConversionUnavailable(t *testing.T) {
	fixture := newTestFixture()
	manager := NewCacheProfileManager("sess-1", fixture.deps())
	ctx := context.Background()
	manager.InitializeProfile(ctx)

	_, err := manager.ConvertGuestToRegistered(ctx, &usecase.SignUpInput{Email: "a@example.com", Password: "pw-longer"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrConversionFailed))
	assert.True(t, manager.CurrentProfile().IsGuest())
}

func TestCacheManager_SignOutStillWorks(t *testing.T) {
	fixture := newTestFixture()
	manager := NewCacheProfileManager("sess-1", fixture.deps())
	ctx := context.Background()
	manager.InitializeProfile(ctx)
	require.NoError(t, manager.AddToCart(ctx, "sku-1", 1))

	require.NoError(t, manager.HandleAuthChange(ctx, usecase.AuthChange{}))

	profile := manager.CurrentProfile()
	assert.True(t, profile.IsGuest())
}
