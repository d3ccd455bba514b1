package impl

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(fixture *testFixture) *managerRegistry {
	return &managerRegistry{
		managers:    make(map[string]*managerEntry),
		deps:        fixture.deps(),
		remoteAlive: true,
		idleTTL:     time.Minute,
		logger:      slog.Default(),
		stopJanitor: make(chan struct{}),
	}
}

func TestManagerFor_RequiresSessionID(t *testing.T) {
	registry := newTestRegistry(newTestFixture())

	_, err := registry.ManagerFor(context.Background(), "")

	assert.Error(t, err)
}

func TestManagerFor_ReturnsSameManagerPerSession(t *testing.T) {
	registry := newTestRegistry(newTestFixture())
	ctx := context.Background()

	first, err := registry.ManagerFor(ctx, "sess-1")
	require.NoError(t, err)
	second, err := registry.ManagerFor(ctx, "sess-1")
	require.NoError(t, err)
	other, err := registry.ManagerFor(ctx, "sess-2")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
}

func TestManagerFor_ConcurrentFirstTouchSeesInitializedProfile(t *testing.T) {
	fixture := newTestFixture()
	registry := newTestRegistry(fixture)
	ctx := context.Background()

	// All callers race on the same fresh session; every one of them must get
	// a manager whose profile already exists, so none of their operations can
	// land on an uninitialized manager.
	const callers = 8
	var wg sync.WaitGroup
	failures := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			manager, err := registry.ManagerFor(ctx, "sess-1")
			if err != nil {
				failures <- err

				return
			}
			if manager.CurrentProfile() == nil {
				failures <- errors.New("manager handed out before its profile was initialized")

				return
			}
			failures <- manager.AddToCart(ctx, "sku-1", 1)
		}()
	}
	wg.Wait()
	close(failures)

	for err := range failures {
		require.NoError(t, err)
	}

	manager, err := registry.ManagerFor(ctx, "sess-1")
	require.NoError(t, err)
	profile := manager.CurrentProfile()
	require.NotNil(t, profile)
	assert.Equal(t, 1, profile.Metadata.VisitCount, "the racing callers share a single initialization")
	require.Len(t, profile.Shopping.Cart.Items, 1)
	assert.Equal(t, callers, profile.Shopping.Cart.Items[0].Quantity, "no cart add may be dropped")
}
