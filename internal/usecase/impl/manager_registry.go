package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront/config"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// RegistryParams holds the shared collaborators the registry hands to every
// Profile Manager it creates.
type RegistryParams struct {
	fx.In
	fx.Lifecycle

	Store     repository.ProfileRepository
	Cache     repository.SessionCache
	Catalog   repository.CatalogRepository
	Identity  service.IdentityProvider
	Analytics service.AnalyticsPublisher
	Config    *config.Config
	Logger    *slog.Logger
}

type managerEntry struct {
	manager  usecase.ProfileUsecase
	lastSeen time.Time

	// init runs InitializeProfile exactly once, outside the registry lock.
	// Concurrent first-touch callers block here until the profile exists.
	init sync.Once
}

// managerRegistry keeps one Profile Manager per live session. The storage
// variant is decided once, at startup: if the remote store answers a ping,
// every manager is remote-backed with debounced write-back; otherwise every
// manager falls back to synchronous session-cache persistence.
type managerRegistry struct {
	mu       sync.Mutex
	managers map[string]*managerEntry

	deps        ManagerDeps
	remoteAlive bool
	idleTTL     time.Duration
	logger      *slog.Logger
	stopJanitor chan struct{}
}

// NewManagerRegistry probes the remote profile store, selects the manager
// variant, and starts the idle-eviction janitor. Registered on the fx
// lifecycle so shutdown flushes every pending write.
func NewManagerRegistry(params RegistryParams) usecase.ManagerRegistry {
	profileCfg := params.Config.Profile

	pingCtx, cancel := context.WithTimeout(context.Background(), profileCfg.StorePingTimeout)
	defer cancel()

	remoteAlive := false
	if err := params.Store.Ping(pingCtx); err != nil {
		params.Logger.Warn("Remote profile store unreachable, using cache-only profile managers",
			slog.Any("error", err))
	} else {
		remoteAlive = true
	}

	registry := &managerRegistry{
		managers: make(map[string]*managerEntry),
		deps: ManagerDeps{
			Store:               params.Store,
			Cache:               params.Cache,
			Catalog:             params.Catalog,
			Identity:            params.Identity,
			Analytics:           params.Analytics,
			Logger:              params.Logger,
			DebounceInterval:    profileCfg.DebounceInterval,
			IdentityWaitTimeout: profileCfg.IdentityWaitTimeout,
		},
		remoteAlive: remoteAlive,
		idleTTL:     profileCfg.ManagerIdleTTL,
		logger:      params.Logger,
		stopJanitor: make(chan struct{}),
	}

	go registry.janitor()

	params.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			close(registry.stopJanitor)

			return registry.FlushAll(ctx)
		},
	})

	params.Logger.Info("Profile manager registry started",
		slog.Bool("remoteStore", remoteAlive),
		slog.Duration("idleTTL", registry.idleTTL))

	return registry
}

// ManagerFor returns the Profile Manager bound to a session, creating and
// initializing it on first touch.
func (r *managerRegistry) ManagerFor(ctx context.Context, sessionID string) (usecase.ProfileUsecase, error) {
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}

	r.mu.Lock()
	entry, ok := r.managers[sessionID]
	if !ok {
		entry = &managerEntry{manager: r.newManager(sessionID)}
		r.managers[sessionID] = entry
	}
	entry.lastSeen = time.Now()
	r.mu.Unlock()

	entry.init.Do(func() {
		entry.manager.InitializeProfile(ctx)
	})

	return entry.manager, nil
}

func (r *managerRegistry) newManager(sessionID string) usecase.ProfileUsecase {
	if r.remoteAlive {
		return NewRemoteProfileManager(sessionID, r.deps)
	}

	return NewCacheProfileManager(sessionID, r.deps)
}

// FlushAll forces every live manager to complete its pending writes.
func (r *managerRegistry) FlushAll(ctx context.Context) error {
	r.mu.Lock()
	managers := make([]usecase.ProfileUsecase, 0, len(r.managers))
	for _, entry := range r.managers {
		managers = append(managers, entry.manager)
	}
	r.mu.Unlock()

	var firstErr error
	for _, manager := range managers {
		if err := manager.Flush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return errors.Wrap(firstErr, "failed to flush profile managers")
	}

	return nil
}

// janitor evicts managers whose session has been idle past the TTL, flushing
// each before dropping it.
func (r *managerRegistry) janitor() {
	interval := r.idleTTL / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopJanitor:
			return
		case <-ticker.C:
			r.evictIdle()
		}
	}
}

func (r *managerRegistry) evictIdle() {
	cutoff := time.Now().Add(-r.idleTTL)

	r.mu.Lock()
	expired := make(map[string]usecase.ProfileUsecase)
	for sessionID, entry := range r.managers {
		if entry.lastSeen.Before(cutoff) {
			expired[sessionID] = entry.manager
			delete(r.managers, sessionID)
		}
	}
	r.mu.Unlock()

	for sessionID, manager := range expired {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := manager.Flush(ctx); err != nil {
			r.logger.Warn("Failed to flush evicted profile manager",
				slog.String("sessionID", sessionID), slog.Any("error", err))
		}
		cancel()
	}

	if len(expired) > 0 {
		r.logger.Debug("Evicted idle profile managers", slog.Int("count", len(expired)))
	}
}
