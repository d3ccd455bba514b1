package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
)

// ManagerDeps bundles the collaborators a Profile Manager needs. The
// registry constructs one manager per live session from a shared set of
// dependencies.
type ManagerDeps struct {
	Store     repository.ProfileRepository
	Cache     repository.SessionCache
	Catalog   repository.CatalogRepository
	Identity  service.IdentityProvider
	Analytics service.AnalyticsPublisher
	Logger    *slog.Logger

	DebounceInterval    time.Duration
	IdentityWaitTimeout time.Duration
	Now                 func() time.Time
}

func (d *ManagerDeps) withDefaults() ManagerDeps {
	deps := *d
	if deps.DebounceInterval <= 0 {
		deps.DebounceInterval = 2 * time.Second
	}
	if deps.IdentityWaitTimeout <= 0 {
		deps.IdentityWaitTimeout = 5 * time.Second
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return deps
}

func newCore(sessionID string, deps ManagerDeps) *managerCore {
	return &managerCore{
		sessionID:           sessionID,
		cache:               deps.Cache,
		catalog:             deps.Catalog,
		identity:            deps.Identity,
		analytics:           deps.Analytics,
		logger:              deps.Logger,
		now:                 deps.Now,
		identityWaitTimeout: deps.IdentityWaitTimeout,
	}
}

// remoteProfileManager is the remote-backed variant: mutations update memory
// synchronously and schedule a trailing-edge debounced write of the full
// profile document to the remote store. Guest profiles additionally write
// through to the session cache on every mutation, because losing guest
// continuity to a refresh is a worse failure than extra cache writes.
type remoteProfileManager struct {
	*managerCore

	debounce time.Duration

	// Single pending-write flag: mutations inside the debounce window rely
	// on the eventually-fired write capturing the latest in-memory state.
	// The timer serializes the current full profile, never a diff.
	writeMu      sync.Mutex
	writePending bool
	timer        *time.Timer
}

// NewRemoteProfileManager builds the remote-backed Profile Manager variant
// for a session.
func NewRemoteProfileManager(sessionID string, deps ManagerDeps) usecase.ProfileUsecase {
	deps = deps.withDefaults()
	m := &remoteProfileManager{
		managerCore: newCore(sessionID, deps),
		debounce:    deps.DebounceInterval,
	}
	m.store = deps.Store
	m.persist = m.persistProfile

	return m
}

// persistProfile runs with the manager lock held; the remote write itself
// happens later, off the operation path.
func (m *remoteProfileManager) persistProfile(ctx context.Context) {
	if m.profile == nil {
		return
	}

	if m.profile.IsGuest() {
		if err := m.cache.SaveProfile(ctx, m.sessionID, m.profile); err != nil {
			m.log(ctx).Warn("Guest cache write-through failed",
				slog.String("sessionID", m.sessionID), slog.Any("error", err))
		}
	}

	m.scheduleRemoteWrite()
}

func (m *remoteProfileManager) scheduleRemoteWrite() {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if m.writePending {
		return
	}
	m.writePending = true
	m.timer = time.AfterFunc(m.debounce, func() {
		m.flushRemote(context.Background())
	})
}

// flushRemote clears the pending flag, snapshots the latest in-memory state
// and writes the full document. There is no cancellation of an in-flight
// write; a mutation after the flag clears starts a new debounce window.
func (m *remoteProfileManager) flushRemote(ctx context.Context) {
	m.writeMu.Lock()
	m.writePending = false
	m.writeMu.Unlock()

	m.mu.Lock()
	if m.profile == nil {
		m.mu.Unlock()

		return
	}
	snapshot := m.profile.Clone()
	m.mu.Unlock()

	if err := m.store.Set(ctx, snapshot); err != nil {
		// In-memory state stays authoritative; the next mutation's debounce
		// cycle retries implicitly.
		m.logger.Warn("Debounced profile write failed",
			slog.String("profileID", snapshot.ID), slog.Any("error", err))
	}
}

// Flush forces any pending debounced write to complete now.
func (m *remoteProfileManager) Flush(ctx context.Context) error {
	m.writeMu.Lock()
	pending := m.writePending
	if pending && m.timer != nil {
		m.timer.Stop()
	}
	m.writeMu.Unlock()

	if pending {
		m.flushRemote(ctx)
	}

	return nil
}

// ConvertGuestToRegistered performs the one-way guest-to-registered
// transition against the remote store.
func (m *remoteProfileManager) ConvertGuestToRegistered(ctx context.Context, input *usecase.SignUpInput) (*usecase.ConversionOutput, error) {
	return convertGuestToRegistered(ctx, m.managerCore, m.store, input)
}

// HandleAuthChange reacts to sign-in and sign-out transitions.
func (m *remoteProfileManager) HandleAuthChange(ctx context.Context, change usecase.AuthChange) error {
	return handleAuthChange(ctx, m.managerCore, m.store, change)
}

// DeleteAccount removes the registered account and all of its profile data,
// reverting the session to a fresh guest profile.
func (m *remoteProfileManager) DeleteAccount(ctx context.Context) error {
	return deleteAccount(ctx, m.managerCore, m.store)
}

// cacheProfileManager is the fallback variant used when the remote store is
// unreachable at startup: every mutation persists synchronously to the
// session cache with the same field-level semantics.
type cacheProfileManager struct {
	*managerCore
}

// NewCacheProfileManager builds the cache-only fallback Profile Manager
// variant for a session.
func NewCacheProfileManager(sessionID string, deps ManagerDeps) usecase.ProfileUsecase {
	deps = deps.withDefaults()
	m := &cacheProfileManager{managerCore: newCore(sessionID, deps)}
	m.persist = m.persistProfile

	return m
}

func (m *cacheProfileManager) persistProfile(ctx context.Context) {
	if m.profile == nil {
		return
	}

	if err := m.cache.SaveProfile(ctx, m.sessionID, m.profile); err != nil {
		m.log(ctx).Warn("Session cache write failed",
			slog.String("sessionID", m.sessionID), slog.Any("error", err))
	}
}

// Flush is a no-op: the fallback variant persists synchronously.
func (m *cacheProfileManager) Flush(_ context.Context) error {
	return nil
}

// ConvertGuestToRegistered still creates the identity account, but without a
// reachable remote store the new profile cannot be written under the new
// identifier, so the conversion is considered failed before any state
// mutation.
func (m *cacheProfileManager) ConvertGuestToRegistered(_ context.Context, _ *usecase.SignUpInput) (*usecase.ConversionOutput, error) {
	return nil, errors.Wrap(domainerrors.ErrConversionFailed, "remote profile store unavailable")
}

// DeleteAccount never finds a registered profile on the fallback variant;
// the guest guard inside reports it.
func (m *cacheProfileManager) DeleteAccount(ctx context.Context) error {
	return deleteAccount(ctx, m.managerCore, nil)
}

// HandleAuthChange without a remote store can only swap between guest
// sessions: a sign-in keeps the local profile, a sign-out discards it.
func (m *cacheProfileManager) HandleAuthChange(ctx context.Context, change usecase.AuthChange) error {
	if change.Identity != nil {
		return nil
	}

	return handleSignOut(ctx, m.managerCore)
}
