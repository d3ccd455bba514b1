package impl

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
)

// convertGuestToRegistered is the explicit sign-up transition. The steps run
// in order and each tolerates partial failure of the next without corrupting
// the previous state: account creation failure aborts with no mutation, the
// old-document delete and cache cleanup are best-effort, and the write of
// the new profile under the new identifier must succeed or the whole
// conversion is considered failed.
func convertGuestToRegistered(ctx context.Context, core *managerCore, store repository.ProfileRepository, input *usecase.SignUpInput) (*usecase.ConversionOutput, error) {
	core.mu.Lock()
	defer core.mu.Unlock()

	if core.profile == nil {
		return nil, errors.Wrap(domainerrors.ErrProfileNotFound, "profile manager not initialized")
	}
	if !core.profile.IsGuest() {
		return nil, errors.Wrap(domainerrors.ErrAlreadyRegistered, "conversion is one-way and non-reentrant")
	}

	guest := core.profile
	beforeItems := len(guest.Shopping.Cart.Items)
	beforeTotal := guest.Shopping.Cart.Total

	// (a) Create the authenticated identity. Failure aborts the whole
	// transition with no mutation.
	accountID, err := core.identity.CreateAccount(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrAccountExists) {
			return nil, errors.Wrap(domainerrors.ErrAccountExists, "signup rejected")
		}

		return nil, errors.Wrap(err, "failed to create account for conversion")
	}

	// (b) Display name is cosmetic; log and continue on failure.
	if input.DisplayName != "" {
		if err := core.identity.SetDisplayName(ctx, accountID, input.DisplayName); err != nil {
			core.log(ctx).Warn("Failed to set display name on new account",
				slog.String("accountID", accountID), slog.Any("error", err))
		}
	}

	// (c) Build the registered profile as a deep copy of the guest one.
	now := core.now()
	registered := guest.Clone()
	registered.ID = accountID
	registered.Type = entity.ProfileTypeRegistered
	registered.PersonalInfo.Email = input.Email
	if input.FirstName != "" {
		registered.PersonalInfo.FirstName = input.FirstName
	}
	if input.LastName != "" {
		registered.PersonalInfo.LastName = input.LastName
	}
	if input.Phone != "" {
		registered.PersonalInfo.Phone = input.Phone
	}
	registered.ConvertedFrom = &entity.ConversionRecord{
		OriginalGuestID: guest.ID,
		GuestSessionID:  guest.SessionID,
		ConvertedAt:     now,
	}
	registered.Touch(now)

	// (d) Delete the old guest document. Cleanup, not correctness-critical.
	if err := store.Delete(ctx, guest.ID); err != nil {
		core.log(ctx).Warn("Failed to delete old guest profile document",
			slog.String("guestID", guest.ID), slog.Any("error", err))
	}

	// (e) The write under the new identifier must succeed.
	if err := store.Set(ctx, registered); err != nil {
		return nil, errors.Wrap(err, "failed to write converted profile to remote store")
	}

	// (f) Remove the guest session-cache entry. Best-effort.
	if err := core.cache.DeleteProfile(ctx, guest.SessionID); err != nil {
		core.log(ctx).Warn("Failed to remove guest session-cache entry",
			slog.String("sessionID", guest.SessionID), slog.Any("error", err))
	}

	// (g) Swap the authoritative profile and track the conversion.
	core.profile = registered
	core.trackActionLocked(ctx, "guest_converted_to_registered", map[string]any{
		"original_guest_id": guest.ID,
		"cart_items_before": beforeItems,
		"cart_total_before": beforeTotal,
		"cart_items_after":  len(registered.Shopping.Cart.Items),
		"cart_total_after":  registered.Shopping.Cart.Total,
	})

	core.log(ctx).Info("Guest converted to registered",
		slog.String("guestID", guest.ID), slog.String("profileID", registered.ID))

	return &usecase.ConversionOutput{Profile: registered.Clone()}, nil
}

// handleAuthChange drives the guest/registered state machine from identity
// transitions delivered by the identity provider.
func handleAuthChange(ctx context.Context, core *managerCore, store repository.ProfileRepository, change usecase.AuthChange) error {
	core.mu.Lock()
	defer core.mu.Unlock()

	if change.Identity == nil {
		return handleSignOutLocked(ctx, core)
	}

	// Already holding the profile for this identity: nothing to do.
	if core.profile != nil && !core.profile.IsGuest() && core.profile.ID == change.Identity.ID {
		return nil
	}

	return core.loadRegisteredWithStoreLocked(ctx, store, change.Identity)
}

// loadRegisteredLocked activates the registered profile for an identity.
// Only the remote-backed variant installs a store; the fallback variant
// cannot serve registered profiles and stays on guest.
func (m *managerCore) loadRegisteredLocked(ctx context.Context, ident *usecase.IdentityInfo) error {
	if m.store == nil {
		return errors.New("registered profiles require the remote profile store")
	}

	return m.loadRegisteredWithStoreLocked(ctx, m.store, ident)
}

// loadRegisteredWithStoreLocked loads or creates the registered profile for
// an identity and merges any guest-session data found in the session cache
// into it. Afterwards the guest cache entry is deleted and the merged
// profile is written back.
func (m *managerCore) loadRegisteredWithStoreLocked(ctx context.Context, store repository.ProfileRepository, ident *usecase.IdentityInfo) error {
	now := m.now()

	registered, err := store.Get(ctx, ident.ID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		registered = newRegisteredProfile(ident, m.sessionID, now)
	} else if err != nil {
		return errors.Wrap(err, "failed to load registered profile")
	}
	registered.SessionID = m.sessionID

	guest := m.guestForMergeLocked(ctx)
	if guest != nil {
		mergeGuestIntoRegistered(registered, guest)
		registered.Touch(now)

		if err := m.cache.DeleteProfile(ctx, guest.SessionID); err != nil {
			m.log(ctx).Warn("Failed to delete merged guest cache entry",
				slog.String("sessionID", guest.SessionID), slog.Any("error", err))
		}
	}

	if err := store.Set(ctx, registered); err != nil {
		return errors.Wrap(err, "failed to write merged registered profile")
	}

	m.profile = registered
	m.log(ctx).Info("Registered profile active",
		slog.String("profileID", registered.ID),
		slog.Bool("mergedGuestData", guest != nil))

	return nil
}

// guestForMergeLocked returns the guest-session data to merge: the live
// in-memory guest profile when there is one, otherwise whatever the session
// cache still holds for this session.
func (m *managerCore) guestForMergeLocked(ctx context.Context) *entity.Profile {
	if m.profile != nil && m.profile.IsGuest() {
		return m.profile
	}

	cached, err := m.cache.GetProfile(ctx, m.sessionID)
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			m.log(ctx).Warn("Session cache read failed during merge",
				slog.String("sessionID", m.sessionID), slog.Any("error", err))
		}

		return nil
	}
	if !cached.IsGuest() {
		return nil
	}

	return cached
}

// handleSignOut discards the registered profile outright and activates a
// fresh guest profile for the current session. The asymmetry is deliberate:
// signing out does not carry registered-session activity into the next guest
// identity.
func handleSignOut(ctx context.Context, core *managerCore) error {
	core.mu.Lock()
	defer core.mu.Unlock()

	return handleSignOutLocked(ctx, core)
}

func handleSignOutLocked(ctx context.Context, core *managerCore) error {
	previous := ""
	if core.profile != nil {
		previous = core.profile.ID
	}

	core.profile = nil
	core.loadGuestLocked(ctx)
	core.profile.Touch(core.now())
	core.persist(ctx)

	core.log(ctx).Info("Signed out, guest profile active",
		slog.String("previousProfileID", previous),
		slog.String("profileID", core.profile.ID))

	return nil
}

// deleteAccount removes the registered identity and its profile document,
// then reverts the session to a fresh guest. The provider lookup tolerates an
// already-deleted account, but the document delete must succeed: it holds the
// customer's personal data.
func deleteAccount(ctx context.Context, core *managerCore, store repository.ProfileRepository) error {
	core.mu.Lock()
	defer core.mu.Unlock()

	if core.profile == nil {
		return errors.Wrap(domainerrors.ErrProfileNotFound, "profile manager not initialized")
	}
	if core.profile.IsGuest() {
		return errors.Wrap(domainerrors.ErrForbidden, "guest sessions have no account to delete")
	}
	if store == nil {
		return errors.New("account deletion requires the remote profile store")
	}

	accountID := core.profile.ID

	if _, err := core.identity.Lookup(ctx, accountID); err != nil {
		if !errors.Is(err, service.ErrIdentityNotFound) {
			return errors.Wrap(err, "failed to look up account for deletion")
		}
		core.log(ctx).Warn("Account already missing at the identity provider",
			slog.String("accountID", accountID))
	} else if err := core.identity.DeleteAccount(ctx, accountID); err != nil {
		return errors.Wrap(err, "failed to delete account at the identity provider")
	}

	if err := store.Delete(ctx, accountID); err != nil {
		return errors.Wrap(err, "failed to delete profile document")
	}

	if err := core.cache.DeleteProfile(ctx, core.sessionID); err != nil {
		core.log(ctx).Warn("Failed to remove session-cache entry on account deletion",
			slog.String("sessionID", core.sessionID), slog.Any("error", err))
	}

	core.log(ctx).Info("Account deleted", slog.String("accountID", accountID))

	return handleSignOutLocked(ctx, core)
}

// newRegisteredProfile creates a registered profile from the identity's
// known attributes when no remote document exists yet.
func newRegisteredProfile(ident *usecase.IdentityInfo, sessionID string, now time.Time) *entity.Profile {
	profile := entity.NewGuestProfile(sessionID, entity.Metadata{}, now)
	profile.ID = ident.ID
	profile.Type = entity.ProfileTypeRegistered
	profile.PersonalInfo.Email = ident.Email
	if ident.DisplayName != "" {
		profile.PersonalInfo.FirstName = ident.DisplayName
	}

	return profile
}

// mergeGuestIntoRegistered applies the guest-to-registered merge rule,
// field by field:
//   - cart: wholesale replace iff the guest cart has at least one item;
//     an empty guest cart leaves the registered cart untouched
//   - wishlist: union by product id, guest entries appended
//   - browsing history and analytics events: concatenated, guest after
//     registered, no de-duplication and no bound enforcement here (bounds
//     re-apply on the next individual append)
//   - visit counts: summed
func mergeGuestIntoRegistered(registered, guest *entity.Profile) {
	if !guest.Shopping.Cart.IsEmpty() {
		registered.Shopping.Cart = entity.Cart{
			Items:     guest.Shopping.Cart.Snapshot(),
			Total:     guest.Shopping.Cart.Total,
			UpdatedAt: guest.Shopping.Cart.UpdatedAt,
		}
	}

	for _, entry := range guest.Shopping.Wishlist {
		if !registered.Shopping.HasWishlisted(entry.ProductID) {
			registered.Shopping.Wishlist = append(registered.Shopping.Wishlist, entry)
		}
	}

	registered.Browsing.PageViews = append(registered.Browsing.PageViews, guest.Browsing.PageViews...)
	registered.Browsing.ProductViews = append(registered.Browsing.ProductViews, guest.Browsing.ProductViews...)
	registered.Analytics.Events = append(registered.Analytics.Events, guest.Analytics.Events...)
	registered.Metadata.VisitCount += guest.Metadata.VisitCount
}
