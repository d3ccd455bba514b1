// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
)

// managerCore holds the state and mutation logic shared by both Profile
// Manager variants. It exclusively owns the in-memory profile: operations
// acquire the manager mutex for their full duration: memory is always
// updated before the persistence step, and no two operations on the same
// session interleave.
type managerCore struct {
	mu      sync.Mutex
	profile *entity.Profile

	sessionID string
	cache     repository.SessionCache
	catalog   repository.CatalogRepository
	identity  service.IdentityProvider
	analytics service.AnalyticsPublisher
	logger    *slog.Logger
	now       func() time.Time

	// persist is installed by the variant: remote-backed managers schedule a
	// debounced store write (plus a guest cache write-through), the fallback
	// variant writes the cache synchronously.
	persist func(ctx context.Context)

	// store is installed by the remote-backed variant only. The fallback
	// variant leaves it nil and cannot serve registered profiles.
	store repository.ProfileRepository

	identityWaitTimeout time.Duration
}

// log returns a request-scoped logger if available, otherwise falls back to the manager's logger.
func (m *managerCore) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, m.logger)
}

// CurrentProfile returns a read-only snapshot of the authoritative profile,
// or nil if the manager has not been initialized. All writes go through the
// mutation methods.
func (m *managerCore) CurrentProfile() *entity.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.profile == nil {
		return nil
	}

	return m.profile.Clone()
}

// InitializeProfile loads or creates the profile for this session. It is
// fail-open: losing a session's history is acceptable, leaving the session
// without a profile is not, so every failure path ends in a fresh guest
// profile.
func (m *managerCore) InitializeProfile(ctx context.Context) *entity.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.profile != nil {
		return m.profile.Clone()
	}

	waitCtx, cancel := context.WithTimeout(ctx, m.identityWaitTimeout)
	defer cancel()

	if ident := deliverycontext.GetIdentity(ctx); ident != nil {
		if err := m.loadRegisteredLocked(waitCtx, &usecase.IdentityInfo{
			ID:          ident.ID,
			Email:       ident.Email,
			DisplayName: ident.DisplayName,
		}); err != nil {
			m.log(ctx).Warn("Failed to load registered profile, falling back to guest",
				slog.String("identityID", ident.ID), slog.Any("error", err))
		}
	}

	if m.profile == nil {
		m.loadGuestLocked(waitCtx)
	}

	m.profile.Metadata.VisitCount++
	m.profile.Touch(m.now())
	m.persist(ctx)

	m.log(ctx).Debug("Profile initialized",
		slog.String("profileID", m.profile.ID),
		slog.String("type", string(m.profile.Type)))

	return m.profile.Clone()
}

// loadGuestLocked restores the guest profile linked to this session from the
// session cache, or synthesizes a fresh one. Never fails.
func (m *managerCore) loadGuestLocked(ctx context.Context) {
	cached, err := m.cache.GetProfile(ctx, m.sessionID)
	if err == nil {
		m.profile = cached

		return
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		m.log(ctx).Warn("Session cache read failed, synthesizing guest profile",
			slog.String("sessionID", m.sessionID), slog.Any("error", err))
	}

	m.profile = entity.NewGuestProfile(m.sessionID, deliverycontext.GetClientMetadata(ctx), m.now())
}

// UpdateProfile shallow-merges personal info and preference fields.
func (m *managerCore) UpdateProfile(ctx context.Context, input *usecase.UpdateProfileInput) (*entity.Profile, error) {
	if input == nil {
		return nil, errors.New("update profile input is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.profile == nil {
		return nil, errors.Wrap(domainerrors.ErrProfileNotFound, "profile manager not initialized")
	}

	info := &m.profile.PersonalInfo
	if input.Email != nil {
		info.Email = *input.Email
	}
	if input.FirstName != nil {
		info.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		info.LastName = *input.LastName
	}
	if input.Phone != nil {
		info.Phone = *input.Phone
	}
	if input.Addresses != nil {
		info.Addresses = append([]string(nil), input.Addresses...)
	}
	if m.profile.Preferences == nil {
		m.profile.Preferences = map[string]any{}
	}
	for key, value := range input.Preferences {
		m.profile.Preferences[key] = value
	}

	m.profile.Touch(m.now())
	m.persist(ctx)

	return m.profile.Clone(), nil
}

// TrackAction appends to the analytics ring buffer and ships the event to
// the sink. Sink failures are invisible to the caller.
func (m *managerCore) TrackAction(ctx context.Context, action string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.trackActionLocked(ctx, action, data)
}

func (m *managerCore) trackActionLocked(ctx context.Context, action string, data map[string]any) {
	if m.profile == nil {
		return
	}

	now := m.now()
	pageURL := deliverycontext.GetPageURL(ctx)
	m.profile.AppendEvent(entity.AnalyticsEvent{
		Action:    action,
		Data:      data,
		PageURL:   pageURL,
		Timestamp: now,
	})
	m.profile.Touch(now)
	m.persist(ctx)

	m.publishEvent(ctx, action, data, pageURL, now)
}

// TrackPageView appends to the page-view ring buffer.
func (m *managerCore) TrackPageView(ctx context.Context, name string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.profile == nil {
		return
	}

	now := m.now()
	m.profile.AppendPageView(entity.PageView{Name: name, Data: data, ViewedAt: now})
	m.profile.Touch(now)
	m.persist(ctx)

	m.publishEvent(ctx, "page_view", map[string]any{"page": name}, deliverycontext.GetPageURL(ctx), now)
}

// TrackProductView appends to the product-view ring buffer.
func (m *managerCore) TrackProductView(ctx context.Context, productID string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.profile == nil {
		return
	}

	now := m.now()
	m.profile.AppendProductView(entity.ProductView{ProductID: productID, Data: data, ViewedAt: now})
	m.profile.Touch(now)
	m.persist(ctx)

	m.publishEvent(ctx, "product_view", map[string]any{"product_id": productID}, deliverycontext.GetPageURL(ctx), now)
}

// AddToCart aggregates quantity on an existing line or appends a new one.
func (m *managerCore) AddToCart(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.profile == nil {
		return errors.Wrap(domainerrors.ErrProfileNotFound, "profile manager not initialized")
	}

	if _, err := m.catalog.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return errors.Wrap(domainerrors.ErrProductNotFound, "cannot add unknown product to cart")
		}

		return errors.Wrap(err, "failed to resolve product for cart add")
	}

	now := m.now()
	m.profile.Shopping.Cart.Upsert(productID, quantity, now)
	if err := m.recomputeTotalLocked(ctx); err != nil {
		return err
	}
	m.profile.Touch(now)
	m.persist(ctx)

	m.publishEvent(ctx, "add_to_cart", map[string]any{"product_id": productID, "quantity": quantity}, "", now)

	return nil
}

// RemoveFromCart filters the line out and recomputes the total.
func (m *managerCore) RemoveFromCart(ctx context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.removeFromCartLocked(ctx, productID)
}

func (m *managerCore) removeFromCartLocked(ctx context.Context, productID string) error {
	if m.profile == nil {
		return errors.Wrap(domainerrors.ErrProfileNotFound, "profile manager not initialized")
	}

	now := m.now()
	m.profile.Shopping.Cart.Remove(productID, now)
	if err := m.recomputeTotalLocked(ctx); err != nil {
		return err
	}
	m.profile.Touch(now)
	m.persist(ctx)

	return nil
}

// UpdateCartQuantity sets a line's quantity; non-positive quantities remove
// the line.
func (m *managerCore) UpdateCartQuantity(ctx context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if quantity <= 0 {
		return m.removeFromCartLocked(ctx, productID)
	}

	if m.profile == nil {
		return errors.Wrap(domainerrors.ErrProfileNotFound, "profile manager not initialized")
	}

	now := m.now()
	m.profile.Shopping.Cart.SetQuantity(productID, quantity, now)
	if err := m.recomputeTotalLocked(ctx); err != nil {
		return err
	}
	m.profile.Touch(now)
	m.persist(ctx)

	return nil
}

// ClearCart snapshots a non-empty cart onto the abandoned ring buffer before
// resetting it.
func (m *managerCore) ClearCart(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.clearCartLocked(ctx, true)
}

// clearCartLocked resets the cart. When abandon is set and the cart held at
// least one item, a snapshot lands on the abandoned ring buffer first; the
// clear performed by a completed purchase skips the snapshot.
func (m *managerCore) clearCartLocked(ctx context.Context, abandon bool) error {
	if m.profile == nil {
		return errors.Wrap(domainerrors.ErrProfileNotFound, "profile manager not initialized")
	}

	now := m.now()
	if abandon && !m.profile.Shopping.Cart.IsEmpty() {
		m.profile.Shopping.PushAbandoned(m.profile.Shopping.Cart, now)
	}

	m.profile.Shopping.Cart = entity.Cart{UpdatedAt: now}
	m.profile.Touch(now)
	m.persist(ctx)

	return nil
}

// AddToWishlist adds a product snapshot to the wishlist; entries are unique
// by product id and re-adding is a no-op.
func (m *managerCore) AddToWishlist(ctx context.Context, productID string, productData map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.profile == nil {
		return errors.Wrap(domainerrors.ErrProfileNotFound, "profile manager not initialized")
	}

	if m.profile.Shopping.HasWishlisted(productID) {
		return nil
	}

	now := m.now()
	m.profile.Shopping.Wishlist = append(m.profile.Shopping.Wishlist, entity.WishlistEntry{
		ProductID:   productID,
		ProductData: productData,
		AddedAt:     now,
	})
	m.profile.Touch(now)
	m.persist(ctx)

	m.publishEvent(ctx, "add_to_wishlist", map[string]any{"product_id": productID}, "", now)

	return nil
}

// RemoveFromWishlist removes a wishlist entry by product id.
func (m *managerCore) RemoveFromWishlist(ctx context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.profile == nil {
		return errors.Wrap(domainerrors.ErrProfileNotFound, "profile manager not initialized")
	}

	entries := m.profile.Shopping.Wishlist[:0]
	for _, entry := range m.profile.Shopping.Wishlist {
		if entry.ProductID != productID {
			entries = append(entries, entry)
		}
	}
	m.profile.Shopping.Wishlist = entries
	m.profile.Touch(m.now())
	m.persist(ctx)

	return nil
}

// AddPurchase appends the completed order and empties the cart. The clear
// inside a purchase does not record the cart as abandoned: a paid cart is
// not an abandoned one.
func (m *managerCore) AddPurchase(ctx context.Context, input *usecase.PurchaseInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.profile == nil {
		return errors.Wrap(domainerrors.ErrProfileNotFound, "profile manager not initialized")
	}

	now := m.now()
	total := input.Total
	if total == 0 {
		total = m.profile.Shopping.Cart.Total
	}

	order := entity.Order{
		OrderID:     input.OrderID,
		Items:       m.profile.Shopping.Cart.Snapshot(),
		Total:       total,
		PaymentRef:  input.PaymentRef,
		PurchasedAt: now,
	}
	m.profile.Shopping.PurchaseHistory = append(m.profile.Shopping.PurchaseHistory, order)

	if err := m.clearCartLocked(ctx, false); err != nil {
		return err
	}

	m.publishEvent(ctx, "purchase", map[string]any{
		"order_id": order.OrderID,
		"total":    order.Total,
		"items":    len(order.Items),
	}, "", now)

	return nil
}

// CartView returns the denormalized cart projection: authoritative cart
// lines joined against the catalog. Lines whose product no longer resolves
// are silently dropped.
func (m *managerCore) CartView(ctx context.Context) ([]entity.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.profile == nil {
		return nil, errors.Wrap(domainerrors.ErrProfileNotFound, "profile manager not initialized")
	}

	lines, err := projectCart(ctx, m.catalog, m.profile.Shopping.Cart.Items)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build cart projection")
	}

	return lines, nil
}

// recomputeTotalLocked recalculates cart.total from catalog prices. The
// total is never trusted stale: every cart mutation ends here.
func (m *managerCore) recomputeTotalLocked(ctx context.Context) error {
	ids := make([]string, 0, len(m.profile.Shopping.Cart.Items))
	for _, item := range m.profile.Shopping.Cart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := m.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return errors.Wrap(err, "failed to load catalog prices for total recompute")
	}

	m.profile.Shopping.Cart.Recompute(func(productID string) (float64, bool) {
		product, ok := products[productID]
		if !ok {
			return 0, false
		}

		return product.Price, true
	})

	return nil
}

// publishEvent ships a profile event to the analytics sink. Fire-and-forget:
// failures are logged and swallowed.
func (m *managerCore) publishEvent(ctx context.Context, action string, data map[string]any, pageURL string, at time.Time) {
	if m.analytics == nil || m.profile == nil {
		return
	}

	event := &service.ProfileEvent{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		ProfileID: m.profile.ID,
		SessionID: m.sessionID,
		Action:    action,
		Data:      data,
		PageURL:   pageURL,
		Timestamp: at,
	}

	if err := m.analytics.PublishProfileEvent(ctx, event); err != nil {
		m.log(ctx).Warn("Failed to publish profile event",
			slog.String("action", action), slog.Any("error", err))
	}
}
