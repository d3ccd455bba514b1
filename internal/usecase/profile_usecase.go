// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"storefront/internal/domain/entity"
)

// --- Input DTOs ---

// UpdateProfileInput carries the partial updates applied by UpdateProfile.
// Personal info and preference fields are shallow-merged; nil fields are
// left untouched.
type UpdateProfileInput struct {
	Email       *string        `json:"email,omitempty"`
	FirstName   *string        `json:"first_name,omitempty"`
	LastName    *string        `json:"last_name,omitempty"`
	Phone       *string        `json:"phone,omitempty"`
	Addresses   []string       `json:"addresses,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// SignUpInput defines the data required to convert a guest into a registered
// customer.
type SignUpInput struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// AuthChange is an identity transition delivered by the identity provider.
// A nil Identity means the customer signed out.
type AuthChange struct {
	Identity *IdentityInfo
}

// IdentityInfo mirrors the identity provider's view of an authenticated
// customer.
type IdentityInfo struct {
	ID          string
	Email       string
	DisplayName string
}

// PurchaseInput records a completed order against the profile.
type PurchaseInput struct {
	OrderID    string  `json:"order_id"`
	PaymentRef string  `json:"payment_ref,omitempty"`
	Total      float64 `json:"total"`
}

// --- Output DTOs ---

// ConversionOutput returns the result of a guest-to-registered conversion.
type ConversionOutput struct {
	Profile *entity.Profile
}

// ProfileUsecase is the Profile Manager's common contract. Both persistence
// variants implement it identically; calling code never branches on which
// variant is active.
type ProfileUsecase interface {
	// InitializeProfile loads or creates the current profile. It never
	// returns nil: on any internal failure it falls back to synthesizing a
	// fresh guest profile rather than leaving the session without one.
	InitializeProfile(ctx context.Context) *entity.Profile

	// CurrentProfile returns the authoritative in-memory profile, or nil if
	// the manager has not been initialized.
	CurrentProfile() *entity.Profile

	// UpdateProfile shallow-merges personal info and preference fields,
	// bumps updated_at and persists.
	UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*entity.Profile, error)

	// TrackAction appends to the analytics event ring buffer.
	TrackAction(ctx context.Context, action string, data map[string]any)

	// TrackPageView appends to the page-view ring buffer.
	TrackPageView(ctx context.Context, name string, data map[string]any)

	// TrackProductView appends to the product-view ring buffer.
	TrackProductView(ctx context.Context, productID string, data map[string]any)

	// AddToCart aggregates quantity on an existing line or appends a new
	// one, then recomputes the total and persists.
	AddToCart(ctx context.Context, productID string, quantity int) error

	// RemoveFromCart filters the line out, recomputes the total, persists.
	RemoveFromCart(ctx context.Context, productID string) error

	// UpdateCartQuantity sets a line's quantity; quantity <= 0 delegates to
	// RemoveFromCart.
	UpdateCartQuantity(ctx context.Context, productID string, quantity int) error

	// ClearCart snapshots a non-empty cart onto the abandoned ring buffer,
	// then resets the cart. Always persists.
	ClearCart(ctx context.Context) error

	// AddToWishlist adds a product to the wishlist; adding an id that is
	// already present is a no-op.
	AddToWishlist(ctx context.Context, productID string, productData map[string]any) error

	// RemoveFromWishlist removes a wishlist entry by product id.
	RemoveFromWishlist(ctx context.Context, productID string) error

	// AddPurchase appends the completed order to the purchase history and
	// empties the active cart. A purchased cart is not recorded as
	// abandoned.
	AddPurchase(ctx context.Context, input *PurchaseInput) error

	// ConvertGuestToRegistered performs the one-way guest-to-registered
	// transition. Failure of account creation aborts with no mutation.
	ConvertGuestToRegistered(ctx context.Context, input *SignUpInput) (*ConversionOutput, error)

	// HandleAuthChange reacts to an identity transition: sign-in merges
	// guest-session data into the registered profile, sign-out discards the
	// registered profile and synthesizes a fresh guest.
	HandleAuthChange(ctx context.Context, change AuthChange) error

	// DeleteAccount removes the registered identity and its profile
	// document, then reverts the session to a fresh guest profile. Rejected
	// for guest sessions.
	DeleteAccount(ctx context.Context) error

	// CartView returns the denormalized read-optimized cart projection.
	CartView(ctx context.Context) ([]entity.CartLine, error)

	// Flush forces any pending debounced write to complete. Called on
	// shutdown and by tests.
	Flush(ctx context.Context) error
}
