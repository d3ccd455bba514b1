// Package service defines the interfaces for external collaborators the
// domain depends on. Concrete implementations live under internal/infra.
package service

import (
	"context"
	"errors"
)

// ErrIdentityNotFound is returned when no authenticated identity exists for
// a lookup.
var ErrIdentityNotFound = errors.New("identity not found")

// ErrAccountExists is returned by CreateAccount when the email is already
// registered with the identity provider.
var ErrAccountExists = errors.New("account already exists")

// Identity is an authenticated customer as known to the identity provider.
type Identity struct {
	ID          string // Stable account identifier.
	Email       string
	DisplayName string
}

// IdentityProvider is the authentication source of truth.
type IdentityProvider interface {
	// CreateAccount registers a new identity and returns its identifier.
	CreateAccount(ctx context.Context, email, password string) (string, error)

	// SetDisplayName sets the display name on an identity. Best-effort for
	// conversion; failure does not abort the transition.
	SetDisplayName(ctx context.Context, id, displayName string) error

	// VerifyToken validates a client-supplied identity token and resolves the
	// identity it belongs to.
	VerifyToken(ctx context.Context, token string) (*Identity, error)

	// Lookup resolves an identity by its account identifier.
	// Returns ErrIdentityNotFound when the account does not exist.
	Lookup(ctx context.Context, id string) (*Identity, error)

	// DeleteAccount removes an identity. Backs the customer-initiated
	// account-deletion flow, which also purges the profile document.
	DeleteAccount(ctx context.Context, id string) error
}
