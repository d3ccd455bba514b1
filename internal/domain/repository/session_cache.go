package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/entity"
)

// ErrCacheMiss is returned when no cached profile exists for a session.
var ErrCacheMiss = errors.New("session cache miss")

// SessionCache is the session-scoped persistent cache tier. It is keyed by
// the session identifier; a guest profile and its cache entry are linked
// through that same id.
type SessionCache interface {
	// GetProfile loads the cached profile for a session.
	// Returns ErrCacheMiss when nothing is cached.
	GetProfile(ctx context.Context, sessionID string) (*entity.Profile, error)

	// SaveProfile stores the profile under the session key.
	SaveProfile(ctx context.Context, sessionID string, profile *entity.Profile) error

	// DeleteProfile removes the cached profile. Removing a missing entry is
	// not an error.
	DeleteProfile(ctx context.Context, sessionID string) error
}
