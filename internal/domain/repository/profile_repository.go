// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/entity"
)

// ErrProfileNotFound is a domain-specific error returned when no profile
// document exists for an identifier.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository is the remote authoritative profile store: one document
// per profile, addressable by profile id.
type ProfileRepository interface {
	// Get retrieves the profile document for an id.
	// Returns ErrProfileNotFound when no document exists.
	Get(ctx context.Context, id string) (*entity.Profile, error)

	// Set writes the full profile document, overwriting any existing one.
	Set(ctx context.Context, profile *entity.Profile) error

	// Merge performs a partial (merge) write of the given profile fields.
	Merge(ctx context.Context, profile *entity.Profile) error

	// Delete removes the profile document. Deleting a missing document is
	// not an error.
	Delete(ctx context.Context, id string) error

	// Ping verifies the store is reachable. Used once at startup to choose
	// between the remote-backed and cache-only manager variants.
	Ping(ctx context.Context) error
}
