package firestore

import (
	"context"

	"storefront/config"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultProfileCollection = "profiles"

// profileRepository implements repository.ProfileRepository on Firestore:
// one document per profile, document id equals profile id.
type profileRepository struct {
	client     *firestore.Client
	collection string
}

// NewProfileRepository is the constructor for profileRepository.
func NewProfileRepository(client *firestore.Client, cfg *config.Config) repository.ProfileRepository {
	collection := defaultProfileCollection
	if cfg.Firebase != nil && cfg.Firebase.ProfileCollection != "" {
		collection = cfg.Firebase.ProfileCollection
	}

	return &profileRepository{client: client, collection: collection}
}

func (repo *profileRepository) col() *firestore.CollectionRef {
	return repo.client.Collection(repo.collection)
}

// Get retrieves the profile document for an id.
func (repo *profileRepository) Get(ctx context.Context, id string) (*entity.Profile, error) {
	snap, err := repo.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrProfileNotFound
		}

		return nil, errors.Wrap(err, "failed to get profile document")
	}

	var profile entity.Profile
	if err := snap.DataTo(&profile); err != nil {
		return nil, errors.Wrap(err, "failed to decode profile document")
	}

	return &profile, nil
}

// Set writes the full profile document, overwriting any existing one.
func (repo *profileRepository) Set(ctx context.Context, profile *entity.Profile) error {
	if _, err := repo.col().Doc(profile.ID).Set(ctx, profile); err != nil {
		return errors.Wrap(err, "failed to set profile document")
	}

	return nil
}

// Merge performs a partial write of the given profile fields.
func (repo *profileRepository) Merge(ctx context.Context, profile *entity.Profile) error {
	if _, err := repo.col().Doc(profile.ID).Set(ctx, profile, firestore.MergeAll); err != nil {
		return errors.Wrap(err, "failed to merge profile document")
	}

	return nil
}

// Delete removes the profile document. Firestore treats deleting a missing
// document as success, matching the contract.
func (repo *profileRepository) Delete(ctx context.Context, id string) error {
	if _, err := repo.col().Doc(id).Delete(ctx); err != nil {
		return errors.Wrap(err, "failed to delete profile document")
	}

	return nil
}

// Ping verifies the store is reachable with a cheap read of a known-missing
// document. Firestore has no dedicated health endpoint; NotFound proves the
// round trip succeeded.
func (repo *profileRepository) Ping(ctx context.Context) error {
	_, err := repo.col().Doc("__ping__").Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return errors.Wrap(err, "firestore ping failed")
	}

	return nil
}
