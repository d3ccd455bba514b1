package redis

import (
	"context"
	"encoding/json"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// sessionCache implements repository.SessionCache on Redis. Profiles are
// stored as JSON under a per-session key; every save refreshes the TTL so an
// active guest session never expires out from under the customer.
type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache is the constructor for sessionCache.
func NewSessionCache(client *redis.Client, cfg *config.Config) repository.SessionCache {
	ttl := defaultSessionTTL
	if cfg.Redis != nil && cfg.Redis.SessionTTL > 0 {
		ttl = cfg.Redis.SessionTTL
	}

	return &sessionCache{client: client, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return "guest_profile_" + sessionID
}

// GetProfile loads the cached profile for a session.
func (c *sessionCache) GetProfile(ctx context.Context, sessionID string) (*entity.Profile, error) {
	payload, err := c.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrCacheMiss
		}

		return nil, errors.Wrap(err, "failed to read cached profile")
	}

	var profile entity.Profile
	if err := json.Unmarshal(payload, &profile); err != nil {
		// A corrupt entry is unrecoverable; treat it as a miss so the
		// caller synthesizes a fresh guest profile.
		return nil, repository.ErrCacheMiss
	}

	return &profile, nil
}

// SaveProfile stores the profile under the session key and refreshes the TTL.
func (c *sessionCache) SaveProfile(ctx context.Context, sessionID string, profile *entity.Profile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return errors.Wrap(err, "failed to encode profile for cache")
	}

	if err := c.client.Set(ctx, sessionKey(sessionID), payload, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to write cached profile")
	}

	return nil
}

// DeleteProfile removes the cached profile for a session.
func (c *sessionCache) DeleteProfile(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return errors.Wrap(err, "failed to delete cached profile")
	}

	return nil
}
