package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// profileCacheTTL bounds staleness after out-of-band database edits. Every
// in-process mutation invalidates the entry eagerly.
const profileCacheTTL = 5 * time.Minute

// ProfileCache keeps sanitized user records in Redis so the profile endpoint
// does not hit Postgres on every request. Only sanitized records are stored;
// a credential hash never enters the cache.
type ProfileCache struct {
	client *redis.Client
}

func NewProfileCache(client *redis.Client) *ProfileCache {
	return &ProfileCache{client: client}
}

// getProfileKey generates the Redis key for a cached profile
func getProfileKey(id uuid.UUID) string {
	return fmt.Sprintf("profile:%s", id.String())
}

// Get returns the cached sanitized user, or nil on a miss. Cache failures are
// reported to the caller, which treats them as a miss.
func (c *ProfileCache) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	data, err := c.client.Get(ctx, getProfileKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached profile: %w", err)
	}

	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("failed to decode cached profile: %w", err)
	}

	return &u, nil
}

// Set stores a sanitized copy of the user.
func (c *ProfileCache) Set(ctx context.Context, u *User) error {
	data, err := json.Marshal(u.Sanitized())
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	if err := c.client.Set(ctx, getProfileKey(u.ID), data, profileCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache profile: %w", err)
	}

	return nil
}

// Invalidate drops the cached entry for a user.
func (c *ProfileCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, getProfileKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached profile: %w", err)
	}
	return nil
}
