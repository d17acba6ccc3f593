package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tagmark/tagmark/internal/auth"
)

const (
	// identityCachePrefix is the Redis key prefix for resolved identities.
	identityCachePrefix = "auth:user:"
	// identityCacheTTL bounds how long a deleted or renamed user can still
	// authenticate with a valid token. Kept short.
	identityCacheTTL = 5 * time.Minute
)

// cachedIdentity is the identity record stored in Redis.
type cachedIdentity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// GetIdentity retrieves a cached identity by username.
// Returns nil on a cache miss.
func (c *Cache) GetIdentity(ctx context.Context, username string) (*auth.Identity, error) {
	key := identityCachePrefix + username

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached cachedIdentity
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &auth.Identity{
		UserID:   cached.UserID,
		Username: cached.Username,
	}, nil
}

// SetIdentity caches a resolved identity.
func (c *Cache) SetIdentity(ctx context.Context, id *auth.Identity) error {
	key := identityCachePrefix + id.Username

	data, err := json.Marshal(cachedIdentity{
		UserID:   id.UserID,
		Username: id.Username,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	if err := c.client.Set(ctx, key, data, identityCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache identity: %w", err)
	}

	return nil
}
