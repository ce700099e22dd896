// Package rolecache answers role lookups without a database round trip per
// request. It is an injected dependency, not a package-level singleton, so
// the auth middleware and the user handlers share one instance with
// explicit invalidation.
package rolecache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"campusdesk/internal/repository"
)

type Cache struct {
	rdb   *redis.Client
	users repository.UserRepository
	ttl   time.Duration
}

func New(rdb *redis.Client, users repository.UserRepository, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{rdb: rdb, users: users, ttl: ttl}
}

func key(userID string) string { return "role:" + userID }

// Role returns the user's current role, serving from redis when fresh.
// Redis failures degrade to a direct database lookup.
func (c *Cache) Role(ctx context.Context, userID string) (string, error) {
	if c.rdb != nil {
		// Any redis error, including a miss, falls through to the database.
		if v, err := c.rdb.Get(ctx, key(userID)).Result(); err == nil && v != "" {
			return v, nil
		}
	}

	u, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", nil
	}
	if c.rdb != nil {
		_ = c.rdb.Set(ctx, key(userID), u.Role, c.ttl).Err()
	}
	return u.Role, nil
}

// Invalidate drops the cached role; called whenever a role changes.
func (c *Cache) Invalidate(ctx context.Context, userID string) {
	if c.rdb != nil {
		_ = c.rdb.Del(ctx, key(userID)).Err()
	}
}
