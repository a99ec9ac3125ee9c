// Package cache holds Redis-backed caches for computed results that are
// expensive to rebuild, currently just optimized route orderings.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultRouteTTL bounds how long a cached ordering is served before it is
// recomputed from fresh customer data.
const DefaultRouteTTL = 15 * time.Minute

// RouteCache stores optimized customer orderings keyed by a fingerprint of
// the route inputs. A miss is reported via the bool, not an error.
type RouteCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRouteCache(client *redis.Client, ttl time.Duration) *RouteCache {
	if ttl <= 0 {
		ttl = DefaultRouteTTL
	}
	return &RouteCache{client: client, ttl: ttl}
}

func (c *RouteCache) Get(ctx context.Context, key string) ([]uuid.UUID, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache.RouteCache.Get: %w", err)
	}

	var order []uuid.UUID
	if err := json.Unmarshal(raw, &order); err != nil {
		// A corrupt entry is treated as a miss so the route is recomputed.
		return nil, false, nil
	}
	return order, true, nil
}

func (c *RouteCache) Set(ctx context.Context, key string, order []uuid.UUID) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("cache.RouteCache.Set: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache.RouteCache.Set: %w", err)
	}
	return nil
}
