package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheVersionKey = "catalog:version"

// Cache wraps Redis based caching for catalog listings with versioning
// controls. Any catalog write bumps the version so stale listings are never
// served after a rate change.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Bump invalidates all cached listings by advancing the version counter.
func (c *Cache) Bump(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Incr(ctx, cacheVersionKey).Err()
}

type listLoader[T any] func(ctx context.Context, filters ListFilters) ([]T, int, error)

type cachedList[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// ListFabrics serves the fabric listing through the cache.
func (c *Cache) ListFabrics(ctx context.Context, filters ListFilters, loader listLoader[Fabric]) ([]Fabric, int, error) {
	return fetchList(ctx, c, "fabrics", filters, loader)
}

// ListItemTypes serves the item-type listing through the cache.
func (c *Cache) ListItemTypes(ctx context.Context, filters ListFilters, loader listLoader[ItemType]) ([]ItemType, int, error) {
	return fetchList(ctx, c, "item_types", filters, loader)
}

func fetchList[T any](ctx context.Context, c *Cache, kind string, filters ListFilters, loader listLoader[T]) ([]T, int, error) {
	if loader == nil {
		return nil, 0, errors.New("catalog: cache loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx, filters)
	}

	ver, err := c.Version(ctx)
	if err != nil {
		// Cache unavailable; fall through to the store.
		return loader(ctx, filters)
	}
	key := fmt.Sprintf("catalog:%s:%s:%d:%d:%d", kind, filters.Search, filters.Limit, filters.Offset, ver)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached cachedList[T]
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached.Items, cached.Total, nil
		}
	} else if err != redis.Nil {
		return loader(ctx, filters)
	}

	// Collapse concurrent misses for the same key into one store read.
	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		items, total, err := loader(ctx, filters)
		if err != nil {
			return nil, err
		}
		entry := cachedList[T]{Items: items, Total: total}
		if raw, err := json.Marshal(entry); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttl).Err()
		}
		return entry, nil
	})
	if err != nil {
		return nil, 0, err
	}
	entry := result.(cachedList[T])
	return entry.Items, entry.Total, nil
}
