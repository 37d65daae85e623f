package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/console/internal/domain/order"
)

// DefaultKeyPrefix namespaces every key the console writes
const DefaultKeyPrefix = "console:"

// RedisOrderCache implements order.Cache on Redis so several console
// instances share one view. Page keys are tracked in a set so that
// InvalidateLists can drop them without scanning the keyspace.
type RedisOrderCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisOrderCache creates a cache on an existing client
func NewRedisOrderCache(client redis.UniversalClient, keyPrefix string) *RedisOrderCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisOrderCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisOrderCache) orderKey(id string) string {
	return c.keyPrefix + "order:" + id
}

func (c *RedisOrderCache) listKey(key string) string {
	return c.keyPrefix + "orders:" + key
}

func (c *RedisOrderCache) listIndexKey() string {
	return c.keyPrefix + "orders:index"
}

// GetOrder reads a cached order
func (c *RedisOrderCache) GetOrder(ctx context.Context, id string) (*order.Order, bool, error) {
	var o order.Order
	ok, err := c.get(ctx, c.orderKey(id), &o)
	if err != nil || !ok {
		return nil, false, err
	}
	return &o, true, nil
}

// SetOrder caches an order for ttl
func (c *RedisOrderCache) SetOrder(ctx context.Context, o *order.Order, ttl time.Duration) error {
	if o == nil || ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to encode order: %w", err)
	}
	if err := c.client.Set(ctx, c.orderKey(o.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache order: %w", err)
	}
	return nil
}

// InvalidateOrder drops a cached order
func (c *RedisOrderCache) InvalidateOrder(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, c.orderKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate order: %w", err)
	}
	return nil
}

// GetList reads a cached page
func (c *RedisOrderCache) GetList(ctx context.Context, key string) (*order.Page, bool, error) {
	var p order.Page
	ok, err := c.get(ctx, c.listKey(key), &p)
	if err != nil || !ok {
		return nil, false, err
	}
	return &p, true, nil
}

// SetList caches a page for ttl and records its key in the index
func (c *RedisOrderCache) SetList(ctx context.Context, key string, page *order.Page, ttl time.Duration) error {
	if page == nil || ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to encode order page: %w", err)
	}

	fullKey := c.listKey(key)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, fullKey, data, ttl)
		pipe.SAdd(ctx, c.listIndexKey(), fullKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to cache order page: %w", err)
	}
	return nil
}

// InvalidateLists drops every indexed page
func (c *RedisOrderCache) InvalidateLists(ctx context.Context) error {
	keys, err := c.client.SMembers(ctx, c.listIndexKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to read order page index: %w", err)
	}
	keys = append(keys, c.listIndexKey())
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate order pages: %w", err)
	}
	return nil
}

func (c *RedisOrderCache) get(ctx context.Context, key string, out any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		// an unreadable entry is a miss; drop it so it gets refilled
		_ = c.client.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

var _ order.Cache = (*RedisOrderCache)(nil)
