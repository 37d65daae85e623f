package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/console/internal/domain/order"
	"github.com/storefront/console/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// OrderCacheFactory creates the order cache selected by configuration
type OrderCacheFactory struct {
	cfg    config.CacheConfig
	redis  redis.UniversalClient
	logger *zap.Logger
}

// OrderCacheFactoryOption is a functional option for configuring the factory
type OrderCacheFactoryOption func(*OrderCacheFactory)

// WithRedisClient supplies the shared Redis client
func WithRedisClient(client redis.UniversalClient) OrderCacheFactoryOption {
	return func(f *OrderCacheFactory) {
		f.redis = client
	}
}

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) OrderCacheFactoryOption {
	return func(f *OrderCacheFactory) {
		f.logger = logger
	}
}

// NewOrderCacheFactory creates a new factory
func NewOrderCacheFactory(cfg config.CacheConfig, opts ...OrderCacheFactoryOption) *OrderCacheFactory {
	f := &OrderCacheFactory{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the configured cache, or nil when caching is off.
// A redis backend without a client falls back to memory with a warning.
func (f *OrderCacheFactory) Create() (order.Cache, error) {
	switch f.cfg.Backend {
	case config.CacheBackendNone:
		f.logger.Info("Order cache disabled")
		return nil, nil
	case config.CacheBackendRedis:
		if f.redis != nil {
			f.logger.Info("Using Redis order cache", zap.String("prefix", f.cfg.Prefix))
			return NewRedisOrderCache(f.redis, f.cfg.Prefix), nil
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory order cache. " +
			"Console instances will not share cached orders.")
		return NewMemoryOrderCache(), nil
	case config.CacheBackendMemory, "":
		f.logger.Info("Using in-memory order cache")
		return NewMemoryOrderCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", f.cfg.Backend)
	}
}
