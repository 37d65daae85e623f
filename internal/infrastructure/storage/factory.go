package storage

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/console/internal/domain/notification"
	"github.com/storefront/console/internal/infrastructure/config"
	"github.com/storefront/console/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// ErrBackendUnavailable is returned when the configured backend has no connection
var ErrBackendUnavailable = errors.New("storage backend unavailable")

// Backends carries the connections a store may be built on
type Backends struct {
	Database *persistence.Database
	Redis    redis.UniversalClient
	// RedisPrefix namespaces inbox keys in Redis
	RedisPrefix string
}

// NewStore returns the inbox store selected by cfg.Backend
func NewStore(cfg config.InboxConfig, backends Backends, logger *zap.Logger) (notification.Store, error) {
	switch cfg.Backend {
	case config.InboxBackendDatabase, "":
		if backends.Database == nil {
			return nil, fmt.Errorf("%w: database", ErrBackendUnavailable)
		}
		logger.Info("Using database inbox store")
		return persistence.NewKVStore(backends.Database.DB), nil
	case config.InboxBackendRedis:
		if backends.Redis == nil {
			return nil, fmt.Errorf("%w: redis", ErrBackendUnavailable)
		}
		logger.Info("Using Redis inbox store", zap.String("prefix", backends.RedisPrefix))
		return NewRedisStore(backends.Redis, backends.RedisPrefix), nil
	case config.InboxBackendMemory:
		logger.Warn("Using in-memory inbox store; notifications will not survive a restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown inbox backend %q", cfg.Backend)
	}
}
