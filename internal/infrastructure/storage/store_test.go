package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/console/internal/domain/notification"
	"github.com/storefront/console/internal/infrastructure/config"
	"github.com/storefront/console/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// exerciseStore checks the contract every inbox store satisfies
func exerciseStore(t *testing.T, store notification.Store) {
	t.Helper()
	ctx := context.Background()
	key := notification.DefaultStorageKey

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, key, []byte(`[{"id":"a"}]`)))
	require.NoError(t, store.Put(ctx, key, []byte(`[]`)))

	value, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[]`, string(value))

	require.NoError(t, store.Delete(ctx, key))
	_, ok, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, store.Delete(ctx, key), "deleting a missing key succeeds")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, store.Put(ctx, "k", value))
	value[0] = 'x'

	got, _, _ := store.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func newMiniredisClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisStore(t *testing.T) {
	client, _ := newMiniredisClient(t)
	exerciseStore(t, NewRedisStore(client, "console:"))
}

func TestRedisStore_PrefixesKeys(t *testing.T) {
	client, mr := newMiniredisClient(t)
	store := NewRedisStore(client, "console:")

	require.NoError(t, store.Put(context.Background(), "dashboardNotifications", []byte(`[]`)))
	assert.True(t, mr.Exists("console:dashboardNotifications"))
	assert.Zero(t, mr.TTL("console:dashboardNotifications"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	client, mr := newMiniredisClient(t)
	store := NewRedisStore(client, "")
	mr.Close()

	assert.Error(t, store.Put(context.Background(), "k", []byte("v")))
}

func TestNewStore(t *testing.T) {
	logger := zaptest.NewLogger(t)

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	defer db.Close()
	client, _ := newMiniredisClient(t)

	backends := Backends{Database: db, Redis: client, RedisPrefix: "console:"}

	store, err := NewStore(config.InboxConfig{Backend: config.InboxBackendDatabase}, backends, logger)
	require.NoError(t, err)
	assert.IsType(t, &persistence.KVStore{}, store)
	exerciseStore(t, store)

	store, err = NewStore(config.InboxConfig{Backend: config.InboxBackendRedis}, backends, logger)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, store)

	store, err = NewStore(config.InboxConfig{Backend: config.InboxBackendMemory}, Backends{}, logger)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, err = NewStore(config.InboxConfig{Backend: config.InboxBackendRedis}, Backends{}, logger)
	assert.ErrorIs(t, err, ErrBackendUnavailable)

	_, err = NewStore(config.InboxConfig{Backend: "s3"}, backends, logger)
	assert.Error(t, err)
}
