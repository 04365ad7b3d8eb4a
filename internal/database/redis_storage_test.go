package database

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var _ fiber.Storage = (*RedisStorage)(nil)

func newTestStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStorage(client, ""), mr
}

func TestRedisStorageRoundTrip(t *testing.T) {
	storage, mr := newTestStorage(t)

	value, err := storage.Get("caller-1")
	require.NoError(t, err)
	require.Nil(t, value)

	require.NoError(t, storage.Set("caller-1", []byte("3"), time.Minute))
	require.True(t, mr.Exists("reports:limiter:caller-1"))

	value, err = storage.Get("caller-1")
	require.NoError(t, err)
	require.Equal(t, []byte("3"), value)

	mr.FastForward(2 * time.Minute)
	value, err = storage.Get("caller-1")
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestRedisStorageDeleteAndReset(t *testing.T) {
	storage, mr := newTestStorage(t)
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, storage.Set("a", []byte("1"), 0))
	require.NoError(t, storage.Set("b", []byte("2"), 0))
	require.NoError(t, storage.Delete("a"))
	require.False(t, mr.Exists("reports:limiter:a"))

	require.NoError(t, storage.Reset())
	require.False(t, mr.Exists("reports:limiter:b"))
	require.True(t, mr.Exists("unrelated"))
	require.NoError(t, storage.Close())
}
