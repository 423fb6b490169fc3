package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/caronte/pkg/credstore"
	"github.com/aussiebroadwan/caronte/pkg/credstore/credstoretest"
	"github.com/aussiebroadwan/caronte/pkg/credstore/redisstore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisBackend(t *testing.T) {
	credstoretest.RunBackendTests(t, func(t *testing.T) credstore.Backend {
		_, client := newTestRedis(t)
		return redisstore.New(client, "", 0)
	})
}

func TestRedisKeysAndTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	s := redisstore.New(client, "app", time.Hour)

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "abc", "a.b.c"))

	got, err := mr.Get("app:abc")
	require.NoError(t, err)
	require.Equal(t, "a.b.c", got)
	require.Equal(t, time.Hour, mr.TTL("app:abc"))

	mr.FastForward(2 * time.Hour)
	_, err = s.Get(ctx, "abc")
	require.ErrorIs(t, err, credstore.ErrNotFound)
}

func TestRedisReadRefreshesTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	s := redisstore.New(client, "app", time.Hour)

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "abc", "a.b.c"))

	mr.FastForward(40 * time.Minute)
	_, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, time.Hour, mr.TTL("app:abc"))

	mr.FastForward(40 * time.Minute)
	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, "a.b.c", got)
}

func TestRedisPing(t *testing.T) {
	mr, client := newTestRedis(t)
	s := redisstore.New(client, "", 0)

	require.NoError(t, s.Ping(context.Background()))

	mr.Close()
	require.Error(t, s.Ping(context.Background()))
}

func TestNewFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := redisstore.NewFromURL("redis://"+mr.Addr()+"/0", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Ping(context.Background()))

	_, err = redisstore.NewFromURL("not a url", 0)
	require.Error(t, err)
}
