package cache

import (
	"context"
	"testing"
	"time"

	"go-poll-scheduler/core/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "availability:1:0:10")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "availability:1:0:10", []byte(`[{"start":1,"end":2}]`), time.Minute))
	val, ok, err := s.Get(ctx, "availability:1:0:10")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"start":1,"end":2}]`, string(val))

	require.NoError(t, s.Delete(ctx, "availability:1:0:10"))
	_, ok, err = s.Get(ctx, "availability:1:0:10")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)

	require.NoError(t, s.Set(context.Background(), "k", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)
	_, ok, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok, "entry expires with its ttl")
}

func TestRedisStore_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}))
	mr.Close()

	_, _, err := s.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(8, time.Minute))
}

func TestMemoryStore_Evicts(t *testing.T) {
	s := NewMemoryStore(2, time.Minute)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, s.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, s.Set(ctx, "c", []byte("3"), 0))

	_, ok, _ := s.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "c")
	assert.True(t, ok)
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()

	cfg.Source.CacheBackend = "redis"
	s, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	_ = s.Close()

	cfg.Source.CacheBackend = "memory"
	s, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	cfg.Source.CacheBackend = "none"
	s, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, Noop{}, s)

	cfg.Source.CacheBackend = "disk"
	_, err = New(cfg)
	assert.Error(t, err)
}
