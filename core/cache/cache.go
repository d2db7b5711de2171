package cache

import (
	"context"
	"time"

	"go-poll-scheduler/core/config"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Store is a byte-oriented key/value cache with expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New builds the store named by source.cache_backend.
func New(cfg *config.Config) (Store, error) {
	switch cfg.Source.CacheBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.CacheDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, errors.Wrapf(err, "ping redis at %s", cfg.Redis.Addr)
		}
		return NewRedisStore(client), nil
	case "memory":
		return NewMemoryStore(cfg.Source.CacheSize, cfg.Source.CacheTTL), nil
	case "none", "":
		return Noop{}, nil
	default:
		return nil, errors.Errorf("unknown cache backend %q", cfg.Source.CacheBackend)
	}
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Delete(context.Context, string) error                     { return nil }
func (Noop) Close() error                                             { return nil }
