// Package cache stores server views (order details, order lists, menus)
// that push events invalidate.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
	"github.com/vikram583135/platepal2.o-sub000/internal/repo"
)

var _ repo.ViewCache = (*RedisViewCache)(nil)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type RedisViewCache struct {
	client *redis.Client
	prefix string
}

func NewRedisViewCache(cfg RedisConfig) *RedisViewCache {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "views:"
	}

	return &RedisViewCache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		prefix: prefix,
	}
}

func (c *RedisViewCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func (c *RedisViewCache) Close() error {
	return c.client.Close()
}

func (c *RedisViewCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get view %s: %w", key, err)
	}
	return b, nil
}

func (c *RedisViewCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set view %s: %w", key, err)
	}
	return nil
}

func (c *RedisViewCache) Invalidate(ctx context.Context, keys ...string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}

	n, err := c.client.Del(ctx, full...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate views: %w", err)
	}
	return int(n), nil
}
