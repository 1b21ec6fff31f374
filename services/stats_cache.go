package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"research-tracker-api/config"

	"github.com/redis/go-redis/v9"
)

const (
	AdminStatsCacheKey = "stats:admin"
	statsCachePrefix   = "research-tracker:"
)

// StatsCache stores computed statistics as JSON.
type StatsCache interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// DefaultStatsCache uses config.Redis when it is connected.
func DefaultStatsCache() StatsCache {
	if config.Redis != nil {
		return NewRedisStatsCache(config.Redis)
	}
	return NopStatsCache{}
}

type RedisStatsCache struct {
	client *redis.Client
}

func NewRedisStatsCache(client *redis.Client) *RedisStatsCache {
	return &RedisStatsCache{client: client}
}

func (c *RedisStatsCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, statsCachePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisStatsCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsCachePrefix+key, raw, ttl).Err()
}

func (c *RedisStatsCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = statsCachePrefix + k
	}
	return c.client.Del(ctx, full...).Err()
}

// NopStatsCache never stores anything.
type NopStatsCache struct{}

func (NopStatsCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }

func (NopStatsCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (NopStatsCache) Invalidate(context.Context, ...string) error { return nil }
