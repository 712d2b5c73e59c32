package fxrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// DefaultRedisKey is where the shared rate is stored.
const DefaultRedisKey = "fx:inr:usd"

// RedisCache shares the rate between replicas. Redis failures degrade to
// calling next directly.
type RedisCache struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
	next   Source
}

// NewRedisCache wraps next with a Redis-backed cache.
func NewRedisCache(client redis.Cmdable, key string, ttl time.Duration, next Source) *RedisCache {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisCache{client: client, key: key, ttl: ttl, next: next}
}

// NewRedisClient connects to the Redis at url ("redis://host:6379/0").
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (c *RedisCache) INRToUSD(ctx context.Context) (decimal.Decimal, error) {
	cached, err := c.client.Get(ctx, c.key).Result()
	switch {
	case err == nil:
		if rate, perr := decimal.NewFromString(cached); perr == nil && rate.IsPositive() {
			return rate, nil
		}
		slog.Warn("discarding malformed cached exchange rate", "key", c.key, "value", cached)
	case errors.Is(err, redis.Nil):
	default:
		slog.Warn("redis exchange rate lookup failed", "key", c.key, "error", err)
	}

	rate, err := c.next.INRToUSD(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	if err := c.client.Set(ctx, c.key, rate.String(), c.ttl).Err(); err != nil {
		slog.Warn("redis exchange rate store failed", "key", c.key, "error", err)
	}
	return rate, nil
}
