package fxrate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a fetched rate is reused.
const DefaultTTL = time.Hour

// Cached keeps the last rate in memory for a TTL. Concurrent misses share
// one upstream call. When a refresh fails, a previous rate younger than
// maxStale is returned instead.
type Cached struct {
	next     Source
	ttl      time.Duration
	maxStale time.Duration
	now      func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	rate      decimal.Decimal
	fetchedAt time.Time
}

// NewCached wraps next with an in-process TTL cache.
func NewCached(next Source, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cached{
		next:     next,
		ttl:      ttl,
		maxStale: 24 * time.Hour,
		now:      time.Now,
	}
}

func (c *Cached) INRToUSD(ctx context.Context) (decimal.Decimal, error) {
	if rate, ok := c.fresh(); ok {
		return rate, nil
	}

	v, err, _ := c.group.Do("inr-usd", func() (any, error) {
		if rate, ok := c.fresh(); ok {
			return rate, nil
		}
		rate, err := c.next.INRToUSD(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.rate, c.fetchedAt = rate, c.now()
		c.mu.Unlock()
		return rate, nil
	})
	if err != nil {
		if stale, ok := c.stale(); ok {
			slog.Warn("using stale exchange rate", "rate", stale.String(), "error", err)
			return stale, nil
		}
		return decimal.Zero, err
	}
	return v.(decimal.Decimal), nil
}

// Invalidate drops the cached rate.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.rate, c.fetchedAt = decimal.Zero, time.Time{}
	c.mu.Unlock()
}

func (c *Cached) fresh() (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fetchedAt.IsZero() || c.now().Sub(c.fetchedAt) >= c.ttl {
		return decimal.Zero, false
	}
	return c.rate, true
}

func (c *Cached) stale() (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fetchedAt.IsZero() || c.now().Sub(c.fetchedAt) >= c.maxStale {
		return decimal.Zero, false
	}
	return c.rate, true
}
