package marketdata

import (
	"context"
	"time"

	"github.com/wonny/equityscreen/internal/contracts"
	"github.com/wonny/equityscreen/internal/monitoring"
	"github.com/wonny/equityscreen/pkg/logger"
	"github.com/wonny/equityscreen/pkg/redis"
)

// snapshotCache is the subset of *redis.Cache used here
type snapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedProvider serves snapshots from Redis and falls through to the wrapped provider.
// Only successful snapshots with prices are stored.
type CachedProvider struct {
	next    contracts.MarketDataProvider
	cache   snapshotCache
	ttl     time.Duration
	logger  *logger.Logger
	metrics *monitoring.Metrics
}

// NewCachedProvider wraps next with a snapshot cache
func NewCachedProvider(next contracts.MarketDataProvider, cache snapshotCache, ttl time.Duration, log *logger.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = redis.TTLLong
	}
	return &CachedProvider{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

// WithMetrics records cache hits and misses on m
func (c *CachedProvider) WithMetrics(m *monitoring.Metrics) *CachedProvider {
	c.metrics = m
	return c
}

// Snapshot implements contracts.MarketDataProvider.
// Cache errors degrade to the wrapped provider.
func (c *CachedProvider) Snapshot(ctx context.Context, ticker string, period contracts.Period) (*contracts.RawSnapshot, error) {
	key := redis.SnapshotKey(ticker, period.String())

	var cached contracts.RawSnapshot
	found, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Snapshot cache read failed")
	}
	if found {
		c.metrics.CacheLookup(monitoring.CacheHit)
		return &cached, nil
	}
	c.metrics.CacheLookup(monitoring.CacheMiss)

	snapshot, err := c.next.Snapshot(ctx, ticker, period)
	if err != nil {
		return nil, err
	}

	if snapshot.HasPrices() {
		if err := c.cache.Set(ctx, key, snapshot, c.ttl); err != nil {
			c.logger.WithError(err).WithField("key", key).Warn("Snapshot cache write failed")
		}
	}
	return snapshot, nil
}
