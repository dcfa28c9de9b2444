package cache

import (
	"context"
	"time"
)

// KeyDashboardStats is the cache key for the dashboard overview payload.
const KeyDashboardStats = "pharmapos:dashboard:stats"

// StatsCache holds precomputed dashboard payloads. The dashboard is
// read far more often than stock changes, so a short TTL is enough.
type StatsCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// NoopStatsCache is used when no REDIS_ADDR is configured.
type NoopStatsCache struct{}

func (NoopStatsCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopStatsCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

func (NoopStatsCache) Invalidate(_ context.Context, _ ...string) error {
	return nil
}
