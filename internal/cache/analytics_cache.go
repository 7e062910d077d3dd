package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	summaryKeyPrefix = "helpdesk:analytics:"
	summaryKeyAll    = summaryKeyPrefix + "all"
)

// AnalyticsCache keeps computed analytics summaries in Redis for a short
// TTL. A nil client or TTL of zero disables caching; every mutation
// invalidates both the global entry and the owner-scoped entry.
type AnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewAnalyticsCache constructs the cache.
func NewAnalyticsCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *AnalyticsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsCache{client: client, ttl: ttl, logger: logger}
}

func (c *AnalyticsCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func scopeKey(ownerID *string) string {
	if ownerID == nil {
		return summaryKeyAll
	}
	return summaryKeyPrefix + "owner:" + *ownerID
}

// Get fetches a cached summary into out. Returns false on miss or any
// cache error; cache trouble never fails the read path.
func (c *AnalyticsCache) Get(ctx context.Context, ownerID *string, out any) bool {
	if !c.enabled() {
		return false
	}
	raw, err := c.client.Get(ctx, scopeKey(ownerID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("analytics cache read failed", zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("analytics cache decode failed", zap.Error(err))
		return false
	}
	return true
}

// Set stores a computed summary.
func (c *AnalyticsCache) Set(ctx context.Context, ownerID *string, summary any) {
	if !c.enabled() {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		c.logger.Warn("analytics cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, scopeKey(ownerID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("analytics cache write failed", zap.Error(err))
	}
}

// Invalidate drops cached summaries affected by a ticket mutation.
func (c *AnalyticsCache) Invalidate(ctx context.Context, ownerID string) {
	if !c.enabled() {
		return
	}
	keys := []string{summaryKeyAll, summaryKeyPrefix + "owner:" + ownerID}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("analytics cache invalidation failed", zap.Error(err))
	}
}
