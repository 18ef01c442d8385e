package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/services"
)

var _ services.DashboardCache = (*AnalyticsCache)(nil)

// AnalyticsCache stores serialized dashboards in redis. Keys embed the
// user id right after the prefix so InvalidateUser can match them with a
// single scan pattern.
type AnalyticsCache struct {
	client *redis.Client
}

func NewAnalyticsCache(client *redis.Client) *AnalyticsCache {
	return &AnalyticsCache{client: client}
}

func (c *AnalyticsCache) Get(ctx context.Context, key string) (*domain.Dashboard, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dashboard cache read: %w", err)
	}

	var dashboard domain.Dashboard
	if err := json.Unmarshal([]byte(val), &dashboard); err != nil {
		// Corrupted entry: drop it and report a miss.
		c.client.Del(ctx, key)
		return nil, nil
	}

	return &dashboard, nil
}

func (c *AnalyticsCache) Set(ctx context.Context, key string, dashboard *domain.Dashboard, ttl time.Duration) error {
	data, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("dashboard cache marshal: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("dashboard cache write: %w", err)
	}
	return nil
}

func (c *AnalyticsCache) InvalidateUser(ctx context.Context, userID string) error {
	pattern := fmt.Sprintf("dashboard:%s:*", userID)

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("dashboard cache scan: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("dashboard cache invalidation: %w", err)
	}
	return nil
}
