package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/insights"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Cache key constants
const (
	InsightsKey     = "insights:%s"
	SystemHealthKey = "system:health"
)

// Cache is the Redis tier shared by every API instance.
type Cache struct {
	client      *redis.Client
	insightsTTL time.Duration
	logger      *logrus.Logger
}

func NewCache(client *redis.Client, insightsTTL time.Duration, logger *logrus.Logger) *Cache {
	return &Cache{
		client:      client,
		insightsTTL: insightsTTL,
		logger:      logger,
	}
}

// Load implements insights.SharedStore. A missing key is not an error.
func (c *Cache) Load(ctx context.Context, key string) (insights.Insights, bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf(InsightsKey, key)).Bytes()
	if err == redis.Nil {
		return insights.Insights{}, false, nil
	}
	if err != nil {
		return insights.Insights{}, false, err
	}

	var value insights.Insights
	if err := json.Unmarshal(data, &value); err != nil {
		return insights.Insights{}, false, fmt.Errorf("failed to unmarshal cached insights: %w", err)
	}
	return value, true, nil
}

// Save implements insights.SharedStore.
func (c *Cache) Save(ctx context.Context, key string, value insights.Insights) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal insights: %w", err)
	}
	return c.client.Set(ctx, fmt.Sprintf(InsightsKey, key), data, c.insightsTTL).Err()
}

// InvalidateInsights removes one shared insights entry
func (c *Cache) InvalidateInsights(ctx context.Context, key string) error {
	return c.client.Del(ctx, fmt.Sprintf(InsightsKey, key)).Err()
}

// CacheSystemHealth caches system health status
func (c *Cache) CacheSystemHealth(ctx context.Context, health []models.SystemHealth, expiration time.Duration) error {
	data, err := json.Marshal(health)
	if err != nil {
		return fmt.Errorf("failed to marshal system health: %w", err)
	}

	return c.client.Set(ctx, SystemHealthKey, data, expiration).Err()
}

// GetCachedSystemHealth retrieves cached system health
func (c *Cache) GetCachedSystemHealth(ctx context.Context) ([]models.SystemHealth, error) {
	data, err := c.client.Get(ctx, SystemHealthKey).Result()
	if err != nil {
		return nil, err
	}

	var health []models.SystemHealth
	err = json.Unmarshal([]byte(data), &health)
	return health, err
}

// Cache statistics
func (c *Cache) GetCacheStats(ctx context.Context) (map[string]string, error) {
	info, err := c.client.Info(ctx, "stats").Result()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"keyspace_hits":   extractStat(info, "keyspace_hits"),
		"keyspace_misses": extractStat(info, "keyspace_misses"),
	}, nil
}

func extractStat(info, key string) string {
	for _, line := range strings.Split(info, "\r\n") {
		if strings.HasPrefix(line, key+":") {
			return strings.TrimPrefix(line, key+":")
		}
	}
	return "0"
}
