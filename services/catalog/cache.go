package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/KowsickReddy/TravelGo/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const searchKeyPrefix = "services:search:"

// SearchCache stores search results. Implementations swallow their own
// errors: a cache failure degrades to a store read, never to a failed request.
type SearchCache interface {
	Get(ctx context.Context, key string) ([]models.Service, bool)
	Set(ctx context.Context, key string, services []models.Service)
	Invalidate(ctx context.Context)
}

// NopCache disables caching.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]models.Service, bool) { return nil, false }
func (NopCache) Set(context.Context, string, []models.Service)        {}
func (NopCache) Invalidate(context.Context)                           {}

// RedisSearchCache keeps search results in Redis for a fixed TTL.
type RedisSearchCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisSearchCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisSearchCache {
	return &RedisSearchCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisSearchCache) Get(ctx context.Context, key string) ([]models.Service, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Search cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var services []models.Service
	if err := json.Unmarshal(data, &services); err != nil {
		c.logger.Warn("Discarding corrupt search cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return services, true
}

func (c *RedisSearchCache) Set(ctx context.Context, key string, services []models.Service) {
	data, err := json.Marshal(services)
	if err != nil {
		c.logger.Warn("Failed to encode search results", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Search cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every cached search.
func (c *RedisSearchCache) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, searchKeyPrefix+"*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("Search cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Search cache invalidation failed", zap.Int("keys", len(keys)), zap.Error(err))
	}
}

// searchKey derives a stable cache key from the normalized filter.
func searchKey(filter models.ServiceSearch) string {
	data, _ := json.Marshal(filter)
	sum := sha256.Sum256(data)
	return searchKeyPrefix + hex.EncodeToString(sum[:12])
}
