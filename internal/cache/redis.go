package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/selivandex/ticker-sentiment/pkg/logger"
	"github.com/selivandex/ticker-sentiment/pkg/models"
)

const redisKeyPrefix = "sentiment:result:"

// RedisCommands is the part of the redis client the cache needs
type RedisCommands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisCache shares results between instances. Redis expires keys after the
// TTL; the stored timestamp is checked as well so reads never see stale data.
type RedisCache struct {
	client RedisCommands
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisCache creates a redis-backed cache
func NewRedisCache(client RedisCommands, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl, now: time.Now}
}

// Get returns the cached result. Redis failures count as a miss.
func (c *RedisCache) Get(ctx context.Context, ticker string) (*models.AggregationResult, bool) {
	key := redisKeyPrefix + Key(ticker)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("redis cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil || e.Value == nil {
		logger.Warn("redis cache entry malformed", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	if !e.fresh(c.now(), c.ttl) {
		return nil, false
	}
	return e.Value, true
}

// Put stores a result with the cache TTL
func (c *RedisCache) Put(ctx context.Context, ticker string, result *models.AggregationResult) {
	if result == nil {
		return
	}

	key := redisKeyPrefix + Key(ticker)

	raw, err := json.Marshal(entry{Value: result, CreatedAt: c.now()})
	if err != nil {
		logger.Warn("failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.Warn("redis cache write failed", zap.String("key", key), zap.Error(err))
	}
}
