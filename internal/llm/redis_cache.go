package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/service"
)

const redisKeyPrefix = "spice:classify:"

// RedisCache shares classifier answers between processes.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, url string, ttl time.Duration, logger *slog.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid redis url: %w", common.ErrInvalidConfig, err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	return newRedisCacheFromClient(client, ttl, logger), nil
}

func newRedisCacheFromClient(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl, logger: common.LoggerOrDefault(logger)}
}

// Get returns a cached value. Redis failures count as a miss.
func (r *RedisCache) Get(ctx context.Context, key string) (service.Classification, bool) {
	val, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Debug("Redis cache read failed", "key", key, "error", err)
		}
		return service.Classification{}, false
	}

	var value service.Classification
	if err := json.Unmarshal(val, &value); err != nil {
		r.logger.Debug("Redis cache entry unreadable", "key", key, "error", err)
		return service.Classification{}, false
	}
	return value, true
}

// Set stores a value with the cache TTL. Failures are logged and ignored.
func (r *RedisCache) Set(ctx context.Context, key string, value service.Classification) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, data, r.ttl).Err(); err != nil {
		r.logger.Debug("Redis cache write failed", "key", key, "error", err)
	}
}

// Close closes the Redis connection.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
