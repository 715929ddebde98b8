// README: Suggestion cache backed by Redis strings with a TTL.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"guava/internal/maps"
)

const suggestKeyPrefix = "places:suggest:"

type Cache interface {
	Get(ctx context.Context, query string) ([]maps.Suggestion, bool, error)
	Set(ctx context.Context, query string, suggestions []maps.Suggestion) error
}

type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{redis: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, query string) ([]maps.Suggestion, bool, error) {
	val, err := c.redis.Get(ctx, suggestKeyPrefix+query).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []maps.Suggestion
	if err := json.Unmarshal(val, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (c *RedisCache) Set(ctx context.Context, query string, suggestions []maps.Suggestion) error {
	buf, err := json.Marshal(suggestions)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, suggestKeyPrefix+query, buf, c.ttl).Err()
}
