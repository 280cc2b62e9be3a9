package prayertimes

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores timings per city and calendar day.
type Cache interface {
	Get(ctx context.Context, city string, day time.Time) (Timings, bool, error)
	Set(ctx context.Context, city string, day time.Time, t Timings) error
}

// RedisCache keeps timings as JSON under "<prefix><city>:<YYYY-MM-DD>".
type RedisCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisCache builds the cache. ttl <= 0 -> 24h.
func NewRedisCache(client redis.Cmdable, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "prayertimes:"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(city string, day time.Time) string {
	return c.prefix + city + ":" + day.Format(time.DateOnly)
}

// Get returns the cached timings, if any.
func (c *RedisCache) Get(ctx context.Context, city string, day time.Time) (Timings, bool, error) {
	raw, err := c.client.Get(ctx, c.key(city, day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Timings{}, false, nil
	}
	if err != nil {
		return Timings{}, false, err
	}
	var t Timings
	if err := json.Unmarshal(raw, &t); err != nil {
		return Timings{}, false, err
	}
	return t, true, nil
}

// Set stores timings with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, city string, day time.Time, t Timings) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(city, day), raw, c.ttl).Err()
}
