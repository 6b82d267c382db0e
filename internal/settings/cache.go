package settings

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iconicemr/dental-os-clinic-sub000/internal/availability"
)

const configCacheKey = "availability:config:v1"

// Cache holds the assembled availability configuration between reads, so
// booking-side queries don't reassemble it from four tables per call.
// Misses are never an error; the service falls through to the store.
type Cache interface {
	Get(ctx context.Context) (*availability.Config, bool)
	Set(ctx context.Context, cfg *availability.Config)
	Invalidate(ctx context.Context)
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context) (*availability.Config, bool) {
	raw, err := c.client.Get(ctx, configCacheKey).Bytes()
	if err != nil {
		return nil, false
	}

	var cfg availability.Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		// A stale or corrupt entry reads as a miss; the next Set
		// overwrites it.
		c.Invalidate(ctx)
		return nil, false
	}
	return &cfg, true
}

func (c *redisCache) Set(ctx context.Context, cfg *availability.Config) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, configCacheKey, raw, c.ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context) {
	_ = c.client.Del(ctx, configCacheKey).Err()
}
