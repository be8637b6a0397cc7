package factory

import (
	"context"
	"time"

	"github.com/akeren/participant-console/pkg/ratelimit"
	"github.com/go-redis/redis/v8"
)

type Cache interface {
	Ping(ctx context.Context) error
}

type RedisClientProvider interface {
	GetClient() *redis.Client
}

type RateLimiterFactory interface {
	CreateRateLimiter() ratelimit.RateLimiter
}

type DefaultRateLimiterFactory struct {
	config *ratelimit.RateLimitConfig
}

// NewDefaultRateLimiterFactory builds limiters backed by Redis when cache exposes a
// client, and in-memory otherwise.
func NewDefaultRateLimiterFactory(requests int, window time.Duration, keyPrefix string, cache Cache, logger ratelimit.Logger) *DefaultRateLimiterFactory {
	var redisClient *redis.Client
	if cache != nil {
		if provider, ok := cache.(RedisClientProvider); ok {
			redisClient = provider.GetClient()
		}
	}

	return &DefaultRateLimiterFactory{
		config: &ratelimit.RateLimitConfig{
			Requests:  requests,
			Window:    window,
			Redis:     redisClient,
			KeyPrefix: keyPrefix,
			Logger:    logger,
		},
	}
}

func (f *DefaultRateLimiterFactory) CreateRateLimiter() ratelimit.RateLimiter {
	return ratelimit.NewRateLimiter(f.config)
}

func (f *DefaultRateLimiterFactory) UsesRedis() bool {
	return f.config.Redis != nil
}
