package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a fixed-window rate limiter backed by Redis, for multi-instance
// deployments where InMemory would undercount.
type Redis struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedis allows up to limit requests per key per window, counted in Redis.
func NewRedis(client *redis.Client, limit int, window time.Duration) *Redis {
	return &Redis{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit:",
	}
}

func (r *Redis) Allow(key string) (allowed bool, retryAfterSec int) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	redisKey := fmt.Sprintf("%s%s:%d", r.prefix, key, time.Now().UnixNano()/int64(r.window))
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		// Fail open: a broken limiter should not take the API down.
		return true, 0
	}
	if count == 1 {
		r.client.Expire(ctx, redisKey, r.window)
	}
	if count > int64(r.limit) {
		retryAfterSec = int(r.window.Seconds())
		if retryAfterSec < 1 {
			retryAfterSec = 1
		}
		return false, retryAfterSec
	}
	return true, 0
}
