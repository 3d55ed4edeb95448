package redis

import (
	"context"
	"time"
)

const rateLimitPrefix = "rate_limit:"

// RateLimiter counts requests per key in fixed windows
type RateLimiter struct {
	client *Client
	window time.Duration
}

// NewRateLimiter creates a limiter with the given window
func NewRateLimiter(client *Client, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, window: window}
}

// Hit counts one request for key and returns the count in the current window
// together with the time left until it resets.
func (l *RateLimiter) Hit(ctx context.Context, key string) (int64, time.Duration, error) {
	k := rateLimitPrefix + key

	count, err := l.client.Redis.Incr(ctx, k).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := l.client.Redis.Expire(ctx, k, l.window).Err(); err != nil {
			return count, l.window, err
		}
	}

	ttl := l.client.Redis.PTTL(ctx, k)
	left := ttl.Val()
	if left < 0 {
		left = l.window
	}
	return count, left, nil
}
