package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qamaits/identity-server/pkg/database"
)

// ErrRateLimited is returned by Allow when the caller has exhausted its
// budget for the current window.
var ErrRateLimited = fmt.Errorf("rate limit exceeded")

// RateLimiter implements a sliding-window-log limiter over Redis sorted
// sets. One set per key, scored by request time.
type RateLimiter struct {
	redis *database.Redis
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis}
}

// Allow records a request under key and reports whether it fits within
// limit requests per window. When it does not, the error wraps
// ErrRateLimited and names the wait time.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	windowStart := now.Add(-window).Unix()
	if err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart)).Err(); err != nil {
		return false, fmt.Errorf("failed to trim window: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count window: %w", err)
	}

	if count >= int64(limit) {
		oldest, err := r.redis.Client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		if err == nil && len(oldest) > 0 {
			wait := window - time.Since(time.Unix(int64(oldest[0].Score), 0))
			return false, fmt.Errorf("%w, try again in %v", ErrRateLimited, wait.Round(time.Second))
		}
		return false, ErrRateLimited
	}

	member := fmt.Sprintf("%d", now.UnixNano())
	if err := r.redis.Client.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.Unix()),
		Member: member,
	}).Err(); err != nil {
		return false, fmt.Errorf("failed to record request: %w", err)
	}

	// Keep the set from lingering after traffic stops.
	_ = r.redis.Client.Expire(ctx, redisKey, window+time.Minute).Err()

	return true, nil
}

// Remaining returns how many requests the key may still make in the
// current window.
func (r *RateLimiter) Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	windowStart := time.Now().Add(-window).Unix()
	if err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart)).Err(); err != nil {
		return 0, fmt.Errorf("failed to trim window: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count window: %w", err)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
