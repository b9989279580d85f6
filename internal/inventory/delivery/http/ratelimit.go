package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

// RateLimiter caps API requests per caller using a Redis sorted-set sliding window.
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	// count records a hit for key and returns the hits already inside the window.
	count func(ctx context.Context, key string, now time.Time) (int64, error)
}

// NewRateLimiter creates a limiter backed by client.
func NewRateLimiter(client redis.UniversalClient, maxRequests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
	}
	rl.count = func(ctx context.Context, key string, now time.Time) (int64, error) {
		windowStart := now.Add(-rl.window)

		pipe := client.Pipeline()
		pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
		countCmd := pipe.ZCard(ctx, key)
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  float64(now.UnixNano()),
			Member: now.UnixNano(),
		})
		pipe.Expire(ctx, key, rl.window+time.Minute)

		if _, err := pipe.Exec(ctx); err != nil {
			return 0, err
		}
		return countCmd.Val(), nil
	}
	return rl
}

// Middleware must run after AuthMiddleware so requests are keyed by user.
// Redis failures let the request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identifier := "ip:" + clientIP(r)
		if actor, ok := ActorFromContext(r.Context()); ok {
			identifier = fmt.Sprintf("user:%d", actor.UserID)
		}

		now := time.Now()
		count, err := rl.count(r.Context(), "inventory:ratelimit:"+identifier, now)
		if err != nil {
			logger.Error(r.Context()).
				Err(err).
				Str("identifier", identifier).
				Msg("Rate limiter error")
			next.ServeHTTP(w, r)
			return
		}

		remaining := rl.maxRequests - int(count) - 1
		if remaining < 0 {
			remaining = 0
		}
		resetTime := now.Add(rl.window)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.maxRequests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if count >= int64(rl.maxRequests) {
			logger.Warn(r.Context()).
				Str("identifier", identifier).
				Int("limit", rl.maxRequests).
				Msg("Rate limit exceeded")

			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			respondJSON(w, http.StatusTooManyRequests, Response{
				Success:   false,
				Error:     "Rate limit exceeded",
				Message:   fmt.Sprintf("Too many requests. Try again in %v", rl.window.Round(time.Second)),
				Retryable: true,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
