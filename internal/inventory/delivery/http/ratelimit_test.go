package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

// memoryLimiter counts hits per key without expiring them.
func memoryLimiter(maxRequests int) (*RateLimiter, map[string]int64) {
	hits := map[string]int64{}
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      time.Minute,
		count: func(_ context.Context, key string, _ time.Time) (int64, error) {
			n := hits[key]
			hits[key] = n + 1
			return n, nil
		},
	}, hits
}

func limitedRequest(rl *RateLimiter, userID uint) *httptest.ResponseRecorder {
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stock-transactions", nil)
	if userID != 0 {
		req = req.WithContext(WithActor(req.Context(), domain.Actor{UserID: userID}))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterRejectsOverLimit(t *testing.T) {
	rl, hits := memoryLimiter(2)

	first := limitedRequest(rl, 7)
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	second := limitedRequest(rl, 7)
	assert.Equal(t, http.StatusNoContent, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := limitedRequest(rl, 7)
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "60", third.Header().Get("Retry-After"))
	assert.Contains(t, third.Body.String(), `"retryable":true`)

	other := limitedRequest(rl, 8)
	assert.Equal(t, http.StatusNoContent, other.Code, "limits are per user")

	assert.Equal(t, int64(3), hits["inventory:ratelimit:user:7"])
	assert.Equal(t, int64(1), hits["inventory:ratelimit:user:8"])
}

func TestRateLimiterFallsBackToClientIP(t *testing.T) {
	rl, hits := memoryLimiter(5)

	limitedRequest(rl, 0)

	// httptest requests come from 192.0.2.1.
	assert.Equal(t, int64(1), hits["inventory:ratelimit:ip:192.0.2.1"])
}

func TestRateLimiterFailsOpen(t *testing.T) {
	rl := &RateLimiter{
		maxRequests: 1,
		window:      time.Minute,
		count: func(context.Context, string, time.Time) (int64, error) {
			return 0, errors.New("redis down")
		},
	}

	rec := limitedRequest(rl, 7)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
