package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.POST("/generate", rl.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func post(r http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	req.RemoteAddr = ip + ":1234"
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRateLimiter_LocalPerClientIP(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Window: time.Hour, Limit: 2, KeyPrefix: "test"}, zap.NewNop())
	r := limitedRouter(rl)

	assert.Equal(t, http.StatusOK, post(r, "10.0.0.1").Code)
	rr := post(r, "10.0.0.1")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

	rr = post(r, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), "rate limit exceeded")

	// other clients have their own budget
	assert.Equal(t, http.StatusOK, post(r, "10.0.0.2").Code)
}

func TestRateLimiter_DisabledWithZeroLimit(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Window: time.Hour, Limit: 0}, zap.NewNop())
	r := limitedRouter(rl)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, post(r, "10.0.0.1").Code)
	}
}

func TestRateLimiter_LocalRefills(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Window: time.Minute, Limit: 1}, zap.NewNop())
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	ok, _, _, err := rl.IsAllowed(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, reset, err := rl.IsAllowed(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, reset.After(now))

	now = now.Add(2 * time.Minute)
	ok, _, _, err = rl.IsAllowed(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiter_Redis(t *testing.T) {
	if os.Getenv("REDIS_HOST") == "" {
		t.Skip("Skipping Redis-dependent test - REDIS_HOST not set")
	}
	client := redis.NewClient(&redis.Options{Addr: os.Getenv("REDIS_HOST") + ":6379"})
	t.Cleanup(func() { _ = client.Close() })

	rl := NewRateLimiter(client, RateLimitConfig{
		Window:    time.Minute,
		Limit:     1,
		KeyPrefix: "test:rate_limit:" + time.Now().Format(time.RFC3339Nano),
	}, zap.NewNop())
	r := limitedRouter(rl)

	assert.Equal(t, http.StatusOK, post(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(r, "10.0.0.1").Code)
}
