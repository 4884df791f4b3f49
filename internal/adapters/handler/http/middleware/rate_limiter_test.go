package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streaks/internal/metrics"
)

func setupTestRedis(t *testing.T) *redis.Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       1,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping integration test (Redis down): %v", err)
	}

	rdb.FlushDB(ctx)
	return rdb
}

func hit(router *gin.Engine, path, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":4321"
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiterMiddleware_Integration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb := setupTestRedis(t)
	defer rdb.Close()

	ctx := context.Background()

	t.Run("Allow Requests under limit", func(t *testing.T) {
		rdb.FlushDB(ctx)

		limit := 5
		router := gin.New()
		router.Use(RateLimiterMiddleware(rdb, limit, time.Minute, zap.NewNop(), nil))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		for i := 1; i <= limit; i++ {
			w := hit(router, "/test", "192.168.1.100")

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, fmt.Sprintf("%d", limit), w.Header().Get("X-RateLimit-Limit"))
			assert.Equal(t, fmt.Sprintf("%d", limit-i), w.Header().Get("X-RateLimit-Remaining"))
		}
	})

	t.Run("Block Requests over limit", func(t *testing.T) {
		rdb.FlushDB(ctx)

		m := metrics.New()
		router := gin.New()
		router.Use(RateLimiterMiddleware(rdb, 2, time.Minute, zap.NewNop(), m))
		router.GET("/test-block", func(c *gin.Context) { c.Status(http.StatusOK) })

		ip := "192.168.1.101"
		assert.Equal(t, http.StatusOK, hit(router, "/test-block", ip).Code, "Request 1 should pass")
		assert.Equal(t, http.StatusOK, hit(router, "/test-block", ip).Code, "Request 2 should pass")

		w := hit(router, "/test-block", ip)
		assert.Equal(t, http.StatusTooManyRequests, w.Code, "Request 3 should be blocked")
		assert.Contains(t, w.Body.String(), "Too many requests")
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})
}

func TestRateLimiterMiddleware_FailOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)

	badRdb := redis.NewClient(&redis.Options{
		Addr:        "localhost:9999",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer badRdb.Close()

	router := gin.New()
	router.Use(RateLimiterMiddleware(badRdb, 5, time.Minute, zap.NewNop(), nil))
	router.GET("/test-fail-open", func(c *gin.Context) { c.String(http.StatusOK, "passed") })

	w := hit(router, "/test-fail-open", "10.0.0.1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "passed", w.Body.String())
}

func TestLocalRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Blocks after the burst, per client", func(t *testing.T) {
		m := metrics.New()
		limiter := NewLocalRateLimiter(3, time.Hour)

		router := gin.New()
		router.Use(limiter.Middleware(m))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, hit(router, "/test", "10.0.0.1").Code)
		}

		blocked := hit(router, "/test", "10.0.0.1")
		assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
		assert.Equal(t, "3", blocked.Header().Get("X-RateLimit-Limit"))

		assert.Equal(t, http.StatusOK, hit(router, "/test", "10.0.0.2").Code, "other clients keep their own bucket")
		assert.Len(t, limiter.visitors, 2)
		assert.Contains(t, limiter.visitors, "10.0.0.1")
	})

	t.Run("Idle clients are evicted", func(t *testing.T) {
		limiter := NewLocalRateLimiter(1, time.Minute)
		limiter.get("10.0.0.3")

		limiter.evictIdle(time.Now().Add(time.Minute))
		assert.Len(t, limiter.visitors, 1)

		limiter.evictIdle(time.Now().Add(10 * time.Minute))
		assert.Empty(t, limiter.visitors)
	})

	t.Run("Cleanup stops with the context", func(t *testing.T) {
		limiter := NewLocalRateLimiter(1, time.Minute)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			limiter.Cleanup(ctx)
			close(done)
		}()
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("cleanup did not stop")
		}
	})
}
