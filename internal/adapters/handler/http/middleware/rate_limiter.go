package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/comitanigiacomo/kanso-streaks/internal/metrics"
)

// RateLimiterMiddleware is a fixed-window limiter shared across instances
// through Redis. Redis errors let the request through.
func RateLimiterMiddleware(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("rate_limit:%s", c.ClientIP())

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter skipped", zap.Error(err))
			c.Next()
			return
		}

		if count == 1 {
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				logger.Warn("rate limiter expire failed, deleting key", zap.String("key", key), zap.Error(err))
				rdb.Del(ctx, key)
				c.Next()
				return
			}
		}

		ttl, err := rdb.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = window
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(limit)-count), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

		if count > int64(limit) {
			tooMany(c, m, int(ttl.Seconds()))
			return
		}

		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalRateLimiter is the per-process token bucket used when Redis is not configured.
type LocalRateLimiter struct {
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	visitors map[string]*visitor
	mu       sync.Mutex
}

// NewLocalRateLimiter allows limit requests per window per client, with bursts up to limit.
func NewLocalRateLimiter(limit int, window time.Duration) *LocalRateLimiter {
	if limit < 1 {
		limit = 1
	}
	return &LocalRateLimiter{
		limit:    rate.Limit(float64(limit) / window.Seconds()),
		burst:    limit,
		idleTTL:  3 * window,
		visitors: make(map[string]*visitor),
	}
}

func (l *LocalRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Cleanup forgets idle clients until ctx is done.
func (l *LocalRateLimiter) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evictIdle(time.Now())
		}
	}
}

func (l *LocalRateLimiter) evictIdle(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idleTTL {
			delete(l.visitors, ip)
		}
	}
}

func (l *LocalRateLimiter) Middleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := l.get(c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.burst))

		if !limiter.Allow() {
			retry := limiter.Reserve()
			delay := retry.Delay()
			retry.Cancel()
			tooMany(c, m, int(delay.Seconds())+1)
			return
		}

		c.Next()
	}
}

func tooMany(c *gin.Context, m *metrics.Metrics, retryIn int) {
	if m != nil {
		m.RateLimited.Inc()
	}
	c.Header("Retry-After", strconv.Itoa(retryIn))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"status":     "error",
		"message":    "Too many requests. Slow down!",
		"retry_in_s": retryIn,
	})
}
