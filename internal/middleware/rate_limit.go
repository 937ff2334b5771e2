package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter enforces a per-client fixed window in Redis. When Redis is not
// configured or a Redis call fails, an in-process token bucket per client
// takes over.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	logger *slog.Logger

	mu        sync.Mutex
	local     map[string]*localBucket
	lastSweep time.Time
	now       func() time.Time
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter instance. redisClient may be nil.
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		logger: logger,
		local:  make(map[string]*localBucket),
		now:    time.Now,
	}
}

// NewWriteRateLimiter limits catalog writes to perHour requests per client.
func NewWriteRateLimiter(redisClient *redis.Client, perHour int, logger *slog.Logger) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     perHour,
		KeyPrefix: "rate_limit:recipe_write",
	}, logger)
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting
// keyed by client IP.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, resetTime, backend := rl.Allow(c.Request.Context(), c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			rateLimitRejections.WithLabelValues(backend).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", rl.config.Limit, rl.config.Window),
				"retry_after": int(time.Until(resetTime).Seconds()),
			})
			return
		}

		c.Next()
	}
}

// Allow records one request for key and reports whether it is within the
// limit, how many requests remain and when the window resets. backend names
// the limiter that decided.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (allowed bool, remaining int, resetTime time.Time, backend string) {
	if rl.redis != nil {
		allowed, remaining, resetTime, err := rl.IsAllowed(ctx, key)
		if err == nil {
			return allowed, remaining, resetTime, "redis"
		}
		rl.logger.Warn("redis rate limit check failed, using local limiter", "error", err)
	}
	allowed, remaining, resetTime = rl.allowLocal(key)
	return allowed, remaining, resetTime, "local"
}

// IsAllowed checks if a request from the given client is allowed using Redis
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	now := time.Now()
	windowStart := now.Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := max(rl.config.Limit-count, 0)
	resetTime := windowStart.Add(rl.config.Window)

	return count <= rl.config.Limit, remaining, resetTime, nil
}

func (rl *RateLimiter) allowLocal(key string) (bool, int, time.Time) {
	now := rl.now()

	rl.mu.Lock()
	rl.sweepLocked(now)
	bucket, ok := rl.local[key]
	if !ok {
		every := rl.config.Window / time.Duration(max(rl.config.Limit, 1))
		bucket = &localBucket{limiter: rate.NewLimiter(rate.Every(every), rl.config.Limit)}
		rl.local[key] = bucket
	}
	bucket.lastSeen = now
	rl.mu.Unlock()

	allowed := bucket.limiter.AllowN(now, 1)
	remaining := max(int(bucket.limiter.TokensAt(now)), 0)
	return allowed, remaining, now.Add(rl.config.Window)
}

// sweepLocked drops buckets idle for a whole window, at most once per
// window. Such a bucket has refilled completely, so a fresh one is
// equivalent. rl.mu must be held.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.config.Window {
		return
	}
	for key, bucket := range rl.local {
		if now.Sub(bucket.lastSeen) >= rl.config.Window {
			delete(rl.local, key)
		}
	}
	rl.lastSweep = now
}
