package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig defines one operation's request budget per reset window.
type RateLimitConfig struct {
	Window time.Duration
	Limit  int
}

// RateLimiter enforces per-user, per-operation budgets backed by Redis, so
// limits hold across processes instead of living in ambient in-process state.
type RateLimiter struct {
	redis  *redis.Client
	limits map[string]RateLimitConfig
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, limits map[string]RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		limits: limits,
	}
}

// IsAllowed counts a request against the (operation, user) budget.
// Returns: allowed, remaining requests, reset time, error.
func (rl *RateLimiter) IsAllowed(ctx context.Context, operation, userID string) (bool, int, time.Time, error) {
	cfg, ok := rl.limits[operation]
	if !ok {
		return true, 0, time.Time{}, nil
	}

	windowStart := time.Now().Truncate(cfg.Window)
	key := fmt.Sprintf("rate_limit:%s:%s:%d", operation, userID, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, cfg.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := cfg.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= cfg.Limit, remaining, windowStart.Add(cfg.Window), nil
}

// Limit returns a middleware enforcing the budget for one operation.
func (rl *RateLimiter) Limit(operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), operation, fmt.Sprintf("%v", userID))
		if err != nil {
			// A broken limiter must not take requests down with it.
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(time.Until(resetTime).Seconds()),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
