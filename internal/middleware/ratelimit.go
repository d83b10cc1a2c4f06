package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/config"
)

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	// Max requests per window
	Max int
	// Window duration
	Window time.Duration
	// Key generator function
	KeyGenerator func(*fiber.Ctx) string
	// Skip function
	Skip func(*fiber.Ctx) bool
	// Custom limit exceeded handler
	LimitReached fiber.Handler
}

// RateLimitConfigFrom builds the limiter settings from application config.
// Burst is added on top of the per-minute allowance.
func RateLimitConfigFrom(cfg config.RateLimitConfig) RateLimitConfig {
	rl := DefaultRateLimitConfig()
	if cfg.RequestsPerMinute > 0 {
		rl.Max = cfg.RequestsPerMinute + cfg.Burst
	}
	return rl
}

// DefaultRateLimitConfig returns default rate limit config
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Max:          100,
		Window:       time.Minute,
		KeyGenerator: CallerKey,
		Skip:         HealthSkipper,
		LimitReached: func(c *fiber.Ctx) error {
			return deny(c, fiber.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
		},
	}
}

// CallerKey limits API keys and users individually and anonymous callers by IP
func CallerKey(c *fiber.Ctx) string {
	if key, ok := GetAPIKey(c); ok {
		return "apikey:" + key.ID.String()
	}
	if userID, ok := GetUserID(c); ok {
		return "user:" + userID.String()
	}
	return "ip:" + c.IP()
}

// RateLimitMiddleware is a sliding window rate limiter backed by Redis
type RateLimitMiddleware struct {
	redis  redis.UniversalClient
	config RateLimitConfig
	logger *zap.Logger
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(redisClient redis.UniversalClient, logger *zap.Logger, config ...RateLimitConfig) *RateLimitMiddleware {
	cfg := DefaultRateLimitConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return &RateLimitMiddleware{
		redis:  redisClient,
		config: cfg,
		logger: logger,
	}
}

// Handler returns the rate limit handler
func (m *RateLimitMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.config.Skip != nil && m.config.Skip(c) {
			return c.Next()
		}

		key := fmt.Sprintf("ratelimit:%s", m.config.KeyGenerator(c))
		now := time.Now()
		windowStart := now.Add(-m.config.Window)
		reset := strconv.FormatInt(now.Add(m.config.Window).Unix(), 10)

		ctx, cancel := context.WithTimeout(c.UserContext(), 250*time.Millisecond)
		defer cancel()

		var count *redis.IntCmd
		_, err := m.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(windowStart.UnixMilli(), 10))
			count = pipe.ZCard(ctx, key)
			return nil
		})
		if err != nil {
			// Redis being down must not take the API with it
			m.logger.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(m.config.Max))
		c.Set("X-RateLimit-Reset", reset)

		if count.Val() >= int64(m.config.Max) {
			c.Set("X-RateLimit-Remaining", "0")
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(m.config.Window.Seconds())))
			return m.config.LimitReached(c)
		}

		pipe := m.redis.Pipeline()
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  float64(now.UnixMilli()),
			Member: fmt.Sprintf("%d:%s", now.UnixNano(), GetRequestID(c)),
		})
		pipe.Expire(ctx, key, m.config.Window*2)
		if _, err := pipe.Exec(ctx); err != nil {
			m.logger.Warn("failed to record request for rate limiting", zap.Error(err))
		}

		c.Set("X-RateLimit-Remaining", strconv.Itoa(m.config.Max-int(count.Val())-1))

		return c.Next()
	}
}
