package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per key.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	ttl      time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(perMinute, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		ttl:      10 * time.Minute,
	}
}

// Allow reports whether key may proceed now.
func (r *RateLimiter) Allow(key string) bool {
	return r.allowAt(key, time.Now())
}

func (r *RateLimiter) allowAt(key string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	// drop idle buckets so the map does not grow with every user ever seen
	for k, e := range r.limiters {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.limiters, k)
		}
	}

	e, ok := r.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// RateLimitMiddleware limits requests per authenticated user, falling back to
// the client IP for anonymous requests.
func RateLimitMiddleware(limiter *RateLimiter, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if userID, ok := UserID(c); ok {
			key = userID.String()
		}

		if !limiter.Allow(key) {
			logger.Warn("Rate limit exceeded", zap.String("key", key), zap.String("path", c.Path()))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, try again later",
			})
		}
		return c.Next()
	}
}
