package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"golang.org/x/time/rate"

	"github.com/meinhoongagan/nhs-staffing/metrics"
	"github.com/meinhoongagan/nhs-staffing/utils"
)

// RateLimiter keeps one token bucket per key and forgets keys idle for maxAge.
type RateLimiter struct {
	limit  rate.Limit
	burst  int
	maxAge time.Duration

	mu    sync.Mutex
	store map[string]*limiterEntry
}

type limiterEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:  rate.Limit(perSecond),
		burst:  burst,
		maxAge: 10 * time.Minute,
		store:  make(map[string]*limiterEntry),
	}
}

func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	entry, ok := r.store[key]
	if !ok {
		for k, e := range r.store {
			if now.Sub(e.seen) > r.maxAge {
				delete(r.store, k)
			}
		}
		entry = &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.store[key] = entry
	}
	entry.seen = now
	return entry.limiter.AllowN(now, 1)
}

// LimitByIP rejects requests over the limit with 429.
func LimitByIP(limiter *RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !limiter.Allow(fiberutils.CopyString(c.IP())) {
			metrics.LoginAttempts.WithLabelValues("limited").Inc()
			c.Set(fiber.HeaderRetryAfter, "1")
			return c.Status(fiber.StatusTooManyRequests).JSON(utils.ErrorResponse{
				Message: "Too many requests",
				Error:   "rate limit exceeded, retry shortly",
			})
		}
		return c.Next()
	}
}
