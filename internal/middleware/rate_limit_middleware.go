package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trouvetonartisan/backend/internal/errors"
)

// RateLimitStore counts hits per key in fixed windows.
type RateLimitStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
}

// RateLimitRule is the allowance of one limiter.
type RateLimitRule struct {
	Name    string // key namespace, e.g. "api" or "contact"
	Window  time.Duration
	Max     int
	Code    string
	Message string
}

// RateLimit limits requests per client IP. When the store fails the request
// goes through and the failure is logged.
func RateLimit(store RateLimitStore, rule RateLimitRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rule.Name + ":" + c.ClientIP()

		count, resetIn, err := store.Increment(c.Request.Context(), key, rule.Window)
		if err != nil {
			GetLoggerFromContext(c).Error("Rate limit store unavailable", err, map[string]interface{}{
				"limiter": rule.Name,
			})
			c.Next()
			return
		}

		remaining := int64(rule.Max) - count
		if remaining < 0 {
			remaining = 0
		}
		resetSeconds := int64((resetIn + time.Second - 1) / time.Second)

		c.Header("RateLimit-Limit", strconv.Itoa(rule.Max))
		c.Header("RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("RateLimit-Reset", strconv.FormatInt(resetSeconds, 10))

		if count > int64(rule.Max) {
			GetLoggerFromContext(c).Warn("Rate limit exceeded", map[string]interface{}{
				"limiter": rule.Name,
				"count":   count,
			})
			c.Header("Retry-After", strconv.FormatInt(resetSeconds, 10))
			errors.TooManyRequests(c, rule.Code, rule.Message)
			return
		}

		c.Next()
	}
}

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

// MemoryRateLimitStore keeps counters in process. Counters are not shared
// between instances.
type MemoryRateLimitStore struct {
	mu        sync.Mutex
	windows   map[string]*memoryWindow
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

func (s *MemoryRateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		s.windows[key] = w
	}
	w.count++

	return w.count, w.resetAt.Sub(now), nil
}

// sweep drops expired windows at most once a minute.
func (s *MemoryRateLimitStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < time.Minute {
		return
	}
	s.lastSweep = now
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
		}
	}
}
