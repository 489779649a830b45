package middleware

import (
	"net/http"
	"sync"
	"time"

	"skillswap/internal/utils"
	"skillswap/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

func newLimiterStore(perMinute, burst int) *limiterStore {
	return &limiterStore{
		limiters:  make(map[string]*limiterEntry),
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     burst,
		lastSweep: time.Now(),
	}
}

func (s *limiterStore) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) > limiterIdleTTL {
		for k, e := range s.limiters {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(s.limiters, k)
			}
		}
		s.lastSweep = now
	}

	entry, ok := s.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// RateLimitMiddleware applies a token bucket per caller: the authenticated user when known,
// otherwise the client IP. A non-positive perMinute disables limiting.
func RateLimitMiddleware(perMinute, burst int, log *logger.Logger) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	store := newLimiterStore(perMinute, burst)

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID, ok := GetUserID(c); ok {
			key = "user:" + userID.Hex()
		}

		if !store.get(key, time.Now()).Allow() {
			log.WithContext(c.Request.Context()).WithField("limiter_key", key).Warn("Rate limit exceeded")
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
