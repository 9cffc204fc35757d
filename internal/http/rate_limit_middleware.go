package http

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter enforces token-bucket rate limiting per caller before the
// dispatch pipeline runs.
//
// Requests presenting a bearer token are keyed by the token's SHA-256 hash,
// so each credential gets an independent bucket without the plaintext secret
// living in memory as a map key. Requests without a token share a per-IP
// bucket; they fail authentication anyway, so the bucket only bounds the
// unauthenticated error traffic one address can generate.
type RateLimiter struct {
	limiters sync.Map // map[string]*rateLimiterEntry
	rps      float64
	burst    int
	logger   *slog.Logger
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// rateLimiterEntry holds a rate limiter and last access time for cleanup.
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a rate limiter and starts its background sweep.
// Call Stop when the server shuts down.
func NewRateLimiter(rps float64, burst int, logger *slog.Logger) *RateLimiter {
	limiter := &RateLimiter{
		rps:    rps,
		burst:  burst,
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	// Drop limiters idle for over an hour so the store stays bounded.
	go limiter.cleanupStale(5 * time.Minute)

	return limiter
}

// Middleware returns the gin handler enforcing the limit. Responds with
// 429 Too Many Requests and a Retry-After header when the bucket is
// exhausted.
func (s *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := s.getLimiter(callerKey(c))

		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := int(reservation.Delay().Seconds())
			reservation.Cancel()

			s.logger.Debug("rate limit exceeded",
				slog.String("client_ip", c.ClientIP()),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please retry after the specified delay.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Stop terminates the background sweep. Safe to call more than once; returns
// once the sweep goroutine has exited.
func (s *RateLimiter) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// callerKey derives the rate-limit bucket key for a request.
func callerKey(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		sum := sha256.Sum256([]byte(strings.TrimSpace(header[len(prefix):])))
		return "token:" + hex.EncodeToString(sum[:])
	}
	return "ip:" + c.ClientIP()
}

// getLimiter retrieves or creates the rate limiter for a bucket key.
func (s *RateLimiter) getLimiter(key string) *rate.Limiter {
	if val, ok := s.limiters.Load(key); ok {
		entry := val.(*rateLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
		return entry.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(s.rps), s.burst)
	entry := &rateLimiterEntry{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	s.limiters.Store(key, entry)
	return limiter
}

// cleanupStale removes rate limiters that haven't been accessed recently.
// Runs until Stop is called.
func (s *RateLimiter) cleanupStale(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			threshold := time.Now().Add(-1 * time.Hour)
			s.limiters.Range(func(key, value interface{}) bool {
				entry := value.(*rateLimiterEntry)
				entry.mu.Lock()
				shouldDelete := entry.lastAccess.Before(threshold)
				entry.mu.Unlock()

				if shouldDelete {
					s.limiters.Delete(key)
				}
				return true
			})
		}
	}
}
