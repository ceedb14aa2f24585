package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/response"
)

// RateLimiter implements a per-IP token bucket. Game endpoints sit behind
// it so a single client cannot grind the question bank.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     int           // tokens per interval
	interval time.Duration // refill interval
}

type bucket struct {
	tokens   int
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter (e.g., 30 requests per minute).
func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		interval: interval,
	}

	// Drop idle buckets every minute.
	go func() {
		for range time.Tick(time.Minute) {
			rl.cleanup()
		}
	}()

	return rl
}

// Middleware returns a Gin middleware that rate-limits requests by IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		rl.mu.Lock()
		b, exists := rl.buckets[ip]
		if !exists {
			b = &bucket{tokens: rl.rate, lastSeen: time.Now()}
			rl.buckets[ip] = b
		}

		// Refill based on elapsed time.
		elapsed := time.Since(b.lastSeen)
		refill := int(elapsed/rl.interval) * rl.rate
		if refill > 0 {
			b.tokens += refill
			if b.tokens > rl.rate {
				b.tokens = rl.rate
			}
			b.lastSeen = time.Now()
		}

		if b.tokens <= 0 {
			rl.mu.Unlock()
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}

		b.tokens--
		rl.mu.Unlock()
		c.Next()
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, b := range rl.buckets {
		if time.Since(b.lastSeen) > 3*time.Minute {
			delete(rl.buckets, ip)
		}
	}
}
