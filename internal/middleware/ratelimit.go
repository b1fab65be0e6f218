package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const rateLimitWindow = 60 // seconds

// RateLimitResult is the outcome of one admission check.
type RateLimitResult struct {
	Allowed     bool
	WaitSeconds int
}

// RateLimiter admits or rejects a request from one client IP.
type RateLimiter interface {
	CheckAndRecord(ip string) RateLimitResult
}

// InMemoryRateLimiter keeps a rolling one-minute window of request timestamps
// per client IP. Adequate for a single-node deployment; a multi-node fleet
// would move this into Redis.
type InMemoryRateLimiter struct {
	mu          sync.Mutex
	maxRequests int
	requests    map[string][]float64
}

func NewInMemoryRateLimiter(maxPerMinute int) *InMemoryRateLimiter {
	limiter := &InMemoryRateLimiter{
		maxRequests: maxPerMinute,
		requests:    make(map[string][]float64),
	}

	go limiter.cleanupLoop()

	return limiter
}

func (l *InMemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		now := float64(time.Now().Unix())
		for ip, stamps := range l.requests {
			l.requests[ip] = pruneOld(stamps, now)
			if len(l.requests[ip]) == 0 {
				delete(l.requests, ip)
			}
		}
		l.mu.Unlock()
	}
}

func pruneOld(stamps []float64, now float64) []float64 {
	cutoff := now - rateLimitWindow
	result := stamps[:0]
	for _, ts := range stamps {
		if ts >= cutoff {
			result = append(result, ts)
		}
	}
	return result
}

func (l *InMemoryRateLimiter) CheckAndRecord(ip string) RateLimitResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := float64(time.Now().Unix())
	l.requests[ip] = pruneOld(l.requests[ip], now)
	stamps := l.requests[ip]

	if len(stamps) >= l.maxRequests {
		oldest := stamps[0]
		waitSeconds := int(oldest+rateLimitWindow-now) + 1
		if waitSeconds < 1 {
			waitSeconds = 1
		}
		return RateLimitResult{Allowed: false, WaitSeconds: waitSeconds}
	}

	l.requests[ip] = append(stamps, now)
	return RateLimitResult{Allowed: true}
}

// RateLimit rejects over-limit clients with 429 and a Retry-After hint.
func RateLimit(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		result := limiter.CheckAndRecord(clientIP)

		if !result.Allowed {
			traceID, _ := c.Get("trace_id")
			slog.Info("Rate limit triggered",
				"trace_id", traceID,
				"ip", clientIP,
				"wait_seconds", result.WaitSeconds,
			)
			c.Header("Retry-After", fmt.Sprintf("%d", result.WaitSeconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":        "rate limit reached",
				"wait_seconds": result.WaitSeconds,
			})
			return
		}

		c.Next()
	}
}
