package middleware

import (
	"net/http"
	"sync"
	"time"

	"newsdesk/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IPRateLimiter is a sliding window counter per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

func NewIPRateLimiter(limit int, window time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	requests := rl.prune(rl.requests[ip], now)
	if len(requests) >= rl.limit {
		rl.requests[ip] = requests
		return false
	}
	rl.requests[ip] = append(requests, now)
	return true
}

func (rl *IPRateLimiter) prune(requests []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)
	i := 0
	for ; i < len(requests); i++ {
		if requests[i].After(cutoff) {
			break
		}
	}
	return requests[i:]
}

// Sweep drops IPs with no requests inside the window ending at now.
func (rl *IPRateLimiter) Sweep(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for ip, requests := range rl.requests {
		if len(rl.prune(requests, now)) == 0 {
			delete(rl.requests, ip)
			removed++
		}
	}
	return removed
}

// RateLimit rejects clients that exceed the limiter's budget with 429.
func RateLimit(rl *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.Allow(ip) {
			logger.Log.Warn("Rate limit exceeded", zap.String("ip", ip), zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
