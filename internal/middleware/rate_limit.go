package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/studio-interiors/site-server/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	visitorTTL             = 3 * time.Minute
	visitorCleanupInterval = time.Minute
)

// RateLimiter implements an in-memory token bucket per client IP.
// Idle visitors expire from the store after visitorTTL.
type RateLimiter struct {
	visitors *gocache.Cache
	mu       sync.Mutex
	r        rate.Limit // requests per second
	b        int        // burst size
}

// NewRateLimiter creates a new rate limiter
// r: requests per second (e.g., 5 means 5 requests per second)
// b: burst size (e.g., 10 means allow bursts of up to 10 requests)
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		visitors: gocache.New(visitorTTL, visitorCleanupInterval),
		r:        r,
		b:        b,
	}
}

// getVisitor returns the limiter for ip and refreshes its expiry
func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if cached, ok := rl.visitors.Get(ip); ok {
		limiter := cached.(*rate.Limiter)
		rl.visitors.SetDefault(ip, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(rl.r, rl.b)
	rl.visitors.SetDefault(ip, limiter)
	return limiter
}

// Visitors returns the number of tracked clients
func (rl *RateLimiter) Visitors() int {
	return rl.visitors.ItemCount()
}

// Middleware returns a Gin middleware function for rate limiting
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := rl.getVisitor(ip)

		if !limiter.Allow() {
			logger.Warn("Rate limit exceeded",
				zap.String("client_ip", ip),
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
