// README: Per-client-IP token bucket limiter for the public routes; idle buckets are swept.
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"guava/internal/session"
)

// NewLimiters keeps one bucket per client IP allowing perMinute requests with the given
// burst. It returns nil, which disables limiting, when perMinute <= 0.
func NewLimiters(perMinute, burst int) *session.Registry[*rate.Limiter] {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	every := time.Minute / time.Duration(perMinute)
	return session.NewRegistry(func() *rate.Limiter {
		return rate.NewLimiter(rate.Every(every), burst)
	})
}

func RateLimit(limiters *session.Registry[*rate.Limiter], logger *zap.Logger) gin.HandlerFunc {
	if limiters == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiters.Get(ip).Allow() {
			logger.Warn("rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
