package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qamaits/identity-server/internal/dto"
	"github.com/qamaits/identity-server/internal/service"
)

// RateLimitMiddleware enforces limit requests per window, keyed by
// keyFunc. Limiter errors other than exhaustion fail open.
func RateLimitMiddleware(rateLimiter *service.RateLimiter, limit int, window time.Duration, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		allowed, err := rateLimiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil && !errors.Is(err, service.ErrRateLimited) {
			c.Next()
			return
		}

		remaining, _ := rateLimiter.Remaining(c.Request.Context(), key, limit, window)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			message := "rate limit exceeded"
			if err != nil {
				message = err.Error()
			}
			c.JSON(http.StatusTooManyRequests, dto.Fail("rate_limited", message))
			c.Abort()
			return
		}

		c.Next()
	}
}

// IPBasedKey keys the limiter by client IP, honoring X-Forwarded-For
// when a proxy sits in front.
func IPBasedKey(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return c.ClientIP()
}
