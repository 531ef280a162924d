package handlers

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strconv"
	"time"

	"real-estate-matching/internal/auth"
	"real-estate-matching/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

const (
	// AdminTokenHeader carries the admin API token
	AdminTokenHeader = "X-Admin-Token"
	// RateLimitRemainingHeader reports the swipes left in the current window
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
)

// RateLimit rejects requests over the limiter's budget with 429.
// Requests are keyed by the authenticated actor, falling back to the client IP.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := auth.ActorID(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Printf("[ratelimit] check for %s failed: %v", key, err)
		}
		if reporter, ok := limiter.(ratelimit.RemainingReporter); ok {
			if remaining, err := reporter.Remaining(c.Request.Context(), key); err == nil && remaining >= 0 {
				c.Header(RateLimitRemainingHeader, strconv.Itoa(remaining))
			}
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

// AdminAuth guards the admin group with a static token. An empty token disables the group.
func AdminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Admin API disabled"})
			return
		}
		got := c.GetHeader(AdminTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// RequestLogger logs one line per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[http] %s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
