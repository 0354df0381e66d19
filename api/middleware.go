package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const (
	authorizationHeaderKey  = "authorization"
	authorizationTypeBearer = "bearer"
)

// getLimiter returns the per-caller rate limiter, creating it on first use.
// Simulation runs are CPU-bound, so the budget is deliberately small.
func (server *Server) getLimiter(key string) *rate.Limiter {
	server.limitersMu.Lock()
	defer server.limitersMu.Unlock()
	limiter, ok := server.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Second), 2)
		server.limiters[key] = limiter
	}
	return limiter
}

// authentication checks the bearer API key against the configured bcrypt
// hash and stashes the key prefix for rate limiting.
func (server *Server) authentication(c *gin.Context) {
	authorizationHeader := c.GetHeader(authorizationHeaderKey)

	if len(authorizationHeader) == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("authorization header is not provided")))
		return
	}

	fields := strings.Fields(authorizationHeader)
	if len(fields) < 2 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("invalid authorization header format")))
		return
	}

	authorizationType := strings.ToLower(fields[0])
	if authorizationType != authorizationTypeBearer {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(fmt.Errorf("unsupported authorization type: %s", authorizationType)))
		return
	}

	apiKey := fields[1]
	if err := bcrypt.CompareHashAndPassword([]byte(server.keyHash), []byte(apiKey)); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("please input a valid API key")))
		return
	}

	prefix := apiKey
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	c.Set("prefix", prefix)
	c.Next()
}

// throttle applies the per-caller rate limit. Unauthenticated deployments
// share a single bucket keyed by client IP.
func (server *Server) throttle(c *gin.Context) {
	key := c.ClientIP()
	if prefix, ok := c.Get("prefix"); ok {
		key = prefix.(string)
	}
	if !server.getLimiter(key).Allow() {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"status": http.StatusTooManyRequests, "msg": "Too Many Requests"})
		return
	}
	c.Next()
}
