package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/goplan-app/goplan-server/internal/apperrors"
	"github.com/goplan-app/goplan-server/internal/services"
)

const (
	// UserKey is the gin context key the authenticated user is stored under.
	UserKey = "user"

	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID attaches a request id to each request, reusing the caller's when
// present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// StructuredLogger logs one line per request with method, path, status and
// latency.
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("request",
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// Auth requires a valid bearer token and loads the corresponding user into
// the context.
func Auth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authorization header is required",
			})
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			if e := apperrors.As(err); e != nil {
				c.AbortWithStatusJSON(e.Status(), gin.H{"error": e.Message})
			} else {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// OptionalAuth loads the user when a valid token is supplied but lets
// anonymous requests through.
func OptionalAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token != "" {
			if user, err := authService.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(UserKey, user)
			}
		}
		c.Next()
	}
}

// RateLimit applies a fixed-window limit per client IP. With no redis client
// configured it is a passthrough.
func RateLimit(client *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := fmt.Sprintf("ratelimit:%s:%s", c.FullPath(), c.ClientIP())

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			// Redis being down must not take auth down with it.
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(ctx, key, window)
		}
		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
