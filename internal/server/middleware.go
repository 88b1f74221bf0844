package server

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/balkashynov/punch/internal/auth"
	"github.com/balkashynov/punch/internal/tracker"
)

const (
	requestIDHeader = "X-Request-ID"

	ctxRequestID = "request_id"
	ctxUserID    = "user_id"
	ctxScope     = "scope"
	ctxRole      = "role"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(ctxRequestID),
			"user_id", c.GetUint(ctxUserID),
		)
	}
}

// authRequired validates the bearer token and stores its claims on the
// context.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			// EventSource cannot set headers
			raw = c.Query("access_token")
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := auth.Parse(s.secret, raw)
		if err != nil {
			s.logger.Debug("rejected token", "err", err, "request_id", c.GetString(ctxRequestID))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		scope := claims.Scope
		if scope == "" {
			scope = s.scope
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxScope, scope)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

func ownerFrom(c *gin.Context) tracker.Owner {
	return tracker.Owner{UserID: c.GetUint(ctxUserID), Scope: c.GetString(ctxScope)}
}

// userLimiter keeps one token bucket per user
type userLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[uint]*rate.Limiter
}

func newUserLimiter(perSecond float64, burst int) *userLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &userLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[uint]*rate.Limiter),
	}
}

func (l *userLimiter) allow(userID uint) bool {
	l.mu.Lock()
	lim, ok := l.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// limit throttles mutating routes per authenticated user.
func (s *Server) limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter != nil && !s.limiter.allow(c.GetUint(ctxUserID)) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
