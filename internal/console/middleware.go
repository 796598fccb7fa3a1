package console

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/glefebvre/catalog-console/internal/logger"
	"github.com/glefebvre/catalog-console/internal/state"
	"github.com/glefebvre/catalog-console/internal/web"
	"github.com/google/uuid"
)

// requestIDMiddleware adds a unique request ID to each request
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// recoveryMiddleware turns panics into a 500 page
func recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.AppLogger().WithFields(map[string]interface{}{
					"path": c.Request.URL.Path,
				}).ErrorContext(c.Request.Context(), "panic while handling request", fmt.Errorf("%v", r))
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs every request once it completes
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(started).Milliseconds(),
		}
		if web.IsHTMX(c) {
			fields["htmx"] = true
		}

		log := logger.AppLogger().WithFields(fields)
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.WarnContext(c.Request.Context(), "request failed")
			return
		}
		log.DebugContext(c.Request.Context(), "request handled")
	}
}

// requireToken redirects to the login page when the session holds no token
func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(sessionTokenKey).(string)
		if token == "" {
			web.Redirect(c, "/login")
			c.Abort()
			return
		}

		sid, _ := session.Get(sessionStateKey).(string)
		if sid == "" {
			sid = state.NewSessionID()
			session.Set(sessionStateKey, sid)
			s.saveSession(c)
		}

		c.Set(ctxTokenKey, token)
		c.Set(ctxSessionKey, sid)
		ctx := logger.ContextWithSessionID(c.Request.Context(), sid)
		if operator, ok := session.Get(sessionUserKey).(string); ok {
			ctx = logger.ContextWithOperator(ctx, operator)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func csrfError(c *gin.Context) {
	logger.AppLogger().WithFields(map[string]interface{}{
		"path": c.Request.URL.Path,
	}).WarnContext(c.Request.Context(), "rejected request with invalid CSRF token")
	c.String(http.StatusForbidden, "Invalid CSRF token")
	c.Abort()
}
