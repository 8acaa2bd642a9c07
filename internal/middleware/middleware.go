package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"todo-bills/internal/auth"
	"todo-bills/pkg/logger"
)

const (
	identityKey     = "user"
	requestIDHeader = "X-Request-ID"
	loginPath       = "/login"
)

// Identity returns the authenticated owner id set by Session.
func Identity(c *gin.Context) (string, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return "", false
	}
	id, _ := v.(string)
	return id, id != ""
}

// RequestID tags the request context logger with an id, reusing the
// client's X-Request-ID when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.New().String()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// AccessLog writes one structured line per request.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func isPublic(path string) bool {
	switch path {
	case loginPath, "/register", "/health", "/ready":
		return true
	}
	return strings.HasPrefix(path, "/api/auth/")
}

func isAPI(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

// tokenFrom reads a Bearer header first, then the session cookie.
func tokenFrom(c *gin.Context) string {
	const prefix = "Bearer "
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	if v, err := c.Cookie(auth.CookieName); err == nil {
		return v
	}
	return ""
}

// Session resolves the caller's identity and gates every route. Public paths
// pass through; signed-in users are sent from /login and /register to /.
// Anonymous API calls get 401, anonymous page navigation is redirected to /login.
func Session(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		path := c.Request.URL.Path

		if tok := tokenFrom(c); tok != "" {
			uid, err := tokens.Parse(tok)
			switch {
			case err == nil:
				c.Set(identityKey, uid)
			case errors.Is(err, auth.ErrNoSecret):
				logger.Error(ctx, "JWT_SECRET is not configured")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server misconfiguration"})
				return
			default:
				logger.Debug(ctx, "Session token rejected", "error", err)
			}
		}

		_, signedIn := Identity(c)
		if isPublic(path) {
			if signedIn && (path == loginPath || path == "/register") {
				c.Redirect(http.StatusFound, "/")
				c.Abort()
				return
			}
			c.Next()
			return
		}
		if signedIn {
			c.Next()
			return
		}
		if isAPI(path) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Redirect(http.StatusFound, loginPath)
		c.Abort()
	}
}
