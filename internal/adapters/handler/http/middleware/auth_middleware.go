package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streaks/internal/metrics"
)

const (
	authorizationHeader = "Authorization"
	authorizationType   = "Bearer"
	ContextUserIDKey    = "userID"
)

type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

// AuthMiddleware requires a bearer token and stores its subject under ContextUserIDKey.
// m may be nil.
func AuthMiddleware(tokens TokenValidator, m *metrics.Metrics) gin.HandlerFunc {
	reject := func(c *gin.Context, reason, message string) {
		if m != nil {
			m.AuthRejections.WithLabelValues(reason).Inc()
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader(authorizationHeader)
		if authHeader == "" {
			reject(c, "missing_header", "authorization header required")
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) != 2 || !strings.EqualFold(fields[0], authorizationType) {
			reject(c, "bad_format", "invalid authorization header format")
			return
		}

		userID, err := tokens.ValidateToken(c.Request.Context(), fields[1])
		if err != nil {
			reject(c, "invalid_token", "invalid or expired token")
			return
		}

		c.Set(ContextUserIDKey, userID)

		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, bool) {
	id, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", false
	}
	idStr, ok := id.(string)
	return idStr, ok && idStr != ""
}
