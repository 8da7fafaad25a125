package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"moon-casino-backend/internal/models"
	"moon-casino-backend/internal/services"
)

const (
	ContextUserID    = "user_id"
	ContextSessionID = "session_id"
)

// AuthMiddleware accepts a bearer token or, for websocket upgrades, a token
// query parameter. The token's session must still be the user's live one.
func AuthMiddleware(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "details": "invalid authorization format"})
				return
			}
			tokenString = strings.TrimSpace(parts[1])
		} else {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "details": "authorization header required"})
			return
		}

		claims, err := sessions.ValidateToken(tokenString)
		if err != nil {
			details := "invalid or expired token"
			if errors.Is(err, services.ErrTokenExpired) {
				details = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "details": details})
			return
		}

		if err := sessions.Validate(c.Request.Context(), claims.UserID, claims.SessionID); err != nil {
			if errors.Is(err, models.ErrStoreUnavailable) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "store_unavailable", "details": "please try again"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "details": models.ErrSessionInvalid.Error()})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextSessionID, claims.SessionID)

		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, bool) {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return "", false
	}
	s, ok := id.(string)
	return s, ok && s != ""
}

func GetSessionID(c *gin.Context) (string, bool) {
	id, ok := c.Get(ContextSessionID)
	if !ok {
		return "", false
	}
	s, ok := id.(string)
	return s, ok && s != ""
}
