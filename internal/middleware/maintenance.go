package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"moon-casino-backend/internal/logger"
	"moon-casino-backend/internal/services"
)

// MaintenanceGate refuses new activity while maintenance is on. Rounds already
// in progress keep going through routes that are not gated.
func MaintenanceGate(redisService *services.RedisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := redisService.GetMaintenance(c.Request.Context())
		if err != nil {
			logger.Warn("maintenance check failed", "error", err)
			c.Next()
			return
		}

		if status.Enabled && (status.EndsAt == 0 || time.Now().UnixMilli() < status.EndsAt) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":   "maintenance",
				"details": status.Message,
				"ends_at": status.EndsAt,
			})
			return
		}

		c.Next()
	}
}
