package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"moon-casino-backend/internal/logger"
	"moon-casino-backend/internal/models"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Specific errors come before the categories they wrap.
var errorMappings = []errorMapping{
	{models.ErrSelfTransfer, http.StatusBadRequest, "self_transfer"},
	{models.ErrRoundActive, http.StatusConflict, "round_active"},
	{models.ErrCashoutUnsupported, http.StatusBadRequest, "cashout_unsupported"},
	{models.ErrActionInProgress, http.StatusConflict, "action_in_progress"},

	{models.ErrInvalidParameter, http.StatusBadRequest, "invalid_parameter"},
	{models.ErrInvalidStateTransition, http.StatusBadRequest, "invalid_state_transition"},
	{models.ErrInsufficientFunds, http.StatusPaymentRequired, "insufficient_funds"},
	{models.ErrRecipientNotFound, http.StatusNotFound, "recipient_not_found"},
	{models.ErrRoundNotFound, http.StatusNotFound, "round_not_found"},
	{models.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{models.ErrUpdateConflict, http.StatusConflict, "update_conflict"},
	{models.ErrBalanceTooHigh, http.StatusConflict, "balance_too_high"},
	{models.ErrCooldownActive, http.StatusConflict, "cooldown_active"},
	{models.ErrUsernameTaken, http.StatusConflict, "username_taken"},
	{models.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{models.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{models.ErrSessionInvalid, http.StatusUnauthorized, "unauthorized"},
	{models.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
	{models.ErrMaintenance, http.StatusServiceUnavailable, "maintenance"},
	{models.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
}

func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			details := err.Error()
			if m.status == http.StatusServiceUnavailable {
				logger.Error("request failed", "path", c.FullPath(), "error", err)
				details = "please try again"
			}
			c.JSON(m.status, gin.H{"error": m.code, "details": details})
			return
		}
	}

	logger.Error("unhandled error", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "details": "internal server error"})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_parameter", "details": err.Error()})
}
