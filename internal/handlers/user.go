package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"moon-casino-backend/internal/middleware"
	"moon-casino-backend/internal/services"
)

type UserHandler struct {
	sessions *services.SessionService
	wallet   *services.Wallet
}

func NewUserHandler(sessions *services.SessionService, wallet *services.Wallet) *UserHandler {
	return &UserHandler{
		sessions: sessions,
		wallet:   wallet,
	}
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	profile, err := h.sessions.Profile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": profile})
}

func (h *UserHandler) Logout(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	sessionID, _ := middleware.GetSessionID(c)

	if err := h.sessions.Logout(c.Request.Context(), userID, sessionID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Successfully logged out"})
}

func (h *UserHandler) Heartbeat(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	presence, err := h.sessions.Heartbeat(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "presence": presence})
}

func (h *UserHandler) Online(c *gin.Context) {
	users, err := h.sessions.Online(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users, "count": len(users)})
}

func (h *UserHandler) Leaderboard(c *gin.Context) {
	board, err := h.wallet.Leaderboard(c.Request.Context(), queryLimit(c, 100), c.Query("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "leaderboard": board})
}

func (h *UserHandler) LiveWins(c *gin.Context) {
	wins, err := h.wallet.LiveWins(c.Request.Context(), queryLimit(c, 20))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "wins": wins})
}

func queryLimit(c *gin.Context, def int64) int64 {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", strconv.FormatInt(def, 10)), 10, 64)
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}
