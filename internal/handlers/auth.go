package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moon-casino-backend/internal/models"
	"moon-casino-backend/internal/services"
)

type AuthHandler struct {
	sessions *services.SessionService
}

func NewAuthHandler(sessions *services.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.sessions.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.sessions.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
