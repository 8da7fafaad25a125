package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moon-casino-backend/internal/middleware"
	"moon-casino-backend/internal/models"
	"moon-casino-backend/internal/services"
)

type GameHandler struct {
	gameEngine *services.GameEngine
}

func NewGameHandler(gameEngine *services.GameEngine) *GameHandler {
	return &GameHandler{gameEngine: gameEngine}
}

func (h *GameHandler) game(c *gin.Context) (services.Game, bool) {
	g, err := h.gameEngine.Game(models.GameType(c.Param("game")))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return g, true
}

func respondRound(c *gin.Context, round *models.RoundView, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "round": round})
}

func (h *GameHandler) Start(c *gin.Context) {
	g, ok := h.game(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	var req models.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	round, err := g.Start(c.Request.Context(), userID, req)
	respondRound(c, round, err)
}

func (h *GameHandler) Action(c *gin.Context) {
	g, ok := h.game(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	var req models.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	round, err := g.Act(c.Request.Context(), userID, req)
	respondRound(c, round, err)
}

func (h *GameHandler) Cashout(c *gin.Context) {
	g, ok := h.game(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	round, err := g.Cashout(c.Request.Context(), userID)
	respondRound(c, round, err)
}

func (h *GameHandler) Current(c *gin.Context) {
	g, ok := h.game(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	round, err := g.Current(c.Request.Context(), userID)
	respondRound(c, round, err)
}

func (h *GameHandler) GetActiveGames(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	rounds, err := h.gameEngine.ActiveRounds(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rounds": rounds, "count": len(rounds)})
}

func (h *GameHandler) GetGameHistory(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	rounds, err := h.gameEngine.History(c.Request.Context(), userID, queryLimit(c, 50))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rounds": rounds, "count": len(rounds)})
}

func (h *GameHandler) RevealMine(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req models.RevealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	round, err := h.gameEngine.Mines().Reveal(c.Request.Context(), userID, *req.Index)
	respondRound(c, round, err)
}

func (h *GameHandler) Hit(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	round, err := h.gameEngine.Blackjack().Hit(c.Request.Context(), userID)
	respondRound(c, round, err)
}

func (h *GameHandler) Stand(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	round, err := h.gameEngine.Blackjack().Stand(c.Request.Context(), userID)
	respondRound(c, round, err)
}

func (h *GameHandler) Hop(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req models.HopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	round, err := h.gameEngine.Chicken().Hop(c.Request.Context(), userID, *req.Lane)
	respondRound(c, round, err)
}

func (h *GameHandler) Flip(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req models.FlipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	round, err := h.gameEngine.Coinflip().Flip(c.Request.Context(), userID, req.Choice)
	respondRound(c, round, err)
}

// GetVerificationData returns the client seed and nonce of the next round.
func (h *GameHandler) GetVerificationData(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	data, err := h.gameEngine.GetVerificationData(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "verification": data})
}

func (h *GameHandler) SetClientSeed(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req models.ClientSeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	data, err := h.gameEngine.SetClientSeed(c.Request.Context(), userID, req.ClientSeed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "verification": data})
}

func (h *GameHandler) VerifyGame(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.gameEngine.VerifyGameResult(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}
