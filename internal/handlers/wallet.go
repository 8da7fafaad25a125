package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moon-casino-backend/internal/middleware"
	"moon-casino-backend/internal/models"
	"moon-casino-backend/internal/services"
)

type WalletHandler struct {
	wallet *services.Wallet
}

func NewWalletHandler(wallet *services.Wallet) *WalletHandler {
	return &WalletHandler{wallet: wallet}
}

func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	balance, err := h.wallet.Balance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.BalanceResponse{Balance: balance})
}

func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	txs, err := h.wallet.Transactions(c.Request.Context(), userID, queryLimit(c, 50))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transactions": txs, "count": len(txs)})
}

func (h *WalletHandler) Transfer(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req models.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.wallet.Transfer(c.Request.Context(), userID, req.ToUsername, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transfer": result})
}

func (h *WalletHandler) ClaimFreeCoins(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	result, err := h.wallet.ClaimFreeCoins(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "free_coins": result})
}
