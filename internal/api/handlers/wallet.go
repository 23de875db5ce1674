package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fantasyarena/backend/internal/config"
	"github.com/fantasyarena/backend/internal/payout"
	"github.com/fantasyarena/backend/internal/wallet"
)

// Deposit credits the caller's deposit balance.
func Deposit(svc *wallet.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Amount float64 `json:"amount" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount is required"})
			return
		}
		if req.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Deposit amount must be greater than zero"})
			return
		}
		if cfg.MaxDepositAmount > 0 && req.Amount > cfg.MaxDepositAmount {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Deposit amount exceeds the maximum allowed"})
			return
		}

		userID := c.GetInt("user_id")
		if err := svc.Deposit(c.Request.Context(), userID, req.Amount); err != nil {
			writeServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Deposit successful",
		})
	}
}

// GetTransactions lists the caller's wallet history, newest first.
func GetTransactions(svc *wallet.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("user_id")

		txns, err := svc.Transactions(c.Request.Context(), userID)
		if err != nil {
			writeServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"transactions": txns})
	}
}

// RequestWithdrawal opens a payout request. The amount leaves the winnings
// balance immediately and comes back only if an admin rejects the request.
func RequestWithdrawal(svc *payout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Amount float64 `json:"amount" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount is required"})
			return
		}

		userID := c.GetInt("user_id")
		p, err := svc.Request(c.Request.Context(), userID, req.Amount)
		if err != nil {
			writeServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Withdrawal request submitted for review",
			"reference": p.Reference,
			"payout_id": p.ID,
		})
	}
}
