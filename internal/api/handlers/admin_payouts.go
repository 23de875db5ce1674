package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/fantasyarena/backend/internal/admin"
	"github.com/fantasyarena/backend/internal/payout"
)

// GetPayoutRequests lists withdrawal requests for review, pending first,
// with the requesting user's details joined in.
func GetPayoutRequests(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
		if limit < 1 || limit > 100 {
			limit = 25
		}
		status := c.DefaultQuery("status", "")

		var rows []struct {
			ID          int            `db:"id" json:"id"`
			UserID      int            `db:"user_id" json:"user_id"`
			Username    string         `db:"username" json:"username"`
			Email       string         `db:"email" json:"email"`
			Amount      float64        `db:"amount" json:"amount"`
			Status      string         `db:"status" json:"status"`
			Reference   string         `db:"reference" json:"reference"`
			RequestedAt string         `db:"requested_at" json:"requested_at"`
			ProcessedAt sql.NullString `db:"processed_at" json:"processed_at,omitempty"`
			AdminNotes  sql.NullString `db:"admin_notes" json:"admin_notes,omitempty"`
			TotalCount  int            `db:"total_count" json:"-"`
		}
		err := db.Select(&rows, `
			SELECT p.id, p.user_id, u.username, u.email, p.amount, p.status, p.reference,
			       to_char(p.requested_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"') as requested_at,
			       to_char(p.processed_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"') as processed_at,
			       p.admin_notes,
			       COUNT(*) OVER() as total_count
			FROM payout_requests p
			JOIN users u ON u.id = p.user_id
			WHERE ($1 = '' OR p.status = $1)
			ORDER BY (p.status = 'pending') DESC, p.requested_at ASC
			LIMIT $2 OFFSET $3
		`, status, limit, (page-1)*limit)
		if err != nil {
			log.Printf("[ADMIN] failed to list payout requests: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
			return
		}

		total := 0
		if len(rows) > 0 {
			total = rows[0].TotalCount
		}
		c.JSON(http.StatusOK, gin.H{
			"payouts": rows,
			"page":    page,
			"limit":   limit,
			"total":   total,
		})
	}
}

// ProcessPayout approves or rejects one pending withdrawal request.
func ProcessPayout(svc *payout.Service, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PayoutID   int    `json:"payout_id" binding:"required"`
			Action     string `json:"action" binding:"required"`
			AdminNotes string `json:"admin_notes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payout id and action are required"})
			return
		}

		adminID := c.GetInt("user_id")
		p, err := svc.Resolve(c.Request.Context(), req.PayoutID, adminID, req.Action, req.AdminNotes)
		if err != nil {
			admin.LogAdminAction(db, c.GetString("username"), c.ClientIP(), c.FullPath(), "process_payout",
				map[string]interface{}{
					"payout_id": req.PayoutID,
					"action":    req.Action,
					"error":     err.Error(),
				}, false)
			writeServiceError(c, err)
			return
		}

		admin.LogAdminAction(db, c.GetString("username"), c.ClientIP(), c.FullPath(), "process_payout",
			map[string]interface{}{
				"payout_id": p.ID,
				"user_id":   p.UserID,
				"amount":    p.Amount,
				"action":    req.Action,
			}, true)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Payout " + p.Status,
			"payout":  p,
		})
	}
}
