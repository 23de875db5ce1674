package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/fantasyarena/backend/internal/admin"
	"github.com/fantasyarena/backend/internal/models"
)

// GetAdminUsers lists players with balances and ban state, paginated, with an
// optional username/email search.
func GetAdminUsers(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
		if limit < 1 || limit > 100 {
			limit = 25
		}
		search := c.Query("search")

		var rows []struct {
			ID              int     `db:"id" json:"id"`
			Username        string  `db:"username" json:"username"`
			Email           string  `db:"email" json:"email"`
			DepositBalance  float64 `db:"deposit_balance" json:"deposit_balance"`
			WinningsBalance float64 `db:"winnings_balance" json:"winnings_balance"`
			BanStatus       string  `db:"ban_status" json:"ban_status"`
			BanReason       *string `db:"ban_reason" json:"ban_reason,omitempty"`
			BanExpiry       *string `db:"ban_expiry" json:"ban_expiry,omitempty"`
			CreatedAt       string  `db:"created_at" json:"created_at"`
			TotalCount      int     `db:"total_count" json:"-"`
		}
		err := db.Select(&rows, `
			SELECT id, username, email, deposit_balance, winnings_balance,
			       ban_status, ban_reason,
			       to_char(ban_expiry, 'YYYY-MM-DD"T"HH24:MI:SS"Z"') as ban_expiry,
			       to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"') as created_at,
			       COUNT(*) OVER() as total_count
			FROM users
			WHERE is_admin = false
			  AND ($1 = '' OR username ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`, search, limit, (page-1)*limit)
		if err != nil {
			log.Printf("[ADMIN] failed to list users: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
			return
		}

		total := 0
		if len(rows) > 0 {
			total = rows[0].TotalCount
		}
		c.JSON(http.StatusOK, gin.H{
			"users": rows,
			"page":  page,
			"limit": limit,
			"total": total,
		})
	}
}

// BanUser bans a player, permanently or for a fixed number of hours.
func BanUser(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID        int    `json:"user_id" binding:"required"`
			BanType       string `json:"ban_type" binding:"required"`
			DurationHours int    `json:"duration_hours"`
			Reason        string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User id and ban type are required"})
			return
		}

		var status string
		var expiry interface{}
		switch req.BanType {
		case "permanent":
			status = models.BanStatusBanned
			expiry = nil
		case "temporary":
			if req.DurationHours <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Temporary ban requires a positive duration"})
				return
			}
			status = models.BanStatusTempBanned
			expiry = time.Now().Add(time.Duration(req.DurationHours) * time.Hour)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ban type must be permanent or temporary"})
			return
		}

		res, err := db.Exec(`
			UPDATE users
			SET ban_status = $1, ban_expiry = $2, ban_reason = $3,
			    banned_at = NOW(), banned_by = $4
			WHERE id = $5 AND is_admin = false
		`, status, expiry, req.Reason, c.GetInt("user_id"), req.UserID)
		if err != nil {
			log.Printf("[ADMIN] failed to ban user %d: %v", req.UserID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User not found"})
			return
		}

		admin.LogAdminAction(db, c.GetString("username"), c.ClientIP(), c.FullPath(), "ban_user",
			map[string]interface{}{
				"user_id":  req.UserID,
				"ban_type": req.BanType,
				"duration": req.DurationHours,
				"reason":   req.Reason,
			}, true)
		log.Printf("[ADMIN] user %d banned (%s) by %s", req.UserID, req.BanType, c.GetString("username"))
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "User banned"})
	}
}

// UnbanUser clears a player's ban state.
func UnbanUser(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID int `json:"user_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User id is required"})
			return
		}

		res, err := db.Exec(`
			UPDATE users
			SET ban_status = 'active', ban_expiry = NULL, ban_reason = NULL,
			    banned_at = NULL, banned_by = NULL
			WHERE id = $1
		`, req.UserID)
		if err != nil {
			log.Printf("[ADMIN] failed to unban user %d: %v", req.UserID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User not found"})
			return
		}

		admin.LogAdminAction(db, c.GetString("username"), c.ClientIP(), c.FullPath(), "unban_user",
			map[string]interface{}{"user_id": req.UserID}, true)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "User unbanned"})
	}
}
