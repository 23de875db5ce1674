package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/fantasyarena/backend/internal/admin"
)

// GetAuditLog lists recent admin actions, newest first.
func GetAuditLog(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if limit < 1 || limit > 200 {
			limit = 50
		}

		logs, err := admin.GetAdminAuditLogs(db, limit, (page-1)*limit)
		if err != nil {
			log.Printf("[ADMIN] failed to load audit log: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"logs":  logs,
			"page":  page,
			"limit": limit,
		})
	}
}
