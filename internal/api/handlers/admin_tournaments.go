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
	"github.com/fantasyarena/backend/internal/wallet"
)

var validGameTypes = map[string]bool{
	"Free Fire": true,
	"BGMI":      true,
	"Valorant":  true,
	"CODM":      true,
}

// CreateTournament creates a new tournament in the upcoming state.
func CreateTournament(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name            string  `json:"name" binding:"required"`
			Description     string  `json:"description"`
			GameType        string  `json:"game_type" binding:"required"`
			TeamMode        string  `json:"team_mode" binding:"required"`
			EntryFee        float64 `json:"entry_fee"`
			PrizePool       float64 `json:"prize_pool"`
			MaxParticipants int     `json:"max_participants" binding:"required"`
			StartDate       string  `json:"start_date" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required tournament fields"})
			return
		}

		if !validGameTypes[req.GameType] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown game type"})
			return
		}
		switch req.TeamMode {
		case models.TeamModeSolo, models.TeamModeDuo, models.TeamModeSquad:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Team mode must be solo, duo or squad"})
			return
		}
		if req.EntryFee < 0 || req.PrizePool < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Entry fee and prize pool cannot be negative"})
			return
		}
		if req.MaxParticipants < models.SeatsForMode(req.TeamMode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Max participants must fit at least one team"})
			return
		}
		startDate, err := time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Start date must be RFC3339"})
			return
		}

		var id int
		err = db.QueryRow(`
			INSERT INTO tournaments (name, description, game_type, team_mode,
			                         entry_fee, prize_pool, max_participants, status, start_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 'upcoming', $8)
			RETURNING id
		`, req.Name, req.Description, req.GameType, req.TeamMode,
			req.EntryFee, req.PrizePool, req.MaxParticipants, startDate).Scan(&id)
		if err != nil {
			log.Printf("[ADMIN] failed to create tournament: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
			return
		}

		admin.LogAdminAction(db, c.GetString("username"), c.ClientIP(), c.FullPath(), "create_tournament",
			map[string]interface{}{"tournament_id": id, "name": req.Name, "game_type": req.GameType}, true)
		log.Printf("[ADMIN] tournament %d (%s) created by %s", id, req.Name, c.GetString("username"))
		c.JSON(http.StatusCreated, gin.H{"success": true, "tournament_id": id})
	}
}

// UpdateTournamentStatus moves a tournament through its lifecycle.
func UpdateTournamentStatus(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tournament id"})
			return
		}

		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
			return
		}
		switch req.Status {
		case models.TournamentUpcoming, models.TournamentActive, models.TournamentCompleted:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be upcoming, active or completed"})
			return
		}

		query := `UPDATE tournaments SET status = $1 WHERE id = $2`
		if req.Status == models.TournamentCompleted {
			query = `UPDATE tournaments SET status = $1, end_date = NOW() WHERE id = $2`
		}
		res, err := db.Exec(query, req.Status, tournamentID)
		if err != nil {
			log.Printf("[ADMIN] failed to update tournament %d status: %v", tournamentID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tournament not found"})
			return
		}

		admin.LogAdminAction(db, c.GetString("username"), c.ClientIP(), c.FullPath(), "update_tournament_status",
			map[string]interface{}{"tournament_id": tournamentID, "status": req.Status}, true)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Tournament status updated"})
	}
}

// AwardPrize credits a winner's winnings balance from a tournament's prize pool.
func AwardPrize(svc *wallet.Service, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tournament id"})
			return
		}

		var req struct {
			UserID int     `json:"user_id" binding:"required"`
			Amount float64 `json:"amount" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User id and amount are required"})
			return
		}

		var tournamentName string
		err = db.Get(&tournamentName, `SELECT name FROM tournaments WHERE id = $1`, tournamentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tournament not found"})
			return
		}

		var registered bool
		err = db.Get(&registered, `
			SELECT EXISTS (
				SELECT 1 FROM tournament_registrations
				WHERE tournament_id = $1 AND user_id = $2
			)
		`, tournamentID, req.UserID)
		if err == nil && !registered {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User is not registered in this tournament"})
			return
		}

		if err := svc.AwardWinnings(c.Request.Context(), req.UserID, req.Amount, tournamentName); err != nil {
			writeServiceError(c, err)
			return
		}

		admin.LogAdminAction(db, c.GetString("username"), c.ClientIP(), c.FullPath(), "award_prize",
			map[string]interface{}{
				"tournament_id": tournamentID,
				"user_id":       req.UserID,
				"amount":        req.Amount,
			}, true)
		log.Printf("[ADMIN] prize %.2f awarded to user %d for tournament %d", req.Amount, req.UserID, tournamentID)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Prize awarded"})
	}
}
