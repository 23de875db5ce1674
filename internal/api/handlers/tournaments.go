package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type tournamentRow struct {
	ID                  int     `db:"id" json:"id"`
	Name                string  `db:"name" json:"name"`
	Description         string  `db:"description" json:"description"`
	GameType            string  `db:"game_type" json:"game_type"`
	TeamMode            string  `db:"team_mode" json:"team_mode"`
	EntryFee            float64 `db:"entry_fee" json:"entry_fee"`
	PrizePool           float64 `db:"prize_pool" json:"prize_pool"`
	MaxParticipants     int     `db:"max_participants" json:"max_participants"`
	CurrentParticipants int     `db:"current_participants" json:"current_participants"`
	Status              string  `db:"status" json:"status"`
	StartDate           string  `db:"start_date" json:"start_date"`
	IsFree              bool    `db:"is_free" json:"is_free"`
	IsRegistered        bool    `db:"is_registered" json:"is_registered"`
}

// ListTournaments returns tournaments visible to the caller, optionally
// filtered by status, with a per-user registration flag.
func ListTournaments(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("user_id")
		status := c.DefaultQuery("status", "")

		query := `
			SELECT t.id, t.name, t.description, t.game_type, t.team_mode,
			       t.entry_fee, t.prize_pool, t.max_participants, t.current_participants,
			       t.status,
			       to_char(t.start_date, 'YYYY-MM-DD"T"HH24:MI:SS"Z"') as start_date,
			       (t.entry_fee = 0) as is_free,
			       EXISTS (
			           SELECT 1 FROM tournament_registrations r
			           WHERE r.tournament_id = t.id AND r.user_id = $1
			       ) as is_registered
			FROM tournaments t
		`
		args := []interface{}{userID}
		if status != "" {
			query += ` WHERE t.status = $2`
			args = append(args, status)
		}
		query += ` ORDER BY t.start_date ASC`

		var rows []tournamentRow
		if err := db.Select(&rows, query, args...); err != nil {
			log.Printf("[TOURNAMENT] failed to list tournaments: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
			return
		}

		c.JSON(http.StatusOK, gin.H{"tournaments": rows})
	}
}

// GetTournament returns a single tournament with the caller's registration flag.
func GetTournament(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tournament id"})
			return
		}
		userID := c.GetInt("user_id")

		var row tournamentRow
		err = db.Get(&row, `
			SELECT t.id, t.name, t.description, t.game_type, t.team_mode,
			       t.entry_fee, t.prize_pool, t.max_participants, t.current_participants,
			       t.status,
			       to_char(t.start_date, 'YYYY-MM-DD"T"HH24:MI:SS"Z"') as start_date,
			       (t.entry_fee = 0) as is_free,
			       EXISTS (
			           SELECT 1 FROM tournament_registrations r
			           WHERE r.tournament_id = t.id AND r.user_id = $2
			       ) as is_registered
			FROM tournaments t
			WHERE t.id = $1
		`, tournamentID, userID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tournament not found"})
			return
		}
		if err != nil {
			log.Printf("[TOURNAMENT] failed to load tournament %d: %v", tournamentID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
			return
		}

		c.JSON(http.StatusOK, row)
	}
}

// GetParticipants lists everyone registered in a tournament.
func GetParticipants(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tournament id"})
			return
		}

		var participants []struct {
			UserID           int           `db:"user_id" json:"user_id"`
			Username         string        `db:"username" json:"username"`
			RegistrationType string        `db:"registration_type" json:"registration_type"`
			TeamLeaderID     sql.NullInt64 `db:"team_leader_id" json:"team_leader_id,omitempty"`
			RegisteredAt     string        `db:"registered_at" json:"registered_at"`
		}
		err = db.Select(&participants, `
			SELECT r.user_id, u.username, r.registration_type, r.team_leader_id,
			       to_char(r.registered_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"') as registered_at
			FROM tournament_registrations r
			JOIN users u ON u.id = r.user_id
			WHERE r.tournament_id = $1
			ORDER BY r.registered_at ASC
		`, tournamentID)
		if err != nil {
			log.Printf("[TOURNAMENT] failed to list participants for tournament %d: %v", tournamentID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
			return
		}

		c.JSON(http.StatusOK, gin.H{"participants": participants})
	}
}

// GetTeams lists the registered teams for a duo or squad tournament,
// with member usernames resolved.
func GetTeams(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tournament id"})
			return
		}

		var teams []struct {
			ID          int           `db:"id" json:"id"`
			TeamName    string        `db:"team_name" json:"team_name"`
			LeaderID    int           `db:"team_leader_id" json:"team_leader_id"`
			LeaderName  string        `db:"leader_name" json:"leader_name"`
			TeamMembers pq.Int64Array `db:"team_members" json:"-"`
			TeamSize    int           `db:"team_size" json:"team_size"`
			Members     []string      `db:"-" json:"members"`
		}
		err = db.Select(&teams, `
			SELECT tr.id, tr.team_name, tr.team_leader_id, u.username as leader_name,
			       tr.team_members, tr.team_size
			FROM team_registrations tr
			JOIN users u ON u.id = tr.team_leader_id
			WHERE tr.tournament_id = $1
			ORDER BY tr.created_at ASC
		`, tournamentID)
		if err != nil {
			log.Printf("[TOURNAMENT] failed to list teams for tournament %d: %v", tournamentID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
			return
		}

		for i := range teams {
			if len(teams[i].TeamMembers) == 0 {
				teams[i].Members = []string{}
				continue
			}
			query, args, err := sqlx.In(
				`SELECT username FROM users WHERE id IN (?) ORDER BY username`,
				[]int64(teams[i].TeamMembers))
			if err != nil {
				continue
			}
			var names []string
			if err := db.Select(&names, db.Rebind(query), args...); err != nil {
				log.Printf("[TOURNAMENT] failed to resolve team members: %v", err)
				continue
			}
			teams[i].Members = names
		}

		c.JSON(http.StatusOK, gin.H{"teams": teams})
	}
}
