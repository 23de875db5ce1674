package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fantasyarena/backend/internal/models"
	"github.com/fantasyarena/backend/internal/tournament"
)

// RegisterTournament admits the caller into a tournament. Solo entries carry
// no team data; duo entries name one teammate; squad entries name a team plus
// three teammates, or four when bringing a substitute.
func RegisterTournament(svc *tournament.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tournament id"})
			return
		}

		var req struct {
			RegistrationType string `json:"registration_type"`
			TeamData         *struct {
				TeamName string   `json:"team_name"`
				Teammate string   `json:"teammate"`
				Players  []string `json:"players"`
			} `json:"team_data"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration payload"})
			return
		}

		userID := c.GetInt("user_id")
		if req.RegistrationType == "" {
			req.RegistrationType = models.TeamModeSolo
		}

		var result *tournament.Result

		switch req.RegistrationType {
		case models.TeamModeSolo:
			result, err = svc.RegisterSolo(c.Request.Context(), userID, tournamentID)
		case models.TeamModeDuo:
			if req.TeamData == nil || req.TeamData.Teammate == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Duo registration requires a teammate"})
				return
			}
			result, err = svc.RegisterTeam(c.Request.Context(), userID, tournamentID, tournament.TeamRequest{
				Mode:            models.TeamModeDuo,
				MemberUsernames: []string{req.TeamData.Teammate},
			})
		case models.TeamModeSquad:
			if req.TeamData == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Squad registration requires team details"})
				return
			}
			result, err = svc.RegisterTeam(c.Request.Context(), userID, tournamentID, tournament.TeamRequest{
				Mode:            models.TeamModeSquad,
				TeamName:        req.TeamData.TeamName,
				MemberUsernames: req.TeamData.Players,
			})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown registration type"})
			return
		}

		if err != nil {
			writeServiceError(c, err)
			return
		}

		message := "Registration successful"
		if result.Free {
			message = "Registered for free tournament"
		}
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"message":      message,
			"registration": result,
		})
	}
}
