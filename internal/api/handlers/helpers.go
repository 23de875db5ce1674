package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fantasyarena/backend/internal/payout"
	"github.com/fantasyarena/backend/internal/tournament"
	"github.com/fantasyarena/backend/internal/wallet"
)

// writeServiceError maps a service error onto the HTTP surface. Business-rule
// failures travel to the client verbatim; anything unclassified is a store
// failure, logged with context and masked behind a generic message.
func writeServiceError(c *gin.Context, err error) {
	var notFound *tournament.UserNotFoundError
	var banned *tournament.UserBannedError

	switch {
	case errors.As(err, &banned):
		c.JSON(http.StatusForbidden, gin.H{"error": banned.Error()})
	case errors.As(err, &notFound),
		errors.Is(err, wallet.ErrInvalidAmount),
		errors.Is(err, wallet.ErrInsufficientBalance),
		errors.Is(err, wallet.ErrUserNotFound),
		errors.Is(err, tournament.ErrTournamentNotFound),
		errors.Is(err, tournament.ErrTournamentFull),
		errors.Is(err, tournament.ErrAlreadyRegistered),
		errors.Is(err, tournament.ErrInvalidMode),
		errors.Is(err, tournament.ErrInvalidTeam),
		errors.Is(err, payout.ErrBelowMinimum),
		errors.Is(err, payout.ErrInvalidAction),
		errors.Is(err, payout.ErrNotFound),
		errors.Is(err, payout.ErrAlreadyProcessed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[API] store failure on %s: %v", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
	}
}
