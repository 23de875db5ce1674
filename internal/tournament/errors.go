package tournament

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentFull     = errors.New("tournament is full")
	ErrAlreadyRegistered  = errors.New("already registered for this tournament")
	ErrInvalidMode        = errors.New("invalid registration type")
	ErrInvalidTeam        = errors.New("invalid team composition")
)

// UserNotFoundError lists team member usernames that could not be resolved.
type UserNotFoundError struct {
	Usernames []string
}

func (e *UserNotFoundError) Error() string {
	if len(e.Usernames) == 0 {
		return "user not found"
	}
	return fmt.Sprintf("users not found: %s", strings.Join(e.Usernames, ", "))
}

// UserBannedError names the banned user blocking a registration.
type UserBannedError struct {
	Username string
}

func (e *UserBannedError) Error() string {
	return fmt.Sprintf("user %s is banned", e.Username)
}
