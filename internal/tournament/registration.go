package tournament

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/fantasyarena/backend/internal/models"
	"github.com/fantasyarena/backend/internal/store"
	"github.com/fantasyarena/backend/internal/wallet"
)

// LobbyNotifier pushes participant-count updates to connected lobby clients
// after a registration commits.
type LobbyNotifier interface {
	NotifyParticipants(tournamentID, current, max int)
}

// Service admits users and teams into tournaments. Every admission runs as
// one store transaction: balance debit, registration rows and the
// participant-count increment commit or roll back together.
type Service struct {
	store    store.Store
	notifier LobbyNotifier
}

func NewService(s store.Store, notifier LobbyNotifier) *Service {
	return &Service{store: s, notifier: notifier}
}

// TeamRequest describes a duo or squad entry. MemberUsernames are the
// teammates joining alongside the leader: exactly 1 for duo, 3 for a squad
// of four, or 4 when the squad brings the optional substitute.
type TeamRequest struct {
	Mode            string
	TeamName        string
	MemberUsernames []string
}

// Result reports a committed registration back to the caller.
type Result struct {
	TournamentName      string  `json:"tournament_name"`
	Free                bool    `json:"free"`
	EntryFee            float64 `json:"entry_fee"`
	Seats               int     `json:"seats"`
	TeamID              int     `json:"team_id,omitempty"`
	TeamName            string  `json:"team_name,omitempty"`
	CurrentParticipants int     `json:"current_participants"`
	MaxParticipants     int     `json:"max_participants"`
}

// RegisterSolo admits a single user, charging the entry fee against the
// combined balance for paid tournaments.
func (s *Service) RegisterSolo(ctx context.Context, userID, tournamentID int) (*Result, error) {
	var result Result

	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		t, err := tx.Tournaments().GetByIDForUpdate(ctx, tournamentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("load tournament %d: %w", tournamentID, err)
		}

		if t.CurrentParticipants >= t.MaxParticipants {
			return ErrTournamentFull
		}

		registered, err := tx.Registrations().Exists(ctx, userID, tournamentID)
		if err != nil {
			return fmt.Errorf("check registration: %w", err)
		}
		if registered {
			return ErrAlreadyRegistered
		}

		if t.EntryFee > 0 {
			desc := fmt.Sprintf("Tournament registration: %s", t.Name)
			if _, _, err := wallet.DebitCombined(ctx, tx, userID, t.EntryFee, desc); err != nil {
				return err
			}
		}

		reg := &models.Registration{
			UserID:           userID,
			TournamentID:     tournamentID,
			RegistrationType: models.TeamModeSolo,
		}
		if err := tx.Registrations().Insert(ctx, reg); err != nil {
			if errors.Is(err, store.ErrDuplicateRegistration) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("insert registration: %w", err)
		}

		if err := tx.Tournaments().IncrementParticipants(ctx, tournamentID, 1); err != nil {
			if errors.Is(err, store.ErrCapacityExceeded) {
				return ErrTournamentFull
			}
			return fmt.Errorf("increment participants: %w", err)
		}

		result = Result{
			TournamentName:      t.Name,
			Free:                t.EntryFee == 0,
			EntryFee:            t.EntryFee,
			Seats:               1,
			CurrentParticipants: t.CurrentParticipants + 1,
			MaxParticipants:     t.MaxParticipants,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[REG] Solo registration committed: user=%d tournament=%d fee=%.2f", userID, tournamentID, result.EntryFee)
	s.notifyLobby(tournamentID, result.CurrentParticipants, result.MaxParticipants)
	return &result, nil
}

// RegisterTeam admits a duo or squad. The leader alone pays the entry fee
// for every seat. All members are resolved and validated before any
// mutation, so no partial team is ever admitted.
func (s *Service) RegisterTeam(ctx context.Context, leaderID, tournamentID int, req TeamRequest) (*Result, error) {
	seats, err := validateTeamShape(req)
	if err != nil {
		return nil, err
	}

	var result Result

	err = s.store.WithinTx(ctx, func(tx store.Store) error {
		t, err := tx.Tournaments().GetByIDForUpdate(ctx, tournamentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("load tournament %d: %w", tournamentID, err)
		}

		leader, err := tx.Users().GetByIDForUpdate(ctx, leaderID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return &UserNotFoundError{}
			}
			return fmt.Errorf("load leader %d: %w", leaderID, err)
		}
		if leader.BanStatus != models.BanStatusActive {
			return &UserBannedError{Username: leader.Username}
		}

		for _, name := range req.MemberUsernames {
			if name == leader.Username {
				return ErrInvalidTeam
			}
		}

		members, err := tx.Users().ListByUsernames(ctx, req.MemberUsernames)
		if err != nil {
			return fmt.Errorf("resolve team members: %w", err)
		}
		if missing := missingUsernames(req.MemberUsernames, members); len(missing) > 0 {
			return &UserNotFoundError{Usernames: missing}
		}
		for _, member := range members {
			if member.BanStatus != models.BanStatusActive {
				return &UserBannedError{Username: member.Username}
			}
		}

		allIDs := make([]int, 0, seats)
		allIDs = append(allIDs, leaderID)
		for _, member := range members {
			allIDs = append(allIDs, member.ID)
		}

		registered, err := tx.Registrations().ListRegistered(ctx, allIDs, tournamentID)
		if err != nil {
			return fmt.Errorf("check registrations: %w", err)
		}
		if len(registered) > 0 {
			return ErrAlreadyRegistered
		}

		if t.MaxParticipants-t.CurrentParticipants < seats {
			return ErrTournamentFull
		}

		teamName := req.TeamName
		if teamName == "" && req.Mode == models.TeamModeDuo {
			teamName = fmt.Sprintf("%s & %s", leader.Username, members[0].Username)
		}

		totalFee := t.EntryFee * float64(seats)
		if totalFee > 0 {
			desc := fmt.Sprintf("Team registration: %s (%s)", t.Name, teamName)
			if _, _, err := wallet.DebitCombined(ctx, tx, leaderID, totalFee, desc); err != nil {
				return err
			}
		}

		memberIDs := make([]int64, len(allIDs))
		for i, id := range allIDs {
			memberIDs[i] = int64(id)
		}
		team := &models.TeamRegistration{
			TournamentID: tournamentID,
			TeamLeaderID: leaderID,
			TeamName:     teamName,
			TeamMembers:  memberIDs,
			TeamSize:     seats,
		}
		teamID, err := tx.Registrations().InsertTeam(ctx, team)
		if err != nil {
			return fmt.Errorf("insert team: %w", err)
		}

		for _, id := range allIDs {
			reg := &models.Registration{
				UserID:           id,
				TournamentID:     tournamentID,
				RegistrationType: req.Mode,
				TeamLeaderID:     sql.NullInt64{Int64: int64(leaderID), Valid: true},
			}
			if err := tx.Registrations().Insert(ctx, reg); err != nil {
				if errors.Is(err, store.ErrDuplicateRegistration) {
					return ErrAlreadyRegistered
				}
				return fmt.Errorf("insert member registration: %w", err)
			}
		}

		if err := tx.Tournaments().IncrementParticipants(ctx, tournamentID, seats); err != nil {
			if errors.Is(err, store.ErrCapacityExceeded) {
				return ErrTournamentFull
			}
			return fmt.Errorf("increment participants: %w", err)
		}

		result = Result{
			TournamentName:      t.Name,
			Free:                totalFee == 0,
			EntryFee:            totalFee,
			Seats:               seats,
			TeamID:              teamID,
			TeamName:            teamName,
			CurrentParticipants: t.CurrentParticipants + seats,
			MaxParticipants:     t.MaxParticipants,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[REG] Team registration committed: leader=%d tournament=%d team=%q seats=%d fee=%.2f",
		leaderID, tournamentID, result.TeamName, result.Seats, result.EntryFee)
	s.notifyLobby(tournamentID, result.CurrentParticipants, result.MaxParticipants)
	return &result, nil
}

func (s *Service) notifyLobby(tournamentID, current, max int) {
	if s.notifier != nil {
		s.notifier.NotifyParticipants(tournamentID, current, max)
	}
}

// validateTeamShape checks the mode and member list and returns the seat
// count (members plus leader).
func validateTeamShape(req TeamRequest) (int, error) {
	seats := len(req.MemberUsernames) + 1

	switch req.Mode {
	case models.TeamModeDuo:
		if seats != 2 {
			return 0, ErrInvalidTeam
		}
	case models.TeamModeSquad:
		// 4 main players, optionally a 5th substitute
		if seats != 4 && seats != 5 {
			return 0, ErrInvalidTeam
		}
		if req.TeamName == "" {
			return 0, ErrInvalidTeam
		}
	default:
		return 0, ErrInvalidMode
	}

	seen := make(map[string]bool, len(req.MemberUsernames))
	for _, name := range req.MemberUsernames {
		if name == "" || seen[name] {
			return 0, ErrInvalidTeam
		}
		seen[name] = true
	}
	return seats, nil
}

func missingUsernames(requested []string, found []models.User) []string {
	byName := make(map[string]bool, len(found))
	for _, u := range found {
		byName[u.Username] = true
	}
	var missing []string
	for _, name := range requested {
		if !byName[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
