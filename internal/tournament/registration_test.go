package tournament

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/fantasyarena/backend/internal/models"
	"github.com/fantasyarena/backend/internal/store/storetest"
	"github.com/fantasyarena/backend/internal/wallet"
)

func newTestService(s *storetest.MemStore) *Service {
	return NewService(s, nil)
}

func addUser(s *storetest.MemStore, username string, deposit, winnings float64) int {
	return s.AddUser(models.User{
		Username:        username,
		Email:           username + "@example.com",
		DepositBalance:  deposit,
		WinningsBalance: winnings,
	})
}

func addTournament(s *storetest.MemStore, fee float64, max, current int, mode string) int {
	return s.AddTournament(models.Tournament{
		Name:                "Friday Cup",
		GameType:            "BGMI",
		TeamMode:            mode,
		EntryFee:            fee,
		MaxParticipants:     max,
		CurrentParticipants: current,
		StartDate:           time.Now().Add(24 * time.Hour),
	})
}

func TestSoloRegistrationPaid(t *testing.T) {
	s := storetest.NewMemStore()
	svc := newTestService(s)
	userID := addUser(s, "alice", 10, 5)
	tournamentID := addTournament(s, 12, 16, 0, models.TeamModeSolo)

	res, err := svc.RegisterSolo(context.Background(), userID, tournamentID)
	if err != nil {
		t.Fatalf("RegisterSolo failed: %v", err)
	}
	if res.Free || res.EntryFee != 12 {
		t.Errorf("result: free=%v fee=%.2f, want paid/12", res.Free, res.EntryFee)
	}

	user := s.User(userID)
	if user.DepositBalance != 0 || user.WinningsBalance != 3 {
		t.Errorf("balances: deposit=%.2f winnings=%.2f, want 0/3", user.DepositBalance, user.WinningsBalance)
	}
	if got := s.Tournament(tournamentID).CurrentParticipants; got != 1 {
		t.Errorf("current_participants=%d, want 1", got)
	}
	if regs := s.TournamentRegistrations(tournamentID); len(regs) != 1 || regs[0].RegistrationType != models.TeamModeSolo {
		t.Errorf("unexpected registration rows: %+v", regs)
	}
}

func TestSoloRegistrationFree(t *testing.T) {
	s := storetest.NewMemStore()
	svc := newTestService(s)
	userID := addUser(s, "alice", 10, 5)
	tournamentID := addTournament(s, 0, 16, 0, models.TeamModeSolo)

	res, err := svc.RegisterSolo(context.Background(), userID, tournamentID)
	if err != nil {
		t.Fatalf("RegisterSolo failed: %v", err)
	}
	if !res.Free {
		t.Errorf("expected free registration")
	}

	// Free joins touch no balance and log nothing
	user := s.User(userID)
	if user.DepositBalance != 10 || user.WinningsBalance != 5 {
		t.Errorf("balances changed on free join: deposit=%.2f winnings=%.2f", user.DepositBalance, user.WinningsBalance)
	}
	if txns := s.UserTransactions(userID); len(txns) != 0 {
		t.Errorf("free join logged %d transactions", len(txns))
	}
	if got := s.Tournament(tournamentID).CurrentParticipants; got != 1 {
		t.Errorf("current_participants=%d, want 1", got)
	}
}

func TestSoloRegistrationFull(t *testing.T) {
	s := storetest.NewMemStore()
	svc := newTestService(s)
	userID := addUser(s, "alice", 100, 0)
	tournamentID := addTournament(s, 5, 4, 4, models.TeamModeSolo)

	if _, err := svc.RegisterSolo(context.Background(), userID, tournamentID); !errors.Is(err, ErrTournamentFull) {
		t.Fatalf("expected ErrTournamentFull, got %v", err)
	}
	if got := s.User(userID).DepositBalance; got != 100 {
		t.Errorf("balance touched on full tournament: %.2f", got)
	}
}

func TestSoloRegistrationDuplicate(t *testing.T) {
	s := storetest.NewMemStore()
	svc := newTestService(s)
	userID := addUser(s, "alice", 100, 0)
	tournamentID := addTournament(s, 5, 16, 0, models.TeamModeSolo)
	ctx := context.Background()

	if _, err := svc.RegisterSolo(ctx, userID, tournamentID); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := svc.RegisterSolo(ctx, userID, tournamentID); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}

	// The count incremented exactly once and the fee charged exactly once
	if got := s.Tournament(tournamentID).CurrentParticipants; got != 1 {
		t.Errorf("current_participants=%d, want 1", got)
	}
	if got := s.User(userID).DepositBalance; got != 95 {
		t.Errorf("deposit=%.2f, want 95", got)
	}
}

func TestSoloRegistrationInsufficientBalanceRollsBack(t *testing.T) {
	s := storetest.NewMemStore()
	svc := newTestService(s)
	userID := addUser(s, "alice", 3, 2)
	tournamentID := addTournament(s, 12, 16, 0, models.TeamModeSolo)

	if _, err := svc.RegisterSolo(context.Background(), userID, tournamentID); !errors.Is(err, wallet.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if regs := s.TournamentRegistrations(tournamentID); len(regs) != 0 {
		t.Errorf("registration row left behind after failed payment")
	}
	if got := s.Tournament(tournamentID).CurrentParticipants; got != 0 {
		t.Errorf("current_participants=%d, want 0", got)
	}
}

func TestSoloRegistrationUnknownTournament(t *testing.T) {
	s := storetest.NewMemStore()
	svc := newTestService(s)
	userID := addUser(s, "alice", 10, 0)

	if _, err := svc.RegisterSolo(context.Background(), userID, 42); !errors.Is(err, ErrTournamentNotFound) {
		t.Fatalf("expected ErrTournamentNotFound, got %v", err)
	}
}

func TestTeamRegistrationLeaderPays(t *testing.T) {
	s := storetest.NewMemStore()
	svc := newTestService(s)
	leaderID := addUser(s, "alice", 15, 10)
	mateID := addUser(s, "bob", 50, 50)
	tournamentID := addTournament(s, 10, 16, 0, models.TeamModeDuo)

	res, err := svc.RegisterTeam(context.Background(), leaderID, tournamentID, TeamRequest{
		Mode:            models.TeamModeDuo,
		MemberUsernames: []string{"bob"},
	})
	if err != nil {
		t.Fatalf("RegisterTeam failed: %v", err)
	}
	if res.Seats != 2 || res.EntryFee != 20 {
		t.Errorf("result: seats=%d fee=%.2f, want 2/20", res.Seats, res.EntryFee)
	}
	if res.TeamName != "alice & bob" {
		t.Errorf("duo team name %q, want %q", res.TeamName, "alice & bob")
	}

	// Leader bears the whole fee: 15 from deposit, 5 from winnings
	leader := s.User(leaderID)
	if leader.DepositBalance != 0 || leader.WinningsBalance != 5 {
		t.Errorf("leader balances: deposit=%.2f winnings=%.2f, want 0/5", leader.DepositBalance, leader.WinningsBalance)
	}
	mate := s.User(mateID)
	if mate.DepositBalance != 50 || mate.WinningsBalance != 50 {
		t.Errorf("teammate balances changed: deposit=%.2f winnings=%.2f", mate.DepositBalance, mate.WinningsBalance)
	}

	if got := s.Tournament(tournamentID).CurrentParticipants; got != 2 {
		t.Errorf("current_participants=%d, want 2", got)
	}
	regs := s.TournamentRegistrations(tournamentID)
	if len(regs) != 2 {
		t.Fatalf("expected 2 registration rows, got %d", len(regs))
	}
	for _, reg := range regs {
		if reg.TeamLeaderID != (sql.NullInt64{Int64: int64(leaderID), Valid: true}) {
			t.Errorf("registration missing team_leader_id back-reference: %+v", reg)
		}
	}
	if teams := s.Teams(); len(teams) != 1 || teams[0].TeamSize != 2 {
		t.Errorf("unexpected team rows: %+v", teams)
	}
}

func TestTeamRegistrationSquadWithSubstitute(t *testing.T) {
	s := storetest.NewMemStore()
	svc := newTestService(s)
	leaderID := addUser(s, "alice", 100, 0)
	for _, name := range []string{"bob", "carol", "dave", "erin"} {
		addUser(s, name, 0, 0)
	}
	tournamentID := addTournament(s, 10, 16, 0, models.TeamModeSquad)

	res, err := svc.RegisterTeam(context.Background(), leaderID, tournamentID, TeamRequest{
		Mode:            models.TeamModeSquad,
		TeamName:        "Night Owls",
		MemberUsernames: []string{"bob", "carol", "dave", "erin"},
	})
	if err != nil {
		t.Fatalf("RegisterTeam failed: %v", err)
	}

	// The substitute occupies a seat and is charged for
	if res.Seats != 5 || res.EntryFee != 50 {
		t.Errorf("result: seats=%d fee=%.2f, want 5/50", res.Seats, res.EntryFee)
	}
	if got := s.User(leaderID).DepositBalance; got != 50 {
		t.Errorf("leader deposit=%.2f, want 50", got)
	}
	if got := s.Tournament(tournamentID).CurrentParticipants; got != 5 {
		t.Errorf("current_participants=%d, want 5", got)
	}
}

func TestTeamRegistrationFullKeepsCount(t *testing.T) {
	s := storetest.NewMemStore()
	svc := newTestService(s)
	leaderID := addUser(s, "alice", 100, 0)
	for _, name := range []string{"bob", "carol", "dave"} {
		addUser(s, name, 0, 0)
	}
	tournamentID := addTournament(s, 0, 4, 3, models.TeamModeSquad)

	_, err := svc.RegisterTeam(context.Background(), leaderID, tournamentID, TeamRequest{
		Mode:            models.TeamModeSquad,
		TeamName:        "Night Owls",
		MemberUsernames: []string{"bob", "carol", "dave"},
	})
	if !errors.Is(err, ErrTournamentFull) {
		t.Fatalf("expected ErrTournamentFull, got %v", err)
	}
	if got := s.Tournament(tournamentID).CurrentParticipants; got != 3 {
		t.Errorf("current_participants=%d, want 3", got)
	}
}

func TestTeamRegistrationUnresolvedMembers(t *testing.T) {
	s := storetest.NewMemStore()
	svc := newTestService(s)
	leaderID := addUser(s, "alice", 100, 0)
	addUser(s, "bob", 0, 0)
	tournamentID := addTournament(s, 5, 16, 0, models.TeamModeSquad)

	_, err := svc.RegisterTeam(context.Background(), leaderID, tournamentID, TeamRequest{
		Mode:            models.TeamModeSquad,
		TeamName:        "Night Owls",
		MemberUsernames: []string{"bob", "ghost", "phantom"},
	})

	var notFound *UserNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected UserNotFoundError, got %v", err)
	}
	if len(notFound.Usernames) != 2 {
		t.Errorf("unresolved names %v, want [ghost phantom]", notFound.Usernames)
	}
	if regs := s.TournamentRegistrations(tournamentID); len(regs) != 0 {
		t.Errorf("partial team admitted: %+v", regs)
	}
}

func TestTeamRegistrationBannedMember(t *testing.T) {
	s := storetest.NewMemStore()
	svc := newTestService(s)
	leaderID := addUser(s, "alice", 100, 0)
	s.AddUser(models.User{Username: "bob", Email: "bob@example.com", BanStatus: models.BanStatusBanned})
	tournamentID := addTournament(s, 5, 16, 0, models.TeamModeDuo)

	_, err := svc.RegisterTeam(context.Background(), leaderID, tournamentID, TeamRequest{
		Mode:            models.TeamModeDuo,
		MemberUsernames: []string{"bob"},
	})

	var banned *UserBannedError
	if !errors.As(err, &banned) {
		t.Fatalf("expected UserBannedError, got %v", err)
	}
	if banned.Username != "bob" {
		t.Errorf("banned username %q, want bob", banned.Username)
	}
	if got := s.User(leaderID).DepositBalance; got != 100 {
		t.Errorf("leader charged despite banned member: %.2f", got)
	}
}

func TestTeamRegistrationMemberAlreadyRegistered(t *testing.T) {
	s := storetest.NewMemStore()
	svc := newTestService(s)
	leaderID := addUser(s, "alice", 100, 0)
	mateID := addUser(s, "bob", 100, 0)
	tournamentID := addTournament(s, 0, 16, 0, models.TeamModeDuo)
	ctx := context.Background()

	if _, err := svc.RegisterSolo(ctx, mateID, tournamentID); err != nil {
		t.Fatalf("seed solo registration failed: %v", err)
	}

	_, err := svc.RegisterTeam(ctx, leaderID, tournamentID, TeamRequest{
		Mode:            models.TeamModeDuo,
		MemberUsernames: []string{"bob"},
	})
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if got := s.Tournament(tournamentID).CurrentParticipants; got != 1 {
		t.Errorf("current_participants=%d, want 1", got)
	}
}

func TestTeamRegistrationShapeValidation(t *testing.T) {
	s := storetest.NewMemStore()
	svc := newTestService(s)
	leaderID := addUser(s, "alice", 100, 0)
	tournamentID := addTournament(s, 0, 16, 0, models.TeamModeSquad)
	ctx := context.Background()

	cases := []struct {
		name string
		req  TeamRequest
		want error
	}{
		{"duo with two mates", TeamRequest{Mode: models.TeamModeDuo, MemberUsernames: []string{"b", "c"}}, ErrInvalidTeam},
		{"squad too small", TeamRequest{Mode: models.TeamModeSquad, TeamName: "x", MemberUsernames: []string{"b"}}, ErrInvalidTeam},
		{"squad too large", TeamRequest{Mode: models.TeamModeSquad, TeamName: "x", MemberUsernames: []string{"b", "c", "d", "e", "f"}}, ErrInvalidTeam},
		{"squad without name", TeamRequest{Mode: models.TeamModeSquad, MemberUsernames: []string{"b", "c", "d"}}, ErrInvalidTeam},
		{"duplicate member", TeamRequest{Mode: models.TeamModeSquad, TeamName: "x", MemberUsernames: []string{"b", "b", "c"}}, ErrInvalidTeam},
		{"unknown mode", TeamRequest{Mode: "trio", MemberUsernames: []string{"b", "c"}}, ErrInvalidMode},
	}
	for _, tc := range cases {
		if _, err := svc.RegisterTeam(ctx, leaderID, tournamentID, tc.req); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestTeamRegistrationLeaderInMemberList(t *testing.T) {
	s := storetest.NewMemStore()
	svc := newTestService(s)
	leaderID := addUser(s, "alice", 100, 0)
	tournamentID := addTournament(s, 0, 16, 0, models.TeamModeDuo)

	_, err := svc.RegisterTeam(context.Background(), leaderID, tournamentID, TeamRequest{
		Mode:            models.TeamModeDuo,
		MemberUsernames: []string{"alice"},
	})
	if !errors.Is(err, ErrInvalidTeam) {
		t.Fatalf("expected ErrInvalidTeam, got %v", err)
	}
}
