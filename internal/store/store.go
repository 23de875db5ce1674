package store

import (
	"context"
	"errors"

	"github.com/fantasyarena/backend/internal/models"
)

// Errors surfaced by store implementations. Services translate these into
// their own business-rule errors.
var (
	ErrNotFound              = errors.New("store: row not found")
	ErrDuplicateRegistration = errors.New("store: registration already exists")
	ErrCapacityExceeded      = errors.New("store: tournament capacity exceeded")
)

// UserStore reads and mutates user rows. The ForUpdate variants take a row
// lock so balance-check-then-debit is serialized per user.
type UserStore interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByIDForUpdate(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ListByUsernames(ctx context.Context, usernames []string) ([]models.User, error)
	UpdateBalances(ctx context.Context, id int, deposit, winnings float64) error
}

// TournamentStore reads and mutates tournament rows.
type TournamentStore interface {
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	GetByIDForUpdate(ctx context.Context, id int) (*models.Tournament, error)
	// IncrementParticipants adds delta seats. Returns ErrCapacityExceeded if
	// the result would pass max_participants.
	IncrementParticipants(ctx context.Context, id, delta int) error
}

// RegistrationStore manages per-seat registration rows and team records.
type RegistrationStore interface {
	Exists(ctx context.Context, userID, tournamentID int) (bool, error)
	// ListRegistered returns the subset of userIDs already registered for the
	// tournament.
	ListRegistered(ctx context.Context, userIDs []int, tournamentID int) ([]int, error)
	// Insert returns ErrDuplicateRegistration on a (user, tournament) conflict.
	Insert(ctx context.Context, reg *models.Registration) error
	InsertTeam(ctx context.Context, team *models.TeamRegistration) (int, error)
}

// TransactionLog is the append-only wallet audit trail.
type TransactionLog interface {
	Append(ctx context.Context, entry *models.WalletTransaction) error
	ListByUser(ctx context.Context, userID int) ([]models.WalletTransaction, error)
}

// PayoutStore manages withdrawal requests.
type PayoutStore interface {
	Insert(ctx context.Context, req *models.PayoutRequest) (int, error)
	GetByIDForUpdate(ctx context.Context, id int) (*models.PayoutRequest, error)
	// Resolve moves a pending request to a terminal status. Returns
	// ErrNotFound if the row is absent or no longer pending.
	Resolve(ctx context.Context, id int, status string, processedBy int, notes string) error
	ListPending(ctx context.Context) ([]models.PayoutRequest, error)
}

// Store bundles the collaborator stores behind one transaction boundary.
// WithinTx runs fn against a transaction-scoped Store; every mutation made
// through it commits or rolls back as one unit.
type Store interface {
	Users() UserStore
	Tournaments() TournamentStore
	Registrations() RegistrationStore
	Transactions() TransactionLog
	Payouts() PayoutStore
	WithinTx(ctx context.Context, fn func(Store) error) error
}
