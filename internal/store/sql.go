package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/fantasyarena/backend/internal/models"
)

const userColumns = `id, username, email, password_hash, deposit_balance, winnings_balance,
	is_admin, ban_status, ban_expiry, ban_reason, banned_at, banned_by, created_at`

const tournamentColumns = `id, name, description, game_type, team_mode, entry_fee, prize_pool,
	max_participants, current_participants, status, start_date, end_date, created_at`

// SQLStore is the PostgreSQL-backed Store. Outside a transaction it runs
// against the pool; WithinTx hands out a copy scoped to a single *sqlx.Tx.
type SQLStore struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

// New creates a SQLStore on top of an sqlx connection pool.
func New(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, ext: db}
}

func (s *SQLStore) Users() UserStore                 { return &userStore{s.ext} }
func (s *SQLStore) Tournaments() TournamentStore     { return &tournamentStore{s.ext} }
func (s *SQLStore) Registrations() RegistrationStore { return &registrationStore{s.ext} }
func (s *SQLStore) Transactions() TransactionLog     { return &transactionLog{s.ext} }
func (s *SQLStore) Payouts() PayoutStore             { return &payoutStore{s.ext} }

// WithinTx runs fn inside a database transaction. Nested calls reuse the
// already-open transaction.
func (s *SQLStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if _, ok := s.ext.(*sqlx.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&SQLStore{db: s.db, ext: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type userStore struct{ ext sqlx.ExtContext }

func (u *userStore) GetByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, u.ext, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &user, nil
}

func (u *userStore) GetByIDForUpdate(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, u.ext, &user, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &user, nil
}

func (u *userStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, u.ext, &user, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &user, nil
}

func (u *userStore) ListByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE username IN (?)`, usernames)
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := sqlx.SelectContext(ctx, u.ext, &users, u.ext.Rebind(query), args...); err != nil {
		return nil, err
	}
	return users, nil
}

func (u *userStore) UpdateBalances(ctx context.Context, id int, deposit, winnings float64) error {
	res, err := u.ext.ExecContext(ctx,
		`UPDATE users SET deposit_balance = $1, winnings_balance = $2 WHERE id = $3`,
		deposit, winnings, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type tournamentStore struct{ ext sqlx.ExtContext }

func (t *tournamentStore) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	var tournament models.Tournament
	err := sqlx.GetContext(ctx, t.ext, &tournament, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &tournament, nil
}

func (t *tournamentStore) GetByIDForUpdate(ctx context.Context, id int) (*models.Tournament, error) {
	var tournament models.Tournament
	err := sqlx.GetContext(ctx, t.ext, &tournament, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &tournament, nil
}

func (t *tournamentStore) IncrementParticipants(ctx context.Context, id, delta int) error {
	// Guarded update: the capacity check and the increment are one statement,
	// so concurrent registrations cannot over-admit.
	res, err := t.ext.ExecContext(ctx, `
		UPDATE tournaments SET current_participants = current_participants + $2
		WHERE id = $1 AND current_participants + $2 <= max_participants
	`, id, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCapacityExceeded
	}
	return nil
}

type registrationStore struct{ ext sqlx.ExtContext }

func (r *registrationStore) Exists(ctx context.Context, userID, tournamentID int) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.ext, &exists,
		`SELECT EXISTS (SELECT 1 FROM tournament_registrations WHERE user_id = $1 AND tournament_id = $2)`,
		userID, tournamentID)
	return exists, err
}

func (r *registrationStore) ListRegistered(ctx context.Context, userIDs []int, tournamentID int) ([]int, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT user_id FROM tournament_registrations WHERE tournament_id = ? AND user_id IN (?)`,
		tournamentID, userIDs)
	if err != nil {
		return nil, err
	}
	var registered []int
	if err := sqlx.SelectContext(ctx, r.ext, &registered, r.ext.Rebind(query), args...); err != nil {
		return nil, err
	}
	return registered, nil
}

func (r *registrationStore) Insert(ctx context.Context, reg *models.Registration) error {
	_, err := r.ext.ExecContext(ctx, `
		INSERT INTO tournament_registrations (user_id, tournament_id, registration_type, team_leader_id)
		VALUES ($1, $2, $3, $4)
	`, reg.UserID, reg.TournamentID, reg.RegistrationType, reg.TeamLeaderID)
	if isUniqueViolation(err) {
		return ErrDuplicateRegistration
	}
	return err
}

func (r *registrationStore) InsertTeam(ctx context.Context, team *models.TeamRegistration) (int, error) {
	var id int
	err := sqlx.GetContext(ctx, r.ext, &id, `
		INSERT INTO team_registrations (tournament_id, team_leader_id, team_name, team_members, team_size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, team.TournamentID, team.TeamLeaderID, team.TeamName, team.TeamMembers, team.TeamSize)
	return id, err
}

type transactionLog struct{ ext sqlx.ExtContext }

func (t *transactionLog) Append(ctx context.Context, entry *models.WalletTransaction) error {
	_, err := t.ext.ExecContext(ctx, `
		INSERT INTO wallet_transactions (user_id, transaction_type, amount, balance_type, description)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.UserID, entry.TransactionType, entry.Amount, entry.BalanceType, entry.Description)
	return err
}

func (t *transactionLog) ListByUser(ctx context.Context, userID int) ([]models.WalletTransaction, error) {
	var entries []models.WalletTransaction
	err := sqlx.SelectContext(ctx, t.ext, &entries, `
		SELECT id, user_id, transaction_type, amount, balance_type, description, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	return entries, err
}

type payoutStore struct{ ext sqlx.ExtContext }

func (p *payoutStore) Insert(ctx context.Context, req *models.PayoutRequest) (int, error) {
	var id int
	err := sqlx.GetContext(ctx, p.ext, &id, `
		INSERT INTO payout_requests (user_id, amount, status, reference)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, req.UserID, req.Amount, req.Status, req.Reference)
	return id, err
}

func (p *payoutStore) GetByIDForUpdate(ctx context.Context, id int) (*models.PayoutRequest, error) {
	var req models.PayoutRequest
	err := sqlx.GetContext(ctx, p.ext, &req, `
		SELECT id, user_id, amount, status, reference, requested_at, processed_at, processed_by, admin_notes
		FROM payout_requests WHERE id = $1 FOR UPDATE
	`, id)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &req, nil
}

func (p *payoutStore) Resolve(ctx context.Context, id int, status string, processedBy int, notes string) error {
	res, err := p.ext.ExecContext(ctx, `
		UPDATE payout_requests
		SET status = $1, processed_at = NOW(), processed_by = $2, admin_notes = $3
		WHERE id = $4 AND status = 'pending'
	`, status, processedBy, notes, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *payoutStore) ListPending(ctx context.Context) ([]models.PayoutRequest, error) {
	var reqs []models.PayoutRequest
	err := sqlx.SelectContext(ctx, p.ext, &reqs, `
		SELECT id, user_id, amount, status, reference, requested_at, processed_at, processed_by, admin_notes
		FROM payout_requests
		WHERE status = 'pending'
		ORDER BY requested_at ASC
	`)
	return reqs, err
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
