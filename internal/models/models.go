package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Ban states for a user account
const (
	BanStatusActive     = "active"
	BanStatusTempBanned = "temp_banned"
	BanStatusBanned     = "banned"
)

// Tournament team modes and their seat counts
const (
	TeamModeSolo  = "solo"
	TeamModeDuo   = "duo"
	TeamModeSquad = "squad"
)

// Tournament lifecycle states
const (
	TournamentUpcoming  = "upcoming"
	TournamentActive    = "active"
	TournamentCompleted = "completed"
)

// Payout request states
const (
	PayoutPending  = "pending"
	PayoutApproved = "approved"
	PayoutRejected = "rejected"
)

// User represents a registered player or admin
type User struct {
	ID              int            `db:"id" json:"id"`
	Username        string         `db:"username" json:"username"`
	Email           string         `db:"email" json:"email"`
	PasswordHash    string         `db:"password_hash" json:"-"`
	DepositBalance  float64        `db:"deposit_balance" json:"deposit_balance"`
	WinningsBalance float64        `db:"winnings_balance" json:"winnings_balance"`
	IsAdmin         bool           `db:"is_admin" json:"is_admin"`
	BanStatus       string         `db:"ban_status" json:"ban_status"`
	BanExpiry       sql.NullTime   `db:"ban_expiry" json:"ban_expiry,omitempty"`
	BanReason       sql.NullString `db:"ban_reason" json:"ban_reason,omitempty"`
	BannedAt        sql.NullTime   `db:"banned_at" json:"banned_at,omitempty"`
	BannedBy        sql.NullInt64  `db:"banned_by" json:"banned_by,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// Tournament represents an esports tournament
type Tournament struct {
	ID                  int          `db:"id" json:"id"`
	Name                string       `db:"name" json:"name"`
	Description         string       `db:"description" json:"description"`
	GameType            string       `db:"game_type" json:"game_type"`
	TeamMode            string       `db:"team_mode" json:"team_mode"`
	EntryFee            float64      `db:"entry_fee" json:"entry_fee"`
	PrizePool           float64      `db:"prize_pool" json:"prize_pool"`
	MaxParticipants     int          `db:"max_participants" json:"max_participants"`
	CurrentParticipants int          `db:"current_participants" json:"current_participants"`
	Status              string       `db:"status" json:"status"`
	StartDate           time.Time    `db:"start_date" json:"start_date"`
	EndDate             sql.NullTime `db:"end_date" json:"end_date,omitempty"`
	CreatedAt           time.Time    `db:"created_at" json:"created_at"`
}

// Registration links a user to a tournament (one row per seat)
type Registration struct {
	ID               int           `db:"id" json:"id"`
	UserID           int           `db:"user_id" json:"user_id"`
	TournamentID     int           `db:"tournament_id" json:"tournament_id"`
	RegistrationType string        `db:"registration_type" json:"registration_type"`
	TeamLeaderID     sql.NullInt64 `db:"team_leader_id" json:"team_leader_id,omitempty"`
	RegisteredAt     time.Time     `db:"registered_at" json:"registered_at"`
}

// TeamRegistration is the one-row-per-team record for duo/squad entries
type TeamRegistration struct {
	ID           int           `db:"id" json:"id"`
	TournamentID int           `db:"tournament_id" json:"tournament_id"`
	TeamLeaderID int           `db:"team_leader_id" json:"team_leader_id"`
	TeamName     string        `db:"team_name" json:"team_name"`
	TeamMembers  pq.Int64Array `db:"team_members" json:"team_members"`
	TeamSize     int           `db:"team_size" json:"team_size"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// WalletTransaction is an immutable audit log entry for a balance mutation
type WalletTransaction struct {
	ID              int       `db:"id" json:"id"`
	UserID          int       `db:"user_id" json:"user_id"`
	TransactionType string    `db:"transaction_type" json:"transaction_type"`
	Amount          float64   `db:"amount" json:"amount"`
	BalanceType     string    `db:"balance_type" json:"balance_type"`
	Description     string    `db:"description" json:"description"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// PayoutRequest is a pending withdrawal awaiting admin resolution
type PayoutRequest struct {
	ID          int            `db:"id" json:"id"`
	UserID      int            `db:"user_id" json:"user_id"`
	Amount      float64        `db:"amount" json:"amount"`
	Status      string         `db:"status" json:"status"`
	Reference   string         `db:"reference" json:"reference"`
	RequestedAt time.Time      `db:"requested_at" json:"requested_at"`
	ProcessedAt sql.NullTime   `db:"processed_at" json:"processed_at,omitempty"`
	ProcessedBy sql.NullInt64  `db:"processed_by" json:"processed_by,omitempty"`
	AdminNotes  sql.NullString `db:"admin_notes" json:"admin_notes,omitempty"`
}

// AdminAudit records a single admin action
type AdminAudit struct {
	ID            int       `db:"id" json:"id"`
	AdminUsername string    `db:"admin_username" json:"admin_username"`
	IP            string    `db:"ip" json:"ip"`
	Route         string    `db:"route" json:"route"`
	Action        string    `db:"action" json:"action"`
	Details       []byte    `db:"details" json:"details"`
	Success       bool      `db:"success" json:"success"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// SeatsForMode returns the base seat count for a team mode (solo 1, duo 2, squad 4).
func SeatsForMode(mode string) int {
	switch mode {
	case TeamModeDuo:
		return 2
	case TeamModeSquad:
		return 4
	default:
		return 1
	}
}
