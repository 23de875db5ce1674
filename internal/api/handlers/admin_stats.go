package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// GetAdminStats aggregates platform-wide money flow and activity counters
// for the admin dashboard.
func GetAdminStats(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var stats struct {
			TotalUsers          int     `db:"total_users" json:"total_users"`
			TotalTournaments    int     `db:"total_tournaments" json:"total_tournaments"`
			ActiveTournaments   int     `db:"active_tournaments" json:"active_tournaments"`
			TotalDeposits       float64 `db:"total_deposits" json:"total_deposits"`
			TotalEntryFees      float64 `db:"total_entry_fees" json:"total_entry_fees"`
			TotalPrizesAwarded  float64 `db:"total_prizes_awarded" json:"total_prizes_awarded"`
			TotalWithdrawals    float64 `db:"total_withdrawals" json:"total_withdrawals"`
			PendingPayouts      int     `db:"pending_payouts" json:"pending_payouts"`
			PendingPayoutAmount float64 `db:"pending_payout_amount" json:"pending_payout_amount"`
			DepositFloat        float64 `db:"deposit_float" json:"deposit_float"`
			WinningsFloat       float64 `db:"winnings_float" json:"winnings_float"`
		}

		err := db.Get(&stats, `
			SELECT
				(SELECT COUNT(*) FROM users WHERE is_admin = false) as total_users,
				(SELECT COUNT(*) FROM tournaments) as total_tournaments,
				(SELECT COUNT(*) FROM tournaments WHERE status = 'active') as active_tournaments,
				(SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions
				 WHERE transaction_type = 'credit' AND description = 'Wallet deposit') as total_deposits,
				(SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions
				 WHERE transaction_type = 'debit'
				   AND (description LIKE 'Tournament registration%' OR description LIKE 'Team registration%')) as total_entry_fees,
				(SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions
				 WHERE transaction_type = 'credit' AND description LIKE 'Prize payout%') as total_prizes_awarded,
				(SELECT COALESCE(SUM(amount), 0) FROM payout_requests WHERE status = 'approved') as total_withdrawals,
				(SELECT COUNT(*) FROM payout_requests WHERE status = 'pending') as pending_payouts,
				(SELECT COALESCE(SUM(amount), 0) FROM payout_requests WHERE status = 'pending') as pending_payout_amount,
				(SELECT COALESCE(SUM(deposit_balance), 0) FROM users) as deposit_float,
				(SELECT COALESCE(SUM(winnings_balance), 0) FROM users) as winnings_float
		`)
		if err != nil {
			log.Printf("[ADMIN] failed to aggregate stats: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}
