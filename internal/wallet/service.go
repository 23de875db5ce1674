package wallet

import (
	"context"
	"fmt"

	"github.com/fantasyarena/backend/internal/models"
	"github.com/fantasyarena/backend/internal/store"
)

// Service exposes the standalone wallet operations (deposits, prize awards,
// transaction history). Fee settlement runs through the package-level
// primitives inside the registration and payout transactions instead.
type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Deposit credits user-funded money onto the deposit balance.
func (s *Service) Deposit(ctx context.Context, userID int, amount float64) error {
	return s.store.WithinTx(ctx, func(tx store.Store) error {
		return Credit(ctx, tx, userID, amount, BalanceDeposit, "Wallet deposit")
	})
}

// AwardWinnings credits prize money onto the winnings balance.
func (s *Service) AwardWinnings(ctx context.Context, userID int, amount float64, tournamentName string) error {
	return s.store.WithinTx(ctx, func(tx store.Store) error {
		return Credit(ctx, tx, userID, amount, BalanceWinnings, fmt.Sprintf("Prize payout: %s", tournamentName))
	})
}

// Transactions returns the user's wallet audit log, newest first.
func (s *Service) Transactions(ctx context.Context, userID int) ([]models.WalletTransaction, error) {
	return s.store.Transactions().ListByUser(ctx, userID)
}
