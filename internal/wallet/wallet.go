package wallet

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/fantasyarena/backend/internal/models"
	"github.com/fantasyarena/backend/internal/store"
)

// Balance types
const (
	BalanceDeposit  = "deposit"
	BalanceWinnings = "winnings"
)

var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUserNotFound        = errors.New("user not found")
)

// Credit increases the named balance and appends a credit transaction.
// The caller owns the transaction scope: pass a tx-scoped store when the
// credit is part of a larger unit of work.
func Credit(ctx context.Context, s store.Store, userID int, amount float64, balanceType, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	user, err := s.Users().GetByIDForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user %d: %w", userID, err)
	}

	deposit, winnings := user.DepositBalance, user.WinningsBalance
	switch balanceType {
	case BalanceDeposit:
		deposit += amount
	case BalanceWinnings:
		winnings += amount
	default:
		return fmt.Errorf("unknown balance type %q", balanceType)
	}

	if err := s.Users().UpdateBalances(ctx, userID, deposit, winnings); err != nil {
		return fmt.Errorf("update balances for user %d: %w", userID, err)
	}

	entry := &models.WalletTransaction{
		UserID:          userID,
		TransactionType: "credit",
		Amount:          amount,
		BalanceType:     balanceType,
		Description:     description,
	}
	if err := s.Transactions().Append(ctx, entry); err != nil {
		return fmt.Errorf("append transaction log: %w", err)
	}

	log.Printf("[WALLET] Credit completed: user=%d amount=%.2f balance=%s desc=%s", userID, amount, balanceType, description)
	return nil
}

// Debit decreases the named balance and appends a debit transaction.
// Fails with ErrInsufficientBalance if the balance cannot cover the amount.
func Debit(ctx context.Context, s store.Store, userID int, amount float64, balanceType, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	user, err := s.Users().GetByIDForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user %d: %w", userID, err)
	}

	deposit, winnings := user.DepositBalance, user.WinningsBalance
	switch balanceType {
	case BalanceDeposit:
		if deposit < amount {
			return ErrInsufficientBalance
		}
		deposit -= amount
	case BalanceWinnings:
		if winnings < amount {
			return ErrInsufficientBalance
		}
		winnings -= amount
	default:
		return fmt.Errorf("unknown balance type %q", balanceType)
	}

	if err := s.Users().UpdateBalances(ctx, userID, deposit, winnings); err != nil {
		return fmt.Errorf("update balances for user %d: %w", userID, err)
	}

	entry := &models.WalletTransaction{
		UserID:          userID,
		TransactionType: "debit",
		Amount:          amount,
		BalanceType:     balanceType,
		Description:     description,
	}
	if err := s.Transactions().Append(ctx, entry); err != nil {
		return fmt.Errorf("append transaction log: %w", err)
	}

	log.Printf("[WALLET] Debit completed: user=%d amount=%.2f balance=%s desc=%s", userID, amount, balanceType, description)
	return nil
}

// DebitCombined settles a fee against both balances, drawing on the deposit
// balance first and covering any shortfall from winnings. Deposit funds are
// consumed before prize funds so winnings stay the only cash-out source.
// One transaction is logged per balance actually touched. Returns the split.
func DebitCombined(ctx context.Context, s store.Store, userID int, amount float64, description string) (fromDeposit, fromWinnings float64, err error) {
	if amount <= 0 {
		return 0, 0, ErrInvalidAmount
	}

	user, err := s.Users().GetByIDForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, 0, ErrUserNotFound
		}
		return 0, 0, fmt.Errorf("load user %d: %w", userID, err)
	}

	if user.DepositBalance+user.WinningsBalance < amount {
		return 0, 0, ErrInsufficientBalance
	}

	fromDeposit = amount
	if fromDeposit > user.DepositBalance {
		fromDeposit = user.DepositBalance
	}
	fromWinnings = amount - fromDeposit

	newDeposit := user.DepositBalance - fromDeposit
	newWinnings := user.WinningsBalance - fromWinnings

	if err := s.Users().UpdateBalances(ctx, userID, newDeposit, newWinnings); err != nil {
		return 0, 0, fmt.Errorf("update balances for user %d: %w", userID, err)
	}

	if fromDeposit > 0 {
		entry := &models.WalletTransaction{
			UserID:          userID,
			TransactionType: "debit",
			Amount:          fromDeposit,
			BalanceType:     BalanceDeposit,
			Description:     description,
		}
		if err := s.Transactions().Append(ctx, entry); err != nil {
			return 0, 0, fmt.Errorf("append transaction log: %w", err)
		}
	}
	if fromWinnings > 0 {
		entry := &models.WalletTransaction{
			UserID:          userID,
			TransactionType: "debit",
			Amount:          fromWinnings,
			BalanceType:     BalanceWinnings,
			Description:     description,
		}
		if err := s.Transactions().Append(ctx, entry); err != nil {
			return 0, 0, fmt.Errorf("append transaction log: %w", err)
		}
	}

	log.Printf("[WALLET] Combined debit completed: user=%d amount=%.2f deposit_share=%.2f winnings_share=%.2f desc=%s",
		userID, amount, fromDeposit, fromWinnings, description)
	return fromDeposit, fromWinnings, nil
}
