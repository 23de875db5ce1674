package payout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/fantasyarena/backend/internal/models"
	"github.com/fantasyarena/backend/internal/store"
	"github.com/fantasyarena/backend/internal/wallet"
)

// Resolution actions
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

var (
	ErrBelowMinimum     = errors.New("amount is below the minimum withdrawal")
	ErrInvalidAction    = errors.New("invalid payout action")
	ErrNotFound         = errors.New("payout request not found")
	ErrAlreadyProcessed = errors.New("payout request already processed")
)

// Service runs the withdrawal settlement workflow. Funds leave the winnings
// balance when the request is created, not when it is approved, so the same
// money cannot be withdrawn twice while a request sits in review.
type Service struct {
	store         store.Store
	minWithdrawal float64
}

func NewService(s store.Store, minWithdrawal float64) *Service {
	return &Service{store: s, minWithdrawal: minWithdrawal}
}

// Request debits the winnings balance and creates a pending payout request.
func (s *Service) Request(ctx context.Context, userID int, amount float64) (*models.PayoutRequest, error) {
	if amount <= 0 {
		return nil, wallet.ErrInvalidAmount
	}
	if amount < s.minWithdrawal {
		return nil, ErrBelowMinimum
	}

	req := &models.PayoutRequest{
		UserID:    userID,
		Amount:    amount,
		Status:    models.PayoutPending,
		Reference: uuid.NewString(),
	}

	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		if err := wallet.Debit(ctx, tx, userID, amount, wallet.BalanceWinnings, "Winnings withdrawal request"); err != nil {
			return err
		}

		id, err := tx.Payouts().Insert(ctx, req)
		if err != nil {
			return fmt.Errorf("insert payout request: %w", err)
		}
		req.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[PAYOUT] Withdrawal requested: user=%d amount=%.2f payout=%d ref=%s", userID, amount, req.ID, req.Reference)
	return req, nil
}

// Resolve moves a pending request to approved or rejected. Approval changes
// no balance: the debit already happened at request time and the payment is
// issued out-of-band. Rejection refunds the winnings balance and appends a
// compensating credit transaction.
func (s *Service) Resolve(ctx context.Context, payoutID, adminID int, action, notes string) (*models.PayoutRequest, error) {
	if action != ActionApprove && action != ActionReject {
		return nil, ErrInvalidAction
	}

	var resolved models.PayoutRequest

	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		req, err := tx.Payouts().GetByIDForUpdate(ctx, payoutID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load payout %d: %w", payoutID, err)
		}
		if req.Status != models.PayoutPending {
			return ErrAlreadyProcessed
		}

		status := models.PayoutApproved
		if action == ActionReject {
			status = models.PayoutRejected
			if err := wallet.Credit(ctx, tx, req.UserID, req.Amount, wallet.BalanceWinnings, "Withdrawal request rejected - refund"); err != nil {
				return err
			}
		}

		if err := tx.Payouts().Resolve(ctx, payoutID, status, adminID, notes); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAlreadyProcessed
			}
			return fmt.Errorf("resolve payout %d: %w", payoutID, err)
		}

		resolved = *req
		resolved.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[PAYOUT] Request %d %sd by admin %d (user=%d amount=%.2f)", payoutID, action, adminID, resolved.UserID, resolved.Amount)
	return &resolved, nil
}

// ListPending returns unresolved payout requests, oldest first.
func (s *Service) ListPending(ctx context.Context) ([]models.PayoutRequest, error) {
	return s.store.Payouts().ListPending(ctx)
}
