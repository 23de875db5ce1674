package payout

import (
	"context"
	"errors"
	"testing"

	"github.com/fantasyarena/backend/internal/models"
	"github.com/fantasyarena/backend/internal/store/storetest"
	"github.com/fantasyarena/backend/internal/wallet"
)

const minWithdrawal = 25

func seed(s *storetest.MemStore, winnings float64) (userID, adminID int) {
	userID = s.AddUser(models.User{Username: "alice", Email: "alice@example.com", WinningsBalance: winnings})
	adminID = s.AddUser(models.User{Username: "admin", Email: "admin@example.com", IsAdmin: true})
	return userID, adminID
}

func TestRequestDebitsWinningsImmediately(t *testing.T) {
	s := storetest.NewMemStore()
	svc := NewService(s, minWithdrawal)
	userID, _ := seed(s, 50)

	req, err := svc.Request(context.Background(), userID, 20)
	if err == nil {
		t.Fatalf("expected below-minimum rejection for 20, got request %+v", req)
	}

	req, err = svc.Request(context.Background(), userID, 25)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if req.Status != models.PayoutPending {
		t.Errorf("status %q, want pending", req.Status)
	}
	if req.Reference == "" {
		t.Errorf("payout request has no reference")
	}

	// Funds are held from the moment the request exists
	if got := s.User(userID).WinningsBalance; got != 25 {
		t.Errorf("winnings=%.2f, want 25", got)
	}
	txns := s.UserTransactions(userID)
	if len(txns) != 1 || txns[0].TransactionType != "debit" || txns[0].BalanceType != wallet.BalanceWinnings {
		t.Errorf("unexpected transaction log: %+v", txns)
	}
}

func TestRequestBelowMinimum(t *testing.T) {
	s := storetest.NewMemStore()
	svc := NewService(s, minWithdrawal)
	userID, _ := seed(s, 50)

	if _, err := svc.Request(context.Background(), userID, 10); !errors.Is(err, ErrBelowMinimum) {
		t.Fatalf("expected ErrBelowMinimum, got %v", err)
	}
	if got := s.User(userID).WinningsBalance; got != 50 {
		t.Errorf("winnings touched by rejected request: %.2f", got)
	}
}

func TestRequestWinningsOnly(t *testing.T) {
	s := storetest.NewMemStore()
	svc := NewService(s, minWithdrawal)
	userID := s.AddUser(models.User{Username: "alice", Email: "alice@example.com", DepositBalance: 500, WinningsBalance: 10})

	// Deposits are not withdrawable no matter how large
	if _, err := svc.Request(context.Background(), userID, 30); !errors.Is(err, wallet.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	user := s.User(userID)
	if user.DepositBalance != 500 || user.WinningsBalance != 10 {
		t.Errorf("balances changed: deposit=%.2f winnings=%.2f", user.DepositBalance, user.WinningsBalance)
	}
}

func TestRejectRefundsWinnings(t *testing.T) {
	s := storetest.NewMemStore()
	svc := NewService(s, minWithdrawal)
	userID, adminID := seed(s, 50)
	ctx := context.Background()

	req, err := svc.Request(ctx, userID, 30)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	resolved, err := svc.Resolve(ctx, req.ID, adminID, ActionReject, "bank details invalid")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.Status != models.PayoutRejected {
		t.Errorf("status %q, want rejected", resolved.Status)
	}

	// The refund exactly compensates the request-time debit
	if got := s.User(userID).WinningsBalance; got != 50 {
		t.Errorf("winnings=%.2f, want 50", got)
	}
	txns := s.UserTransactions(userID)
	if len(txns) != 2 {
		t.Fatalf("expected debit + compensating credit, got %d entries", len(txns))
	}
	if txns[1].TransactionType != "credit" || txns[1].Amount != 30 {
		t.Errorf("compensating entry: %+v", txns[1])
	}

	stored := s.Payout(req.ID)
	if !stored.ProcessedAt.Valid || stored.ProcessedBy.Int64 != int64(adminID) {
		t.Errorf("resolution metadata missing: %+v", stored)
	}
}

func TestApproveChangesNoBalance(t *testing.T) {
	s := storetest.NewMemStore()
	svc := NewService(s, minWithdrawal)
	userID, adminID := seed(s, 100)
	ctx := context.Background()

	req, err := svc.Request(ctx, userID, 40)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	resolved, err := svc.Resolve(ctx, req.ID, adminID, ActionApprove, "paid via bank transfer")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.Status != models.PayoutApproved {
		t.Errorf("status %q, want approved", resolved.Status)
	}
	if got := s.User(userID).WinningsBalance; got != 60 {
		t.Errorf("winnings=%.2f, want 60 (debit applied at request time only)", got)
	}
}

func TestResolveIsIdempotentlyRejected(t *testing.T) {
	s := storetest.NewMemStore()
	svc := NewService(s, minWithdrawal)
	userID, adminID := seed(s, 100)
	ctx := context.Background()

	req, err := svc.Request(ctx, userID, 40)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if _, err := svc.Resolve(ctx, req.ID, adminID, ActionReject, "bad details"); err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}

	balance := s.User(userID).WinningsBalance

	// Both terminal states refuse further transitions
	for _, action := range []string{ActionReject, ActionApprove} {
		if _, err := svc.Resolve(ctx, req.ID, adminID, action, "again"); !errors.Is(err, ErrAlreadyProcessed) {
			t.Errorf("re-resolve with %s: expected ErrAlreadyProcessed, got %v", action, err)
		}
	}
	if got := s.User(userID).WinningsBalance; got != balance {
		t.Errorf("double resolve changed balance: %.2f -> %.2f", balance, got)
	}
}

func TestResolveValidation(t *testing.T) {
	s := storetest.NewMemStore()
	svc := NewService(s, minWithdrawal)
	_, adminID := seed(s, 100)
	ctx := context.Background()

	if _, err := svc.Resolve(ctx, 1, adminID, "escalate", ""); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
	if _, err := svc.Resolve(ctx, 99, adminID, ActionApprove, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListPendingExcludesResolved(t *testing.T) {
	s := storetest.NewMemStore()
	svc := NewService(s, minWithdrawal)
	userID, adminID := seed(s, 200)
	ctx := context.Background()

	first, err := svc.Request(ctx, userID, 30)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	second, err := svc.Request(ctx, userID, 40)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	if _, err := svc.Resolve(ctx, first.ID, adminID, ActionApprove, ""); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	pending, err := svc.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending count = %d, want 1", len(pending))
	}
	if pending[0].ID != second.ID {
		t.Errorf("pending payout id = %d, want %d", pending[0].ID, second.ID)
	}
}
