package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/fantasyarena/backend/internal/models"
	"github.com/fantasyarena/backend/internal/store/storetest"
)

func seedUser(s *storetest.MemStore, deposit, winnings float64) int {
	return s.AddUser(models.User{
		Username:        "player",
		Email:           "player@example.com",
		DepositBalance:  deposit,
		WinningsBalance: winnings,
	})
}

func TestDebitCombinedDrawsDepositFirst(t *testing.T) {
	s := storetest.NewMemStore()
	userID := seedUser(s, 10, 5)

	fromDeposit, fromWinnings, err := DebitCombined(context.Background(), s, userID, 12, "entry fee")
	if err != nil {
		t.Fatalf("DebitCombined failed: %v", err)
	}
	if fromDeposit != 10 || fromWinnings != 2 {
		t.Errorf("wrong split: deposit=%.2f winnings=%.2f, want 10/2", fromDeposit, fromWinnings)
	}

	user := s.User(userID)
	if user.DepositBalance != 0 || user.WinningsBalance != 3 {
		t.Errorf("balances after debit: deposit=%.2f winnings=%.2f, want 0/3", user.DepositBalance, user.WinningsBalance)
	}

	// One log entry per balance actually touched
	txns := s.UserTransactions(userID)
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	if txns[0].BalanceType != BalanceDeposit || txns[0].Amount != 10 {
		t.Errorf("first entry: type=%s amount=%.2f, want deposit/10", txns[0].BalanceType, txns[0].Amount)
	}
	if txns[1].BalanceType != BalanceWinnings || txns[1].Amount != 2 {
		t.Errorf("second entry: type=%s amount=%.2f, want winnings/2", txns[1].BalanceType, txns[1].Amount)
	}
}

func TestDebitCombinedDepositCoversFee(t *testing.T) {
	s := storetest.NewMemStore()
	userID := seedUser(s, 50, 5)

	fromDeposit, fromWinnings, err := DebitCombined(context.Background(), s, userID, 20, "entry fee")
	if err != nil {
		t.Fatalf("DebitCombined failed: %v", err)
	}
	if fromDeposit != 20 || fromWinnings != 0 {
		t.Errorf("wrong split: deposit=%.2f winnings=%.2f, want 20/0", fromDeposit, fromWinnings)
	}

	if txns := s.UserTransactions(userID); len(txns) != 1 {
		t.Errorf("expected a single transaction when winnings untouched, got %d", len(txns))
	}
}

func TestDebitCombinedInsufficient(t *testing.T) {
	s := storetest.NewMemStore()
	userID := seedUser(s, 10, 5)

	_, _, err := DebitCombined(context.Background(), s, userID, 16, "entry fee")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	user := s.User(userID)
	if user.DepositBalance != 10 || user.WinningsBalance != 5 {
		t.Errorf("balances changed on failed debit: deposit=%.2f winnings=%.2f", user.DepositBalance, user.WinningsBalance)
	}
	if txns := s.UserTransactions(userID); len(txns) != 0 {
		t.Errorf("failed debit must not log transactions, got %d", len(txns))
	}
}

func TestDebitCombinedRoundTrip(t *testing.T) {
	s := storetest.NewMemStore()
	userID := seedUser(s, 30, 12)
	ctx := context.Background()

	fromDeposit, fromWinnings, err := DebitCombined(ctx, s, userID, 35, "entry fee")
	if err != nil {
		t.Fatalf("DebitCombined failed: %v", err)
	}

	// Crediting each drawn share back restores the original pair
	if err := Credit(ctx, s, userID, fromDeposit, BalanceDeposit, "refund"); err != nil {
		t.Fatalf("deposit refund failed: %v", err)
	}
	if err := Credit(ctx, s, userID, fromWinnings, BalanceWinnings, "refund"); err != nil {
		t.Fatalf("winnings refund failed: %v", err)
	}

	user := s.User(userID)
	if user.DepositBalance != 30 || user.WinningsBalance != 12 {
		t.Errorf("round trip did not restore balances: deposit=%.2f winnings=%.2f", user.DepositBalance, user.WinningsBalance)
	}
}

func TestCreditRejectsInvalidAmount(t *testing.T) {
	s := storetest.NewMemStore()
	userID := seedUser(s, 0, 0)

	for _, amount := range []float64{0, -5} {
		if err := Credit(context.Background(), s, userID, amount, BalanceDeposit, "bad"); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Credit(%.2f): expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestDebitSingleBalance(t *testing.T) {
	s := storetest.NewMemStore()
	userID := seedUser(s, 5, 40)
	ctx := context.Background()

	if err := Debit(ctx, s, userID, 25, BalanceWinnings, "withdrawal"); err != nil {
		t.Fatalf("Debit failed: %v", err)
	}
	if user := s.User(userID); user.WinningsBalance != 15 {
		t.Errorf("winnings=%.2f, want 15", user.WinningsBalance)
	}

	// Winnings debit never dips into the deposit balance
	if err := Debit(ctx, s, userID, 16, BalanceWinnings, "withdrawal"); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestCreditUnknownUser(t *testing.T) {
	s := storetest.NewMemStore()
	if err := Credit(context.Background(), s, 999, 10, BalanceDeposit, "deposit"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
