package app

import (
	"errors"
	"testing"
	"time"

	"github.com/corebank/transfers-service/internal/domain"
	"github.com/corebank/transfers-service/internal/store"
)

const externalCounterparty = "bank-of-elsewhere-001"

func newTestService() *Service {
	return NewService(store.NewRegistry(store.DefaultSettings()), nil, "")
}

func externalFunding(targetID string, amount int64, currency string) *domain.Transfer {
	tr := &domain.Transfer{
		SourceAccountID:   externalCounterparty,
		SourceAccountType: domain.AccountTypeExternal,
		TargetAccountID:   targetID,
		TargetAccountType: domain.AccountTypeInternal,
		Amount:            amount,
		Currency:          currency,
		Timestamp:         time.Now().UnixMilli(),
	}
	tr.Stamp()
	return tr
}

func internalTransfer(sourceID, targetID string, amount int64, currency string) *domain.Transfer {
	tr := &domain.Transfer{
		SourceAccountID:   sourceID,
		SourceAccountType: domain.AccountTypeInternal,
		TargetAccountID:   targetID,
		TargetAccountType: domain.AccountTypeInternal,
		Amount:            amount,
		Currency:          currency,
		Timestamp:         time.Now().UnixMilli(),
	}
	tr.Stamp()
	return tr
}

func mustOpen(t *testing.T, s *Service, currency string) string {
	t.Helper()
	id, err := s.OpenAccount(currency)
	if err != nil {
		t.Fatalf("OpenAccount(%q) failed: %v", currency, err)
	}
	return id
}

func mustBalance(t *testing.T, s *Service, id string) int64 {
	t.Helper()
	balance, err := s.Balance(id)
	if err != nil {
		t.Fatalf("Balance(%q) failed: %v", id, err)
	}
	return balance
}

func TestExternalFundingThenInternalTransfer(t *testing.T) {
	s := newTestService()
	a := mustOpen(t, s, "USD")
	b := mustOpen(t, s, "USD")

	if err := s.ProcessTransfer(externalFunding(a, 10000, "USD")); err != nil {
		t.Fatalf("external funding failed: %v", err)
	}
	if err := s.ProcessTransfer(internalTransfer(a, b, 3000, "USD")); err != nil {
		t.Fatalf("internal transfer failed: %v", err)
	}

	if got := mustBalance(t, s, a); got != 7000 {
		t.Fatalf("balance(a) = %d, want 7000", got)
	}
	if got := mustBalance(t, s, b); got != 3000 {
		t.Fatalf("balance(b) = %d, want 3000", got)
	}

	infoA, err := s.AccountInfo(a)
	if err != nil {
		t.Fatalf("AccountInfo(a) failed: %v", err)
	}
	if len(infoA.History) != 2 {
		t.Fatalf("history(a) length = %d, want 2", len(infoA.History))
	}
	infoB, err := s.AccountInfo(b)
	if err != nil {
		t.Fatalf("AccountInfo(b) failed: %v", err)
	}
	if len(infoB.History) != 1 {
		t.Fatalf("history(b) length = %d, want 1", len(infoB.History))
	}
}

func TestOpenAccountRejectsShortCurrency(t *testing.T) {
	s := newTestService()
	if _, err := s.OpenAccount("US"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("OpenAccount(\"US\") = %v, want ErrInvalidCurrency", err)
	}
}

func TestProcessTransferRejectsZeroAmountBeforeLookup(t *testing.T) {
	s := newTestService()
	// Neither endpoint exists; validation must reject the amount first.
	tr := internalTransfer("aaaaaaaaaaaa", "bbbbbbbbbbbb", 0, "USD")
	if err := s.ProcessTransfer(tr); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("ProcessTransfer = %v, want ErrInvalidAmount", err)
	}
}

func TestProcessTransferUnknownTarget(t *testing.T) {
	s := newTestService()
	a := mustOpen(t, s, "USD")
	if err := s.ProcessTransfer(externalFunding(a, 5000, "USD")); err != nil {
		t.Fatalf("funding failed: %v", err)
	}

	tr := internalTransfer(a, "bbbbbbbbbbbb", 1000, "USD")
	if err := s.ProcessTransfer(tr); !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("ProcessTransfer = %v, want ErrAccountNotFound", err)
	}

	// The source must be untouched.
	if got := mustBalance(t, s, a); got != 5000 {
		t.Fatalf("balance(a) = %d, want 5000", got)
	}
	info, _ := s.AccountInfo(a)
	if len(info.History) != 1 {
		t.Fatalf("history(a) length = %d, want 1", len(info.History))
	}
}

func TestProcessTransferBothExternal(t *testing.T) {
	s := newTestService()
	tr := &domain.Transfer{
		SourceAccountID:   externalCounterparty,
		SourceAccountType: domain.AccountTypeExternal,
		TargetAccountID:   "another-outside-party",
		TargetAccountType: domain.AccountTypeExternal,
		Amount:            100,
		Currency:          "USD",
		Timestamp:         time.Now().UnixMilli(),
	}
	tr.Stamp()

	if err := s.ProcessTransfer(tr); !errors.Is(err, ErrBothAccountsExternal) {
		t.Fatalf("ProcessTransfer = %v, want ErrBothAccountsExternal", err)
	}
}

func TestInternalTransferAllOrNothing(t *testing.T) {
	// A currency mismatch on the target must leave the source untouched even
	// though the source side alone would have applied cleanly.
	s := newTestService()
	a := mustOpen(t, s, "USD")
	b := mustOpen(t, s, "EUR")

	if err := s.ProcessTransfer(externalFunding(a, 10000, "USD")); err != nil {
		t.Fatalf("funding failed: %v", err)
	}

	err := s.ProcessTransfer(internalTransfer(a, b, 3000, "USD"))
	if !errors.Is(err, store.ErrCurrencyMismatch) {
		t.Fatalf("ProcessTransfer = %v, want ErrCurrencyMismatch", err)
	}

	if got := mustBalance(t, s, a); got != 10000 {
		t.Fatalf("balance(a) = %d, want 10000", got)
	}
	if got := mustBalance(t, s, b); got != 0 {
		t.Fatalf("balance(b) = %d, want 0", got)
	}
	infoA, _ := s.AccountInfo(a)
	if len(infoA.History) != 1 {
		t.Fatalf("history(a) length = %d, want 1", len(infoA.History))
	}
	infoB, _ := s.AccountInfo(b)
	if len(infoB.History) != 0 {
		t.Fatalf("history(b) length = %d, want 0", len(infoB.History))
	}
}

func TestInternalTransferInsufficientBalance(t *testing.T) {
	s := newTestService()
	a := mustOpen(t, s, "USD")
	b := mustOpen(t, s, "USD")

	err := s.ProcessTransfer(internalTransfer(a, b, 1, "USD"))
	if !errors.Is(err, store.ErrNotEnoughBalance) {
		t.Fatalf("ProcessTransfer = %v, want ErrNotEnoughBalance", err)
	}
	if got := mustBalance(t, s, b); got != 0 {
		t.Fatalf("balance(b) = %d, want 0", got)
	}
}

func TestExternalWithdrawal(t *testing.T) {
	s := newTestService()
	a := mustOpen(t, s, "USD")
	if err := s.ProcessTransfer(externalFunding(a, 5000, "USD")); err != nil {
		t.Fatalf("funding failed: %v", err)
	}

	out := &domain.Transfer{
		SourceAccountID:   a,
		SourceAccountType: domain.AccountTypeInternal,
		TargetAccountID:   externalCounterparty,
		TargetAccountType: domain.AccountTypeExternal,
		Amount:            2000,
		Currency:          "USD",
		Timestamp:         time.Now().UnixMilli(),
	}
	out.Stamp()

	if err := s.ProcessTransfer(out); err != nil {
		t.Fatalf("withdrawal failed: %v", err)
	}
	if got := mustBalance(t, s, a); got != 3000 {
		t.Fatalf("balance(a) = %d, want 3000", got)
	}
}

func TestCloseAccountThenOperationsFail(t *testing.T) {
	s := newTestService()
	a := mustOpen(t, s, "USD")

	if err := s.CloseAccount(a); err != nil {
		t.Fatalf("CloseAccount failed: %v", err)
	}

	if _, err := s.Balance(a); !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("Balance after close = %v, want ErrAccountNotFound", err)
	}
	if err := s.ProcessTransfer(externalFunding(a, 100, "USD")); !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("transfer after close = %v, want ErrAccountNotFound", err)
	}
	if err := s.CloseAccount(a); !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("double close = %v, want ErrAccountNotFound", err)
	}
}

func TestAllAccountIDs(t *testing.T) {
	s := newTestService()
	a := mustOpen(t, s, "USD")
	b := mustOpen(t, s, "EUR")

	ids := s.AllAccountIDs()
	if len(ids) != 2 {
		t.Fatalf("got %d ids, want 2", len(ids))
	}
	found := map[string]bool{}
	for _, id := range ids {
		found[id] = true
	}
	if !found[a] || !found[b] {
		t.Fatalf("snapshot %v missing %s or %s", ids, a, b)
	}
}
