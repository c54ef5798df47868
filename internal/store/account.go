/**
 * @description
 * This file implements the unit of mutable ledger state: an Account with a
 * balance, an append-only history, and a single-permit exclusivity token.
 *
 * The token is a capacity-1 channel whose payload carries the account status.
 * Exactly one goroutine holds the token at a time, so writes to one account
 * are totally ordered. The payload doubles as a closed marker: when an
 * account is torn down, the closer releases the token carrying StatusClosed
 * so that any goroutine still waiting in Lock observes the closure the
 * moment it receives the token.
 *
 * Mutation is split into CheckAdd (would this apply cleanly?) and Add
 * (apply). The orchestrator checks both sides of a double-entry transfer
 * before applying either, so a failure on the second account can never leave
 * the first one mutated.
 *
 * @dependencies
 * - internal/domain: Ledger entry and snapshot models.
 */

package store

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corebank/transfers-service/internal/domain"
)

// Status is the payload carried by an account's exclusivity token.
type Status int

const (
	StatusOpen Status = iota
	StatusClosed
)

// Settings tunes the bounded lock acquisition of every account created by a
// registry.
type Settings struct {
	// LockMaxAttempts is the number of times Lock waits for the token before
	// giving up.
	LockMaxAttempts int
	// LockRetryMin and LockRetryMax bound the randomized wait of a single
	// attempt. The jitter spreads out contending goroutines when many
	// transfers target the same popular account.
	LockRetryMin time.Duration
	LockRetryMax time.Duration
	// ReadTimeout bounds how long a snapshot waits for the shared read
	// section.
	ReadTimeout time.Duration
}

// DefaultSettings returns the standard lock tuning: up to 5 attempts of
// 50-100ms each, and a 500ms snapshot timeout.
func DefaultSettings() Settings {
	return Settings{
		LockMaxAttempts: 5,
		LockRetryMin:    50 * time.Millisecond,
		LockRetryMax:    100 * time.Millisecond,
		ReadTimeout:     500 * time.Millisecond,
	}
}

// Account holds the balance and history of one internal account. All
// mutation goes through Add while holding the exclusivity token.
type Account struct {
	id       string
	currency string
	settings Settings

	// balance is additionally kept in an atomic so Balance() can serve a
	// fresh value without taking any lock.
	balance atomic.Int64

	// mu guards history and makes the append+balance commit of Add a single
	// atomic step from the point of view of Snapshot readers.
	mu      sync.RWMutex
	history []domain.AccountHistoryItem

	// permit is the single-permit exclusivity token.
	permit chan Status
}

func newAccount(id, currency string, settings Settings) *Account {
	a := &Account{
		id:       id,
		currency: currency,
		settings: settings,
		permit:   make(chan Status, 1),
	}
	a.permit <- StatusOpen
	return a
}

// ID returns the immutable account id.
func (a *Account) ID() string { return a.id }

// Currency returns the immutable account currency.
func (a *Account) Currency() string { return a.currency }

// Balance returns the current balance. The read is atomic and lock-free: the
// value is at least as recent as the call, but not synchronized with an
// in-flight concurrent write.
func (a *Account) Balance() int64 { return a.balance.Load() }

// Lock obtains the account's exclusivity token, waiting a randomized
// interval per attempt up to the configured budget. The returned status must
// be handed back through Unlock; a StatusClosed token means the account is
// being torn down and must not be mutated.
func (a *Account) Lock() (Status, error) {
	for attempt := 1; attempt <= a.settings.LockMaxAttempts; attempt++ {
		select {
		case st := <-a.permit:
			return st, nil
		case <-time.After(a.randomWait()):
			log.Printf("level=warn component=store msg=\"unable to obtain account lock\" account_id=%s attempt=%d", a.id, attempt)
		}
	}
	return StatusOpen, fmt.Errorf("%w: account id %s, gave up after %d attempts", ErrUnableToObtainLock, a.id, a.settings.LockMaxAttempts)
}

// Unlock returns the exclusivity token. A full permit slot means the token
// was released twice, which should never happen under correct usage; it is
// logged rather than panicking so one defect cannot take the service down.
func (a *Account) Unlock(st Status) {
	select {
	case a.permit <- st:
	default:
		log.Printf("level=error component=store msg=\"account lock released twice\" account_id=%s", a.id)
	}
}

func (a *Account) randomWait() time.Duration {
	min, max := a.settings.LockRetryMin, a.settings.LockRetryMax
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}

// CheckAdd reports whether Add would apply the transfer cleanly, without
// mutating anything. The caller must hold the exclusivity token so the
// answer stays valid until Add is called.
func (a *Account) CheckAdd(t *domain.Transfer) error {
	dir, err := a.direction(t)
	if err != nil {
		return err
	}
	if t.Currency != a.currency {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, t.Currency, a.currency)
	}
	_, err = nextBalance(a.balance.Load(), t.Amount, dir)
	return err
}

// Add applies the transfer to this account: it validates, computes the new
// balance, appends one history item and commits the balance as a single
// atomic step. The caller must hold the exclusivity token.
func (a *Account) Add(t *domain.Transfer) error {
	dir, err := a.direction(t)
	if err != nil {
		return err
	}
	if t.Currency != a.currency {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, t.Currency, a.currency)
	}
	updated, err := nextBalance(a.balance.Load(), t.Amount, dir)
	if err != nil {
		return err
	}

	item := domain.AccountHistoryItem{
		TransferID:            t.ID,
		CounterpartyAccountID: a.counterparty(t),
		Amount:                t.Amount,
		Direction:             dir,
		Timestamp:             t.Timestamp,
	}

	a.mu.Lock()
	a.history = append(a.history, item)
	a.balance.Store(updated)
	a.mu.Unlock()
	return nil
}

// Snapshot acquires the shared read section, with a deadline, and returns a
// defensive copy of the account's state. Concurrent snapshots do not block
// each other; a snapshot never observes a half-committed Add.
func (a *Account) Snapshot() (domain.AccountInfo, error) {
	deadline := time.Now().Add(a.settings.ReadTimeout)
	for !a.mu.TryRLock() {
		if time.Now().After(deadline) {
			return domain.AccountInfo{}, fmt.Errorf("%w: timed out reading account id %s", ErrUnableToObtainLock, a.id)
		}
		time.Sleep(time.Millisecond)
	}
	defer a.mu.RUnlock()

	history := make([]domain.AccountHistoryItem, len(a.history))
	copy(history, a.history)

	return domain.AccountInfo{
		AccountID: a.id,
		Currency:  a.currency,
		Balance:   a.balance.Load(),
		History:   history,
	}, nil
}

func (a *Account) direction(t *domain.Transfer) (domain.Direction, error) {
	switch a.id {
	case t.SourceAccountID:
		return domain.DirectionSent, nil
	case t.TargetAccountID:
		return domain.DirectionReceived, nil
	default:
		return "", fmt.Errorf("%w: account id %s, transfer id %s", ErrTransferNotRelated, a.id, t.ID)
	}
}

func (a *Account) counterparty(t *domain.Transfer) string {
	if t.SourceAccountID == a.id {
		return t.TargetAccountID
	}
	return t.SourceAccountID
}

// nextBalance computes the balance after applying amount in the given
// direction, guarding against int64 overflow on credits and against a
// negative balance on debits.
func nextBalance(balance, amount int64, dir domain.Direction) (int64, error) {
	if dir == domain.DirectionReceived {
		if amount > math.MaxInt64-balance {
			return 0, fmt.Errorf("%w: balance %d, amount %d", ErrAmountTooBig, balance, amount)
		}
		return balance + amount, nil
	}
	updated := balance - amount
	if updated < 0 {
		return 0, fmt.Errorf("%w: balance %d, amount %d", ErrNotEnoughBalance, balance, amount)
	}
	return updated, nil
}
