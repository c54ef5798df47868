/**
 * @description
 * This file implements the account registry: a concurrent id->Account
 * directory owning the account lifecycle. The registry map supports safe
 * concurrent insert, remove and lookup without any external lock; each
 * account carries its own exclusivity token, so only operations that share
 * an account contend with each other.
 *
 * @dependencies
 * - internal/domain: Account snapshot models and id generation.
 */

package store

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/corebank/transfers-service/internal/domain"
)

// Registry is the concurrent directory of all open accounts.
type Registry struct {
	settings Settings
	accounts sync.Map // account id -> *Account
}

// NewRegistry creates an empty registry whose accounts use the given lock
// settings.
func NewRegistry(settings Settings) *Registry {
	return &Registry{settings: settings}
}

// Open creates an account with a zero balance and an empty history and
// inserts it under a fresh id. Id generation is probabilistic, so the insert
// loops on LoadOrStore: a colliding id regenerates instead of silently
// dropping either account.
func (r *Registry) Open(currency string) string {
	for {
		account := newAccount(domain.NewID(), currency, r.settings)
		if _, loaded := r.accounts.LoadOrStore(account.ID(), account); !loaded {
			log.Printf("level=info component=store msg=\"account opened\" account_id=%s currency=%s", account.ID(), currency)
			return account.ID()
		}
		log.Printf("level=warn component=store msg=\"account id collision, regenerating\" account_id=%s", account.ID())
	}
}

// Get looks up an open account by id.
func (r *Registry) Get(id string) (*Account, bool) {
	v, ok := r.accounts.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Account), true
}

// Close tears down an account: it acquires the exclusivity token, marks the
// account closed, removes it from the directory and releases the token
// carrying the closed marker so any goroutine still waiting for it observes
// the closure immediately. A second close of the same account fails with
// ErrAccountClosing while the first is in flight and with ErrAccountNotFound
// once it has finished.
func (r *Registry) Close(id string) error {
	account, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("%w: account id %s", ErrAccountNotFound, id)
	}

	st, err := account.Lock()
	if err != nil {
		return err
	}
	if st == StatusClosed {
		account.Unlock(StatusClosed)
		return fmt.Errorf("%w: account id %s", ErrAccountClosing, id)
	}

	r.accounts.Delete(id)
	account.Unlock(StatusClosed)
	log.Printf("level=info component=store msg=\"account closed\" account_id=%s", id)
	return nil
}

// Balance returns the account's current balance via an atomic read, without
// taking any lock.
func (r *Registry) Balance(id string) (int64, error) {
	account, ok := r.Get(id)
	if !ok {
		return 0, fmt.Errorf("%w: account id %s", ErrAccountNotFound, id)
	}
	return account.Balance(), nil
}

// AccountInfo returns a defensive snapshot of the account, including a copy
// of its history.
func (r *Registry) AccountInfo(id string) (domain.AccountInfo, error) {
	account, ok := r.Get(id)
	if !ok {
		return domain.AccountInfo{}, fmt.Errorf("%w: account id %s", ErrAccountNotFound, id)
	}
	return account.Snapshot()
}

// AllAccountIDs returns a sorted snapshot of the current account ids. It is
// safe under concurrent opens and closes; accounts created or closed during
// the call may or may not appear, but no id is ever dangling or duplicated.
func (r *Registry) AllAccountIDs() []string {
	ids := make([]string, 0)
	r.accounts.Range(func(key, _ any) bool {
		ids = append(ids, key.(string))
		return true
	})
	sort.Strings(ids)
	return ids
}
