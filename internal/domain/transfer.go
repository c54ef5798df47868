/**
 * @description
 * This file defines the core domain models for the transfers-service: the
 * Transfer request and the account-type enum that drives routing. A transfer
 * moves money between two accounts, each of which is either internal (its
 * balance and history are tracked by this ledger) or external (an untracked
 * counterparty representing money entering or leaving the ledger).
 *
 * @dependencies
 * - github.com/google/uuid: For generating transfer and account identifiers.
 */

package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AccountType tells the orchestrator whether a transfer endpoint is tracked
// by this ledger or lives outside of it.
type AccountType string

const (
	AccountTypeInternal AccountType = "INTERNAL"
	AccountTypeExternal AccountType = "EXTERNAL"
)

// UnmarshalText normalizes incoming account types so clients may send either
// "internal" or "INTERNAL".
func (t *AccountType) UnmarshalText(text []byte) error {
	switch v := AccountType(strings.ToUpper(string(text))); v {
	case AccountTypeInternal, AccountTypeExternal:
		*t = v
		return nil
	default:
		return fmt.Errorf("unknown account type %q", string(text))
	}
}

// Transfer is a request to move money between two accounts. It is transient:
// once applied, only the per-account history items remain.
type Transfer struct {
	ID                string      `json:"id"`
	SourceAccountID   string      `json:"source_account_id"`
	SourceAccountType AccountType `json:"source_account_type"`
	TargetAccountID   string      `json:"target_account_id"`
	TargetAccountType AccountType `json:"target_account_type"`
	Amount            int64       `json:"amount"`
	Currency          string      `json:"currency"`
	// Milliseconds from UNIX epoch.
	Timestamp int64 `json:"timestamp"`
}

// Stamp fills in the generated fields of an accepted transfer: a fresh unique
// id and, when the client did not provide one, the current timestamp.
func (t *Transfer) Stamp() {
	if t.ID == "" {
		t.ID = NewID()
	}
	if t.Timestamp == 0 {
		t.Timestamp = time.Now().UnixMilli()
	}
}

// NewID returns a 12-character lowercase hexadecimal token, the last 12 hex
// digits of a random UUID. Uniqueness is probabilistic, not guaranteed; these
// ids are not security tokens.
func NewID() string {
	s := uuid.New().String()
	return s[len(s)-12:]
}
