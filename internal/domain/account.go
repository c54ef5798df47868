/**
 * @description
 * This file defines the read-side account models: the per-account ledger
 * entry (AccountHistoryItem), the transfer direction enum, and the snapshot
 * types returned by the balance and account-info endpoints.
 *
 * Invariant: replaying an account's history in append order from a balance of
 * zero, adding the amount for RECEIVED entries and subtracting it for SENT
 * entries, reproduces the current balance exactly.
 */

package domain

// Direction says whether an account was the source (SENT) or the target
// (RECEIVED) of a transfer.
type Direction string

const (
	DirectionSent     Direction = "SENT"
	DirectionReceived Direction = "RECEIVED"
)

// AccountHistoryItem is one ledger entry in an account's append-only history.
type AccountHistoryItem struct {
	TransferID            string    `json:"transfer_id"`
	CounterpartyAccountID string    `json:"counterparty_account_id"`
	Amount                int64     `json:"amount"`
	Direction             Direction `json:"direction"`
	Timestamp             int64     `json:"timestamp"`
}

// AccountInfo is a defensive snapshot of an account: the history slice is a
// copy, decoupled from the live ledger.
type AccountInfo struct {
	AccountID string               `json:"account_id"`
	Currency  string               `json:"currency"`
	Balance   int64                `json:"balance"`
	History   []AccountHistoryItem `json:"history"`
}

// Balance pairs an account id with its balance in minor currency units.
type Balance struct {
	AccountID string `json:"account_id"`
	Amount    int64  `json:"balance"`
}
