/**
 * @description
 * This file defines the sentinel errors returned by the in-memory ledger.
 * Callers match them with errors.Is; the API layer maps them onto HTTP
 * status codes.
 */

package store

import "errors"

var (
	// ErrAccountNotFound is returned when an account id is not present in the
	// registry, either because it never existed or because it has been closed.
	ErrAccountNotFound = errors.New("account does not exist")

	// ErrAccountClosing is returned when an operation finds the account's
	// lock token marked closed, meaning another caller is tearing it down.
	ErrAccountClosing = errors.New("account is already being closed")

	// ErrUnableToObtainLock is returned when an account's exclusivity token
	// could not be obtained within the bounded retry budget. The operation
	// performed no mutation and is safe to retry from scratch.
	ErrUnableToObtainLock = errors.New("unable to obtain the account lock")

	// ErrNotEnoughBalance is returned when a debit would take the balance
	// below zero.
	ErrNotEnoughBalance = errors.New("not enough balance in the account")

	// ErrAmountTooBig is returned when a credit would overflow the int64
	// balance.
	ErrAmountTooBig = errors.New("amount is too big for the current balance")

	// ErrCurrencyMismatch is returned when a transfer's currency does not
	// match the account's currency.
	ErrCurrencyMismatch = errors.New("transfer currency does not match the account currency")

	// ErrTransferNotRelated is returned when a transfer references neither
	// this account as source nor as target. It signals a programming defect
	// in the orchestration layer.
	ErrTransferNotRelated = errors.New("transfer does not reference this account")
)
