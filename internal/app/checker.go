/**
 * @description
 * This file contains the pure validation checks applied to incoming requests
 * before any account is touched. The checks have no side effects and are
 * safe to call from any goroutine without synchronization.
 *
 * Bounds: account ids are 12 to 100 characters (the service generates
 * 12-character ids but accepts longer external ones), currencies are 3 to
 * 100 characters (opaque, not checked against an ISO list), amounts are
 * strictly positive, and timestamps must not predate 2020-01-01T00:00:00Z.
 */

package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/corebank/transfers-service/internal/domain"
)

var (
	ErrInvalidAccountID = errors.New("invalid account id")
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrBothAccountsExternal is returned when neither transfer endpoint is
	// tracked by this ledger, so there is nothing to apply the transfer to.
	ErrBothAccountsExternal = errors.New("both the source and the target accounts are external")
)

// timestampCutoff is the oldest accepted transfer timestamp, in epoch
// milliseconds.
var timestampCutoff = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

// CheckTransfer validates every field of a transfer request, short-circuiting
// on the first failure. The source account id is checked before the target.
func CheckTransfer(t *domain.Transfer) error {
	if err := CheckAccountID(t.SourceAccountID); err != nil {
		return err
	}
	if err := CheckAccountID(t.TargetAccountID); err != nil {
		return err
	}
	if err := CheckCurrency(t.Currency); err != nil {
		return err
	}
	if err := CheckAmount(t.Amount); err != nil {
		return err
	}
	return CheckTimestamp(t.Timestamp)
}

// CheckAccountID validates the length of an account id.
func CheckAccountID(id string) error {
	if len(id) < 12 || len(id) > 100 {
		return fmt.Errorf("%w: %q", ErrInvalidAccountID, id)
	}
	return nil
}

// CheckCurrency validates the length of a currency code.
func CheckCurrency(currency string) error {
	if len(currency) < 3 || len(currency) > 100 {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	return nil
}

// CheckAmount rejects zero and negative amounts.
func CheckAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	return nil
}

// CheckTimestamp rejects timestamps older than the fixed cutoff.
func CheckTimestamp(epochMilli int64) error {
	if epochMilli < timestampCutoff {
		return fmt.Errorf("%w: %d", ErrInvalidTimestamp, epochMilli)
	}
	return nil
}
