/**
 * @description
 * This file contains the core business logic of the transfers-service. The
 * Service struct orchestrates all money movement: it validates requests,
 * resolves internal endpoints in the account registry, acquires per-account
 * exclusivity in a fixed order, and applies the balance mutation on one or
 * two accounts as an all-or-nothing unit.
 *
 * Key properties:
 * - An internal transfer (both endpoints tracked) is double-entry: it
 *   debits the source and credits the target under both locks, checking
 *   both sides before applying either.
 * - An external transfer (exactly one endpoint tracked) mutates only the
 *   internal side; it represents money entering or leaving the ledger.
 * - Every failure path releases all locks already acquired and leaves every
 *   involved account's balance and history untouched.
 * - Completed transfers are published to RabbitMQ when a producer is
 *   configured; publishing failures never fail the transfer.
 *
 * @dependencies
 * - internal/domain, internal/store: Domain models and the in-memory ledger.
 * - pkg/rabbitmq: Event publishing.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/corebank/transfers-service/internal/domain"
	"github.com/corebank/transfers-service/internal/store"
	"github.com/corebank/transfers-service/pkg/rabbitmq"
)

const publishTimeout = 5 * time.Second

// Service provides the account and transfer operations exposed by the API.
type Service struct {
	registry *store.Registry
	events   rabbitmq.Publisher
	exchange string
}

// NewService creates a new service instance. The publisher may be a
// rabbitmq.NoopPublisher when eventing is disabled.
func NewService(registry *store.Registry, events rabbitmq.Publisher, exchange string) *Service {
	return &Service{
		registry: registry,
		events:   events,
		exchange: exchange,
	}
}

// OpenAccount validates the currency and creates an account with a zero
// balance, returning its generated id.
func (s *Service) OpenAccount(currency string) (string, error) {
	if err := CheckCurrency(currency); err != nil {
		return "", err
	}
	id := s.registry.Open(currency)
	s.publish("account.opened", rabbitmq.AccountEvent{AccountID: id, Currency: currency})
	return id, nil
}

// CloseAccount removes the account from the registry. A transfer racing the
// close either fully applies before the close takes effect or fails; it is
// never partially applied.
func (s *Service) CloseAccount(id string) error {
	if err := CheckAccountID(id); err != nil {
		return err
	}
	if err := s.registry.Close(id); err != nil {
		return err
	}
	s.publish("account.closed", rabbitmq.AccountEvent{AccountID: id})
	return nil
}

// Balance returns the account's current balance.
func (s *Service) Balance(id string) (int64, error) {
	if err := CheckAccountID(id); err != nil {
		return 0, err
	}
	return s.registry.Balance(id)
}

// AccountInfo returns a snapshot of the account, including a copy of its
// history.
func (s *Service) AccountInfo(id string) (domain.AccountInfo, error) {
	if err := CheckAccountID(id); err != nil {
		return domain.AccountInfo{}, err
	}
	return s.registry.AccountInfo(id)
}

// AllAccountIDs returns a sorted snapshot of the current account ids.
func (s *Service) AllAccountIDs() []string {
	return s.registry.AllAccountIDs()
}

// ProcessTransfer validates and applies a transfer. On any failure every
// involved account is left exactly as it was before the call.
func (s *Service) ProcessTransfer(t *domain.Transfer) error {
	if err := CheckTransfer(t); err != nil {
		return err
	}

	if err := s.checkEndpointExists(t.SourceAccountID, t.SourceAccountType); err != nil {
		return err
	}
	if err := s.checkEndpointExists(t.TargetAccountID, t.TargetAccountType); err != nil {
		return err
	}

	var err error
	if t.SourceAccountType == domain.AccountTypeInternal && t.TargetAccountType == domain.AccountTypeInternal {
		err = s.processInternal(t)
	} else {
		err = s.processExternal(t)
	}
	if err != nil {
		return err
	}

	log.Printf("level=info component=app msg=\"transfer applied\" transfer_id=%s source=%s target=%s amount=%d currency=%s",
		t.ID, t.SourceAccountID, t.TargetAccountID, t.Amount, t.Currency)
	s.publish("transfer.completed", rabbitmq.TransferEvent{
		TransferID:      t.ID,
		SourceAccountID: t.SourceAccountID,
		TargetAccountID: t.TargetAccountID,
		Amount:          t.Amount,
		Currency:        t.Currency,
		Timestamp:       t.Timestamp,
	})
	return nil
}

// processInternal applies a double-entry transfer between two tracked
// accounts. Locks are acquired in a fixed order, source first; both sides
// are checked before either is mutated, so the pair commit is atomic.
func (s *Service) processInternal(t *domain.Transfer) error {
	source, ok := s.registry.Get(t.SourceAccountID)
	if !ok {
		return fmt.Errorf("%w: account id %s", store.ErrAccountNotFound, t.SourceAccountID)
	}
	target, ok := s.registry.Get(t.TargetAccountID)
	if !ok {
		return fmt.Errorf("%w: account id %s", store.ErrAccountNotFound, t.TargetAccountID)
	}

	sourceStatus, err := source.Lock()
	if err != nil {
		return err
	}
	if sourceStatus == store.StatusClosed {
		source.Unlock(sourceStatus)
		return fmt.Errorf("%w: account id %s", store.ErrAccountClosing, source.ID())
	}

	targetStatus, err := target.Lock()
	if err != nil {
		source.Unlock(sourceStatus)
		return err
	}
	if targetStatus == store.StatusClosed {
		source.Unlock(sourceStatus)
		target.Unlock(targetStatus)
		return fmt.Errorf("%w: account id %s", store.ErrAccountClosing, target.ID())
	}

	defer func() {
		source.Unlock(sourceStatus)
		target.Unlock(targetStatus)
	}()

	// Evaluate both sides before applying either: a failure on the second
	// account must never leave the first one mutated.
	if err := source.CheckAdd(t); err != nil {
		return err
	}
	if err := target.CheckAdd(t); err != nil {
		return err
	}
	if err := source.Add(t); err != nil {
		return err
	}
	return target.Add(t)
}

// processExternal applies a one-sided transfer on the single tracked
// endpoint.
func (s *Service) processExternal(t *domain.Transfer) error {
	if t.SourceAccountType == t.TargetAccountType {
		return ErrBothAccountsExternal
	}

	internalID := t.SourceAccountID
	if t.TargetAccountType == domain.AccountTypeInternal {
		internalID = t.TargetAccountID
	}

	account, ok := s.registry.Get(internalID)
	if !ok {
		return fmt.Errorf("%w: account id %s", store.ErrAccountNotFound, internalID)
	}

	status, err := account.Lock()
	if err != nil {
		return err
	}
	if status == store.StatusClosed {
		account.Unlock(status)
		return fmt.Errorf("%w: account id %s", store.ErrAccountClosing, account.ID())
	}
	defer account.Unlock(status)

	return account.Add(t)
}

// checkEndpointExists asserts that an internal endpoint is present in the
// registry. External endpoints need no existence check.
func (s *Service) checkEndpointExists(id string, accountType domain.AccountType) error {
	if accountType != domain.AccountTypeInternal {
		return nil
	}
	if _, ok := s.registry.Get(id); !ok {
		return fmt.Errorf("%w: account id %s", store.ErrAccountNotFound, id)
	}
	return nil
}

func (s *Service) publish(routingKey string, body interface{}) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.events.Publish(ctx, s.exchange, routingKey, body); err != nil {
		log.Printf("level=warn component=app msg=\"event publish failed\" routing_key=%s err=%v", routingKey, err)
	}
}
