/**
 * @description
 * This file contains the HTTP handlers for the transfers-service API.
 * Handlers parse incoming requests, call the application service, and write
 * the response envelope. Every response carries a status of SUCCESS or
 * ERROR; errors additionally carry a message and an HTTP status mapped from
 * the service's sentinel errors.
 *
 * @dependencies
 * - encoding/json, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: Service logic, models,
 *   and sentinel errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/corebank/transfers-service/internal/app"
	"github.com/corebank/transfers-service/internal/domain"
	"github.com/corebank/transfers-service/internal/store"
)

const (
	statusSuccess = "SUCCESS"
	statusError   = "ERROR"

	queryAccountID = "accountId"
)

// Handlers holds the application service that handlers use.
type Handlers struct {
	service *app.Service
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(service *app.Service) *Handlers {
	return &Handlers{service: service}
}

// response is the envelope every endpoint returns.
type response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ProcessTransferHandler handles POST /transfer.
func (h *Handlers) ProcessTransferHandler(w http.ResponseWriter, r *http.Request) {
	var transfer domain.Transfer
	if err := json.NewDecoder(r.Body).Decode(&transfer); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	transfer.Stamp()

	if err := h.service.ProcessTransfer(&transfer); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeSuccess(w, map[string]string{"transfer_id": transfer.ID})
}

// OpenAccountHandler handles POST /account?currency=USD.
func (h *Handlers) OpenAccountHandler(w http.ResponseWriter, r *http.Request) {
	currency := r.URL.Query().Get("currency")

	accountID, err := h.service.OpenAccount(currency)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeSuccess(w, domain.Balance{AccountID: accountID})
}

// CloseAccountHandler handles DELETE /account?accountId=....
func (h *Handlers) CloseAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get(queryAccountID)

	if err := h.service.CloseAccount(accountID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeSuccess(w, nil)
}

// BalanceHandler handles GET /balance?accountId=....
func (h *Handlers) BalanceHandler(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get(queryAccountID)

	balance, err := h.service.Balance(accountID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeSuccess(w, domain.Balance{AccountID: accountID, Amount: balance})
}

// AccountInfoHandler handles GET /info?accountId=....
func (h *Handlers) AccountInfoHandler(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get(queryAccountID)

	info, err := h.service.AccountInfo(accountID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeSuccess(w, info)
}

// AllAccountIDsHandler handles GET /account/id/all.
func (h *Handlers) AllAccountIDsHandler(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, h.service.AllAccountIDs())
}

func (h *Handlers) writeSuccess(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, response{Status: statusSuccess, Data: data})
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, response{Status: statusError, Message: message})
}

// writeServiceError maps a service error onto an HTTP status. Validation
// failures are the caller's fault; missing accounts are 404; a closing
// account is a conflict; lock exhaustion is transient and safe to retry.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrInvalidAccountID),
		errors.Is(err, app.ErrInvalidCurrency),
		errors.Is(err, app.ErrInvalidAmount),
		errors.Is(err, app.ErrInvalidTimestamp),
		errors.Is(err, app.ErrBothAccountsExternal):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrAccountNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrAccountClosing):
		status = http.StatusConflict
	case errors.Is(err, store.ErrUnableToObtainLock):
		status = http.StatusServiceUnavailable
	case errors.Is(err, store.ErrNotEnoughBalance),
		errors.Is(err, store.ErrAmountTooBig),
		errors.Is(err, store.ErrCurrencyMismatch):
		status = http.StatusUnprocessableEntity
	default:
		log.Printf("level=error component=api msg=\"unexpected service error\" err=%v", err)
	}
	h.writeError(w, status, err.Error())
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("level=error component=api msg=\"response encode failed\" err=%v", err)
	}
}
