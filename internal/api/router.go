/**
 * @description
 * This file sets up the HTTP router for the transfers-service. It defines
 * the API endpoints, associates them with their handlers, and applies
 * logging, panic recovery and timeout middleware.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes creates and returns the router for the transfers service.
func Routes(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Post("/transfer", h.ProcessTransferHandler)

	r.Post("/account", h.OpenAccountHandler)
	r.Delete("/account", h.CloseAccountHandler)
	r.Get("/account/id/all", h.AllAccountIDsHandler)

	r.Get("/balance", h.BalanceHandler)
	r.Get("/info", h.AccountInfoHandler)

	return r
}
