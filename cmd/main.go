/**
 * @description
 * This is the main entry point for the transfers-service. It initializes all
 * components of the service: configuration, the in-memory account registry,
 * the optional RabbitMQ event producer, the core application service, and
 * the HTTP server, then runs until interrupted and shuts down gracefully.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP.
 * - github.com/go-chi/chi/v5: For HTTP routing.
 * - github.com/joho/godotenv: Optional .env loading.
 * - internal/api, internal/app, internal/config, internal/store: Internal
 *   packages for the service.
 * - pkg/rabbitmq: Event publishing.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/corebank/transfers-service/internal/api"
	"github.com/corebank/transfers-service/internal/app"
	"github.com/corebank/transfers-service/internal/config"
	"github.com/corebank/transfers-service/internal/store"
	"github.com/corebank/transfers-service/pkg/rabbitmq"
)

func main() {
	// A .env file is optional; real deployments set environment variables.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}

	log.Printf("level=info component=bootstrap msg=\"starting transfers-service\" port=%s", cfg.ServerPort)

	// Initialize the event producer. The ledger works without a broker, so
	// a missing or unreachable RabbitMQ degrades to a no-op publisher.
	var producer rabbitmq.Publisher = &rabbitmq.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		eventProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; events disabled\" err=%v", err)
		} else {
			producer = eventProducer
			log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
		}
	}
	defer producer.Close()

	// Initialize the in-memory ledger and the core application service.
	registry := store.NewRegistry(cfg.LedgerSettings())
	service := app.NewService(registry, producer, cfg.TransferEventExchange)
	handlers := api.NewHandlers(service)

	router := chi.NewRouter()
	router.Mount("/transfers", api.Routes(handlers))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		log.Printf("level=info component=http msg=\"server listening\" addr=%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
