/**
 * @description
 * This package provides a producer for publishing ledger events to RabbitMQ.
 * It encapsulates connecting to the broker and publishing JSON messages to a
 * durable topic exchange. The ledger itself never depends on the broker
 * being up: when RabbitMQ is not configured or unavailable at startup, the
 * service falls back to the no-op publisher in this package and transfers
 * proceed without events.
 *
 * @dependencies
 * - context, encoding/json, time: Standard Go libraries.
 * - github.com/rabbitmq/amqp091-go: The RabbitMQ client library.
 */
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// TransferEvent is published after a transfer has been fully applied.
type TransferEvent struct {
	TransferID      string `json:"transfer_id"`
	SourceAccountID string `json:"source_account_id"`
	TargetAccountID string `json:"target_account_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Timestamp       int64  `json:"timestamp"`
}

// AccountEvent is published when an account is opened or closed.
type AccountEvent struct {
	AccountID string `json:"account_id"`
	Currency  string `json:"currency,omitempty"`
}

// Publisher is the interface implemented by types that can publish events.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
	Close()
}

// NoopPublisher is a minimal publisher used when RabbitMQ is unavailable or
// not configured.
type NoopPublisher struct{}

func (p *NoopPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	return nil
}

func (p *NoopPublisher) Close() {}

// EventProducer holds the RabbitMQ connection and channel for publishing
// messages.
type EventProducer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	// If any stray characters precede the scheme, slice from the first
	// occurrence of amqp.
	idx := strings.Index(strings.ToLower(clean), "amqp")
	if idx > 0 {
		clean = clean[idx:]
	}
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewEventProducer dials RabbitMQ with a bounded timeout and returns a
// connected producer.
func NewEventProducer(amqpURL string) (*EventProducer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &EventProducer{conn: conn, channel: ch}, nil
}

// Publish sends a JSON message to a durable topic exchange with the given
// routing key. On a channel-level failure it reopens the channel once and
// retries.
func (p *EventProducer) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	if err := p.ensureExchange(exchange); err != nil {
		return err
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		log.Printf("level=error component=rabbitmq_producer msg=\"json marshal failed\" exchange=%s routing_key=%s err=%v", exchange, routingKey, err)
		return err
	}

	publishing := amqp091.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        jsonBody,
	}

	err = p.channel.PublishWithContext(ctx, exchange, routingKey, false, false, publishing)
	if err != nil {
		log.Printf("level=warn component=rabbitmq_producer msg=\"publish failed; reopening channel\" exchange=%s routing_key=%s err=%v", exchange, routingKey, err)
		ch, chErr := p.conn.Channel()
		if chErr != nil {
			return chErr
		}
		p.channel = ch
		return p.channel.PublishWithContext(ctx, exchange, routingKey, false, false, publishing)
	}
	return nil
}

func (p *EventProducer) ensureExchange(exchange string) error {
	err := p.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil)
	if err == nil {
		return nil
	}
	log.Printf("level=warn component=rabbitmq_producer msg=\"exchange declare failed; reopening channel\" exchange=%s err=%v", exchange, err)
	ch, chErr := p.conn.Channel()
	if chErr != nil {
		return chErr
	}
	p.channel = ch
	return p.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil)
}

// Close shuts down the channel and the connection.
func (p *EventProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
