// Package eventbus publishes commerce notification events to RabbitMQ.
// Delivery is fire-and-forget: a publish failure is logged and never fails
// the commerce operation that produced the event.
package eventbus

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"

	"github.com/instantin-me/commerce-core/internal/config"
)

type RabbitMQPublisher struct {
	cfg config.Config

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQPublisher(cfg config.Config) (*RabbitMQPublisher, error) {
	p := &RabbitMQPublisher{cfg: cfg}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *RabbitMQPublisher) connect() error {
	conn, err := amqp.Dial(p.cfg.RabbitMQURL)
	if err != nil {
		return err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if err := channel.ExchangeDeclare(
		p.cfg.EventsExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return err
	}

	p.conn = conn
	p.channel = channel
	log.Info().Str("exchange", p.cfg.EventsExchange).Msg("Connected to RabbitMQ")
	return nil
}

type envelope struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// Publish emits an event under <routing key prefix>.<event>. Any error is
// swallowed after logging; notification loss must not roll back commerce
// state.
func (p *RabbitMQPublisher) Publish(ctx context.Context, event string, payload any) {
	body, err := json.Marshal(envelope{Event: event, Timestamp: time.Now().UTC(), Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("eventbus: failed to marshal event payload")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.Publish(
		p.cfg.EventsExchange,
		p.cfg.EventsRoutingKey+"."+event,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("eventbus: failed to publish event")
	}
}

func (p *RabbitMQPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
	log.Info().Msg("RabbitMQ connection closed")
}

// NopNotifier discards events. Used when RabbitMQ is not configured and in
// tests.
type NopNotifier struct{}

func (NopNotifier) Publish(ctx context.Context, event string, payload any) {
	log.Debug().Str("event", event).Msg("eventbus: notification dropped (no broker configured)")
}
