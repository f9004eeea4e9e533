// SPDX-License-Identifier: GPL-3.0-only

// Package events publishes usage-accounting events to RabbitMQ for
// downstream analytics. Publishing is best-effort: the request flow
// never fails because the broker is down or unconfigured.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"neurostudy-server/commons"
	"neurostudy-server/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type UsageEvent struct {
	EventID string             `json:"event_id"`
	UserID  string             `json:"user_id"`
	Month   string             `json:"month"`
	Plan    models.PlanName    `json:"plan"`
	Deltas  models.UsageDeltas `json:"deltas"`
	At      time.Time          `json:"at"`
}

type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	amqpURL  string
}

var (
	defaultPublisher *Publisher
	initOnce         sync.Once
)

// Default returns the process-wide publisher, nil when AMQP_URL is not
// configured.
func Default() *Publisher {
	initOnce.Do(func() {
		amqpURL := commons.GetEnv("AMQP_URL")
		if amqpURL == "" {
			commons.Logger.Debug("AMQP_URL not set, usage events disabled")
			return
		}
		defaultPublisher = &Publisher{
			amqpURL:  amqpURL,
			exchange: commons.GetEnv("EVENTS_EXCHANGE", "neurostudy.usage"),
		}
	})
	return defaultPublisher
}

func (p *Publisher) connect() error {
	if p.channel != nil && !p.channel.IsClosed() {
		return nil
	}

	conn, err := amqp.Dial(p.amqpURL)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	p.conn = conn
	p.channel = ch
	return nil
}

// PublishUsage emits a usage increment event. Failures are logged and
// swallowed; accounting correctness never depends on the broker.
func (p *Publisher) PublishUsage(event UsageEvent) {
	if p == nil {
		return
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.connect(); err != nil {
		commons.Logger.Warnf("Usage event dropped, broker unavailable: %v", err)
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		commons.Logger.Errorf("Failed to encode usage event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, "usage.incremented", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    event.At,
		Body:         body,
	})
	if err != nil {
		commons.Logger.Warnf("Failed to publish usage event: %v", err)
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
