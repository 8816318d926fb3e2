package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nightlife-sync/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeName is the topic exchange every plan event goes through.
const ExchangeName = "events"

const publishTimeout = 10 * time.Second

// Publisher publishes persistent messages to the events exchange on a
// channel in confirm mode. Publish returns only after the broker acks.
type Publisher struct {
	mu      sync.Mutex
	channel *amqp.Channel
	log     *logger.Logger
}

// NewPublisher opens a channel, declares the exchange and enables
// publisher confirms.
func NewPublisher(conn *Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := declareExchange(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}
	return &Publisher{channel: ch, log: conn.log.With("component", "publisher", "transport", "rabbitmq")}, nil
}

func newPublishing(body []byte, correlationID string) amqp.Publishing {
	return amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: correlationID,
		Body:          body,
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now().UTC(),
	}
}

// Publish sends body with routingKey and waits for the broker's confirm.
func (p *Publisher) Publish(ctx context.Context, routingKey string, body []byte, correlationID string) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// One outstanding confirm at a time keeps acks matched to publishes.
	p.mu.Lock()
	defer p.mu.Unlock()

	conf, err := p.channel.PublishWithDeferredConfirmWithContext(ctx,
		ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		newPublishing(body, correlationID),
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	acked, err := conf.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("await confirm for %s: %w", routingKey, err)
	}
	if !acked {
		return fmt.Errorf("broker nacked %s", routingKey)
	}

	p.log.Debug("Published event", "routing_key", routingKey, "correlation_id", correlationID)
	return nil
}

// Close closes the publisher channel.
func (p *Publisher) Close() error {
	if p.channel == nil {
		return nil
	}
	return p.channel.Close()
}
