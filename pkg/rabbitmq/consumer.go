package rabbitmq

import (
	"context"
	"fmt"

	"nightlife-sync/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig names a consumer's queue, its dead-letter queue and the
// routing keys bound to it.
type ConsumerConfig struct {
	QueueName    string
	DLQName      string
	RoutingKeys  []string
	ConsumerName string
	// Prefetch defaults to 1.
	Prefetch int
}

func (c ConsumerConfig) validate() error {
	switch {
	case c.QueueName == "":
		return fmt.Errorf("consumer config: queue name is required")
	case c.DLQName == "":
		return fmt.Errorf("consumer config: dead-letter queue name is required")
	case len(c.RoutingKeys) == 0:
		return fmt.Errorf("consumer config: at least one routing key is required")
	}
	return nil
}

// queueArgs dead-letters rejected messages to dlq through the default exchange.
func queueArgs(dlq string) amqp.Table {
	return amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": dlq,
	}
}

// MessageHandler processes a delivered message.
// Return nil to ack, return error to nack (message goes to the DLQ).
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

func declareTopology(ch *amqp.Channel, cfg ConsumerConfig) error {
	if err := declareExchange(ch); err != nil {
		return err
	}
	// durable, not auto-deleted, not exclusive
	if _, err := ch.QueueDeclare(cfg.DLQName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", cfg.DLQName, err)
	}
	if _, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, queueArgs(cfg.DLQName)); err != nil {
		return fmt.Errorf("declare %s: %w", cfg.QueueName, err)
	}
	for _, key := range cfg.RoutingKeys {
		if err := ch.QueueBind(cfg.QueueName, key, ExchangeName, false, nil); err != nil {
			return fmt.Errorf("bind %s to %s: %w", cfg.QueueName, key, err)
		}
	}
	return nil
}

// SetupConsumer declares queues (main + DLQ), binds them, and starts
// consuming until ctx is cancelled.
func SetupConsumer(ctx context.Context, conn *Connection, cfg ConsumerConfig, handler MessageHandler) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	log := conn.log.With("consumer", cfg.ConsumerName)

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	if err := declareTopology(ch, cfg); err != nil {
		_ = ch.Close()
		return err
	}

	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		return err
	}

	// manual ack
	msgs, err := ch.Consume(cfg.QueueName, cfg.ConsumerName, false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return err
	}

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Warn("Delivery channel closed")
					return
				}
				handleDelivery(ctx, log, msg, handler)
			}
		}
	}()

	log.Info("Consumer started", "queue", cfg.QueueName, "routing_keys", cfg.RoutingKeys)
	return nil
}

// handleDelivery acks on success and nacks without requeue on failure,
// which dead-letters the message.
func handleDelivery(ctx context.Context, log *logger.Logger, msg amqp.Delivery, handler MessageHandler) {
	log.Debug("Received message", "routing_key", msg.RoutingKey,
		"correlation_id", msg.CorrelationId, "redelivered", msg.Redelivered)

	if err := handler(ctx, msg); err != nil {
		log.Error("Error processing message, nacking to DLQ",
			"error", err, "routing_key", msg.RoutingKey, "correlation_id", msg.CorrelationId)
		if nerr := msg.Nack(false, false); nerr != nil {
			log.Error("Nack failed", "error", nerr)
		}
		return
	}
	if aerr := msg.Ack(false); aerr != nil {
		log.Error("Ack failed", "error", aerr)
	}
}
