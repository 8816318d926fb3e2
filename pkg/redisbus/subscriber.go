package redisbus

import (
	"context"

	"nightlife-sync/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

// Handler processes one message. Errors are logged; pub/sub has no
// redelivery, so a failed message is dropped.
type Handler func(ctx context.Context, routingKey string, msg Message) error

// FromDelivery adapts a handler written against AMQP deliveries, so the
// same consumer runs on either transport.
func FromDelivery(h func(ctx context.Context, d amqp.Delivery) error) Handler {
	return func(ctx context.Context, routingKey string, msg Message) error {
		return h(ctx, amqp.Delivery{
			Body:          msg.Body,
			CorrelationId: msg.CorrelationID,
			RoutingKey:    routingKey,
		})
	}
}

// Subscriber delivers messages from the channels of a set of routing keys.
type Subscriber struct {
	client *redis.Client
	log    *logger.Logger
}

// NewSubscriber parses url (redis://...) and verifies the server answers.
func NewSubscriber(ctx context.Context, url string, log *logger.Logger) (*Subscriber, error) {
	client, err := dial(ctx, url, log)
	if err != nil {
		return nil, err
	}
	return &Subscriber{client: client, log: log.With("component", "subscriber", "transport", "redis")}, nil
}

// Subscribe starts delivering messages for routingKeys to handler until ctx
// is cancelled.
func (s *Subscriber) Subscribe(ctx context.Context, name string, routingKeys []string, handler Handler) error {
	channels := make([]string, 0, len(routingKeys))
	for _, k := range routingKeys {
		channels = append(channels, Channel(k))
	}

	pubsub := s.client.Subscribe(ctx, channels...)
	// Wait for the subscription confirmation so errors surface here.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}

	log := s.log.With("consumer", name)
	msgs := pubsub.Channel()

	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					log.Warn("Subscription channel closed")
					return
				}
				dispatch(ctx, log, m, handler)
			}
		}
	}()

	log.Info("Subscriber started", "channels", channels)
	return nil
}

func dispatch(ctx context.Context, log *logger.Logger, m *redis.Message, handler Handler) {
	routingKey := RoutingKey(m.Channel)
	msg, err := Decode([]byte(m.Payload))
	if err != nil {
		log.Error("Dropping undecodable message", "error", err, "routing_key", routingKey)
		return
	}
	if err := handler(ctx, routingKey, msg); err != nil {
		log.Error("Error processing message, dropped",
			"error", err, "routing_key", routingKey, "correlation_id", msg.CorrelationID)
	}
}

// Close closes the Redis client.
func (s *Subscriber) Close() error {
	return s.client.Close()
}
