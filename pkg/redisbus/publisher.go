// Package redisbus publishes plan events over Redis pub/sub. It is the
// lightweight alternative to the RabbitMQ exchange for deployments that
// already run Redis; it offers no DLQ and no delivery guarantee beyond
// connected subscribers.
package redisbus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nightlife-sync/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const ChannelPrefix = "events:"

// Message is what subscribers receive on a channel.
type Message struct {
	CorrelationID string          `json:"correlationId,omitempty"`
	Body          json.RawMessage `json:"body"`
}

// Publisher implements the API's event publisher on Redis.
type Publisher struct {
	client *redis.Client
	log    *logger.Logger
}

// NewPublisher parses url (redis://...) and verifies the server answers.
func NewPublisher(ctx context.Context, url string, log *logger.Logger) (*Publisher, error) {
	client, err := dial(ctx, url, log)
	if err != nil {
		return nil, err
	}
	return &Publisher{client: client, log: log.With("component", "publisher", "transport", "redis")}, nil
}

func dial(ctx context.Context, url string, log *logger.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info("Connected to Redis", "addr", opts.Addr)
	return client, nil
}

// Channel returns the pub/sub channel for a routing key.
func Channel(routingKey string) string {
	return ChannelPrefix + routingKey
}

// RoutingKey is the inverse of Channel.
func RoutingKey(channel string) string {
	return strings.TrimPrefix(channel, ChannelPrefix)
}

// Encode wraps body with its correlation id for the wire.
func Encode(body []byte, correlationID string) ([]byte, error) {
	return json.Marshal(Message{CorrelationID: correlationID, Body: body})
}

// Decode is the inverse of Encode.
func Decode(payload []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		return Message{}, err
	}
	if len(m.Body) == 0 {
		return Message{}, fmt.Errorf("message has no body")
	}
	return m, nil
}

// Publish sends body on the channel for routingKey.
func (p *Publisher) Publish(ctx context.Context, routingKey string, body []byte, correlationID string) error {
	payload, err := Encode(body, correlationID)
	if err != nil {
		return err
	}

	receivers, err := p.client.Publish(ctx, Channel(routingKey), payload).Result()
	if err != nil {
		return err
	}
	p.log.Debug("Published event", "channel", Channel(routingKey), "receivers", receivers, "correlation_id", correlationID)
	return nil
}

// Close closes the Redis client.
func (p *Publisher) Close() error {
	return p.client.Close()
}
