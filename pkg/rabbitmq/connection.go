package rabbitmq

import (
	"fmt"
	"net/url"
	"time"

	"nightlife-sync/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	dialAttempts = 30
	dialBackoff  = 2 * time.Second
)

// Connection wraps an AMQP connection.
type Connection struct {
	URL  string
	Conn *amqp.Connection
	log  *logger.Logger
}

// Connect dials RabbitMQ with retries and logs if the broker later closes
// the connection.
func Connect(rawURL string, log *logger.Logger) (*Connection, error) {
	log = log.With("broker", redact(rawURL))

	var (
		conn *amqp.Connection
		err  error
	)
	for i := 0; i < dialAttempts; i++ {
		conn, err = amqp.Dial(rawURL)
		if err == nil {
			break
		}
		log.Warn("Failed to connect to RabbitMQ, retrying", "error", err, "attempt", i+1, "backoff", dialBackoff)
		time.Sleep(dialBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to RabbitMQ after %d attempts: %w", dialAttempts, err)
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if amqpErr, ok := <-closed; ok && amqpErr != nil {
			log.Error("RabbitMQ connection closed", "code", amqpErr.Code, "reason", amqpErr.Reason)
		}
	}()

	log.Info("Connected to RabbitMQ")
	return &Connection{URL: rawURL, Conn: conn, log: log}, nil
}

// redact drops the password from an amqp URL for logging.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url"
	}
	return u.Redacted()
}

// Channel opens a new AMQP channel.
func (c *Connection) Channel() (*amqp.Channel, error) {
	return c.Conn.Channel()
}

// Close closes the connection.
func (c *Connection) Close() error {
	if c.Conn == nil || c.Conn.IsClosed() {
		return nil
	}
	return c.Conn.Close()
}

func declareExchange(ch *amqp.Channel) error {
	// durable topic exchange, not auto-deleted, not internal
	return ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil)
}
