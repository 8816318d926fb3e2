package rabbitmq

import (
	"context"
	"errors"
	"testing"

	"nightlife-sync/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// fakeAcknowledger records what handleDelivery did with a delivery.
type fakeAcknowledger struct {
	acked, nacked, requeued bool
}

func (f *fakeAcknowledger) Ack(uint64, bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func TestHandleDelivery_AcksOnSuccess(t *testing.T) {
	ack := &fakeAcknowledger{}
	msg := amqp.Delivery{Acknowledger: ack, RoutingKey: "plan.saved", DeliveryTag: 1}

	handleDelivery(context.Background(), logger.Nop(), msg, func(context.Context, amqp.Delivery) error {
		return nil
	})

	if !ack.acked || ack.nacked {
		t.Errorf("expected ack only, got %+v", ack)
	}
}

func TestHandleDelivery_DeadLettersOnError(t *testing.T) {
	ack := &fakeAcknowledger{}
	msg := amqp.Delivery{Acknowledger: ack, RoutingKey: "plan.saved", DeliveryTag: 2}

	handleDelivery(context.Background(), logger.Nop(), msg, func(context.Context, amqp.Delivery) error {
		return errors.New("db down")
	})

	if ack.acked {
		t.Error("failed message must not be acked")
	}
	if !ack.nacked || ack.requeued {
		t.Errorf("expected nack without requeue, got %+v", ack)
	}
}

func TestConsumerConfigValidate(t *testing.T) {
	valid := ConsumerConfig{QueueName: "q", DLQName: "dlq.q", RoutingKeys: []string{"plan.created"}}

	tests := []struct {
		name    string
		mutate  func(*ConsumerConfig)
		wantErr bool
	}{
		{"valid", func(*ConsumerConfig) {}, false},
		{"no queue", func(c *ConsumerConfig) { c.QueueName = "" }, true},
		{"no dlq", func(c *ConsumerConfig) { c.DLQName = "" }, true},
		{"no keys", func(c *ConsumerConfig) { c.RoutingKeys = nil }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.validate(); (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQueueArgs(t *testing.T) {
	args := queueArgs("dlq.notifications.plan.events")
	if args["x-dead-letter-exchange"] != "" {
		t.Errorf("expected default exchange, got %v", args["x-dead-letter-exchange"])
	}
	if args["x-dead-letter-routing-key"] != "dlq.notifications.plan.events" {
		t.Errorf("unexpected dead-letter routing key %v", args["x-dead-letter-routing-key"])
	}
}

func TestNewPublishing(t *testing.T) {
	p := newPublishing([]byte(`{}`), "corr-1")
	if p.DeliveryMode != amqp.Persistent {
		t.Error("expected persistent delivery")
	}
	if p.CorrelationId != "corr-1" || p.ContentType != "application/json" {
		t.Errorf("unexpected publishing %+v", p)
	}
}
