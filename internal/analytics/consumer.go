package analytics

import (
	"context"
	"database/sql"
	"fmt"

	"nightlife-sync/pkg/logger"
	"nightlife-sync/pkg/metrics"
	"nightlife-sync/pkg/models"
	"nightlife-sync/pkg/postgres"

	amqp "github.com/rabbitmq/amqp091-go"
)

const consumerName = "analytics-consumer"

// RoutingKeys binds every plan event type.
var RoutingKeys = func() []string {
	keys := make([]string, 0, len(models.AllEventTypes))
	for _, t := range models.AllEventTypes {
		keys = append(keys, string(t))
	}
	return keys
}()

// Consumer aggregates plan events into daily per-city counts.
type Consumer struct {
	DB  *sql.DB
	log *logger.Logger
}

// NewConsumer creates a new analytics consumer.
func NewConsumer(db *sql.DB, log *logger.Logger) *Consumer {
	return &Consumer{DB: db, log: log.With("component", consumerName)}
}

// HandleMessage bumps the plan_metrics counter for the event's day, city
// and type. The count and the idempotency key commit together.
func (c *Consumer) HandleMessage(ctx context.Context, delivery amqp.Delivery) error {
	event, err := models.DecodePlanEvent(delivery.Body)
	if err != nil {
		c.log.Error("Failed to decode event", "error", err, "correlation_id", delivery.CorrelationId)
		metrics.EventsConsumed.WithLabelValues(consumerName, delivery.RoutingKey, "failed").Inc()
		return err
	}

	log := c.log.With("event_id", event.EventID, "event_type", event.EventType, "correlation_id", event.CorrelationID)

	metricDate := event.Timestamp.UTC().Format("2006-01-02")
	cityID := event.Data.City()

	processed, err := postgres.ProcessOnce(ctx, c.DB, event.EventID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO plan_metrics (metric_date, city_id, event_type, count)
			 VALUES ($1, $2, $3, 1)
			 ON CONFLICT (metric_date, city_id, event_type)
			 DO UPDATE SET count = plan_metrics.count + 1`,
			metricDate, cityID, string(event.EventType),
		)
		if err != nil {
			return fmt.Errorf("upsert plan metrics: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to update metrics", "error", err)
		metrics.EventsConsumed.WithLabelValues(consumerName, string(event.EventType), "failed").Inc()
		return err
	}
	if !processed {
		log.Info("Duplicate event ignored")
		metrics.EventsConsumed.WithLabelValues(consumerName, string(event.EventType), "duplicate").Inc()
		return nil
	}

	metrics.EventsConsumed.WithLabelValues(consumerName, string(event.EventType), "processed").Inc()
	log.Info("Metrics updated", "date", metricDate, "city_id", cityID)
	return nil
}
