package notifications

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

const consumerName = "notification-consumer"

// RoutingKeys are the plan events that produce notifications. Views do not.
var RoutingKeys = []string{
	string(models.EventPlanCreated),
	string(models.EventPlanDeleted),
	string(models.EventPlanSaved),
	string(models.EventPlanUnsaved),
}

// Consumer fans plan events out into the plan_notifications log.
type Consumer struct {
	DB  *sql.DB
	log *logger.Logger
}

// NewConsumer creates a new notification consumer.
func NewConsumer(db *sql.DB, log *logger.Logger) *Consumer {
	return &Consumer{DB: db, log: log.With("component", consumerName)}
}

// notification is one row of plan_notifications.
type notification struct {
	planID  string
	actorID string
	cityID  string
	venueID string
}

func notificationFor(p models.PlanPayload) (notification, bool) {
	switch e := p.(type) {
	case models.PlanCreated:
		return notification{planID: e.PlanID, actorID: e.CreatorID, cityID: e.CityID, venueID: e.VenueID}, true
	case models.PlanDeleted:
		return notification{planID: e.PlanID, actorID: e.CreatorID, cityID: e.CityID, venueID: e.VenueID}, true
	case models.PlanSaved:
		return notification{planID: e.PlanID, actorID: e.UserID, cityID: e.CityID}, true
	case models.PlanUnsaved:
		return notification{planID: e.PlanID, actorID: e.UserID, cityID: e.CityID}, true
	case models.PlanViewed:
		return notification{}, false
	default:
		return notification{}, false
	}
}

// HandleMessage processes one plan event. Redelivery of an already handled
// eventId is acknowledged without side effects.
func (c *Consumer) HandleMessage(ctx context.Context, delivery amqp.Delivery) error {
	event, err := models.DecodePlanEvent(delivery.Body)
	if err != nil {
		c.log.Error("Failed to decode event", "error", err, "correlation_id", delivery.CorrelationId)
		metrics.EventsConsumed.WithLabelValues(consumerName, delivery.RoutingKey, "failed").Inc()
		return err
	}

	log := c.log.With("event_id", event.EventID, "event_type", event.EventType, "correlation_id", event.CorrelationID)
	log.Debug("Processing event", "plan_id", event.Data.Plan())

	n, ok := notificationFor(event.Data)
	if !ok {
		log.Debug("Event type does not notify, skipping")
		return nil
	}

	processed, err := postgres.ProcessOnce(ctx, c.DB, event.EventID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO plan_notifications (event_id, correlation_id, event_type, plan_id, actor_id, city_id, venue_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			event.EventID, nullable(event.CorrelationID), string(event.EventType),
			n.planID, nullable(n.actorID), n.cityID, nullable(n.venueID),
		)
		if err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to record notification", "error", err)
		metrics.EventsConsumed.WithLabelValues(consumerName, string(event.EventType), "failed").Inc()
		return err
	}
	if !processed {
		log.Info("Duplicate event ignored")
		metrics.EventsConsumed.WithLabelValues(consumerName, string(event.EventType), "duplicate").Inc()
		return nil
	}

	metrics.EventsConsumed.WithLabelValues(consumerName, string(event.EventType), "processed").Inc()
	log.Info("Notification recorded", "plan_id", n.planID, "actor_id", n.actorID)
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
