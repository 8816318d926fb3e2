package notifications

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"nightlife-sync/pkg/logger"
	"nightlife-sync/pkg/models"

	"github.com/DATA-DOG/go-sqlmock"
	amqp "github.com/rabbitmq/amqp091-go"
)

func mustBuild(t *testing.T, kind models.EventType, f models.PlanEventFields) models.PlanEvent {
	t.Helper()
	ev, err := models.BuildEventWithCorrelation(kind, f, "corr-001")
	if err != nil {
		t.Fatalf("build %s: %v", kind, err)
	}
	return ev
}

func makeDelivery(t *testing.T, event models.PlanEvent) amqp.Delivery {
	t.Helper()
	body, err := event.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return amqp.Delivery{
		Body:          body,
		CorrelationId: event.CorrelationID,
		RoutingKey:    string(event.EventType),
	}
}

func TestHandleMessage_PlanCreated(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	start := time.Date(2026, 10, 31, 21, 0, 0, 0, time.UTC)
	event := mustBuild(t, models.EventPlanCreated, models.PlanEventFields{
		PlanID: "plan-001", CreatorID: "user-001", CityID: "city-001", VenueID: "venue-001", StartDate: &start,
	})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency_keys").
		WithArgs(event.EventID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO plan_notifications").
		WithArgs(event.EventID, sql.NullString{String: "corr-001", Valid: true}, "plan.created",
			"plan-001", sql.NullString{String: "user-001", Valid: true}, "city-001",
			sql.NullString{String: "venue-001", Valid: true}).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	consumer := NewConsumer(db, logger.Nop())
	if err := consumer.HandleMessage(context.Background(), makeDelivery(t, event)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestHandleMessage_PlanSavedWithoutVenue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	event := mustBuild(t, models.EventPlanSaved, models.PlanEventFields{PlanID: "plan-002", UserID: "user-002", CityID: "city-001"})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency_keys").
		WithArgs(event.EventID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO plan_notifications").
		WithArgs(event.EventID, sqlmock.AnyArg(), "plan.saved", "plan-002",
			sql.NullString{String: "user-002", Valid: true}, "city-001", sql.NullString{}).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	consumer := NewConsumer(db, logger.Nop())
	if err := consumer.HandleMessage(context.Background(), makeDelivery(t, event)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestHandleMessage_DuplicateEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	event := mustBuild(t, models.EventPlanUnsaved, models.PlanEventFields{PlanID: "plan-003", UserID: "user-003", CityID: "city-002"})

	// Idempotency key already claimed: no notification insert.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency_keys").
		WithArgs(event.EventID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	consumer := NewConsumer(db, logger.Nop())
	if err := consumer.HandleMessage(context.Background(), makeDelivery(t, event)); err != nil {
		t.Fatalf("expected no error for duplicate, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestHandleMessage_ViewIsSkipped(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	event := mustBuild(t, models.EventPlanViewed, models.PlanEventFields{PlanID: "plan-004", CityID: "city-001"})

	consumer := NewConsumer(db, logger.Nop())
	if err := consumer.HandleMessage(context.Background(), makeDelivery(t, event)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected database access: %v", err)
	}
}

func TestHandleMessage_InvalidJSON(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	consumer := NewConsumer(db, logger.Nop())

	delivery := amqp.Delivery{
		Body:          []byte("{invalid json"),
		CorrelationId: "corr-bad",
	}

	if err := consumer.HandleMessage(context.Background(), delivery); err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestRoutingKeysExcludeViews(t *testing.T) {
	for _, k := range RoutingKeys {
		if k == string(models.EventPlanViewed) {
			t.Fatal("views must not be routed to notifications")
		}
	}
	if len(RoutingKeys) != 4 {
		t.Errorf("expected 4 routing keys, got %d", len(RoutingKeys))
	}
}

func TestHandleMessage_IncompletePayloadIsRejected(t *testing.T) {
	bodies := map[string]string{
		"empty created payload": `{"eventId":"evt-x1","eventType":"plan.created","data":{}}`,
		"null saved payload":    `{"eventId":"evt-x2","eventType":"plan.saved","data":null}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create sqlmock: %v", err)
			}
			defer db.Close()

			consumer := NewConsumer(db, logger.Nop())
			delivery := amqp.Delivery{Body: []byte(body), RoutingKey: "plan.created"}

			// An error makes the consumer loop nack the message to the DLQ.
			err = consumer.HandleMessage(context.Background(), delivery)
			if err == nil {
				t.Fatal("expected error for incomplete payload, got nil")
			}
			if !strings.Contains(err.Error(), "data") && !strings.Contains(err.Error(), "payload") {
				t.Errorf("expected a decode error, got %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unexpected database access: %v", err)
			}
		})
	}
}
