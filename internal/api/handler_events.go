package api

import (
	"context"
	"io"
	"net/http"

	"nightlife-sync/pkg/logger"
	"nightlife-sync/pkg/metrics"
	"nightlife-sync/pkg/middleware"
	"nightlife-sync/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// EventPublisher defines the interface for publishing events.
// Both the RabbitMQ and Redis publishers implement it.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte, correlationID string) error
}

// PublishEventRequest names the event type and carries the plan fields
// that type requires.
type PublishEventRequest struct {
	EventType models.EventType `json:"eventType"`
	models.PlanEventFields
}

// EventHandler serves /plans/:id/events.
type EventHandler struct {
	Publisher EventPublisher
	log       *logger.Logger
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(pub EventPublisher, log *logger.Logger) *EventHandler {
	return &EventHandler{Publisher: pub, log: log.With("component", "api.events")}
}

// PublishPlanEvent godoc
// @Summary      Publish a plan event
// @Description  Builds a plan lifecycle event and publishes it with the event type as routing key
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Plan ID"
// @Param        request  body      PublishEventRequest  true  "Event type and plan fields"
// @Success      202      {object}  models.PlanEvent
// @Failure      400      {object}  ErrorResponse
// @Router       /plans/{id}/events [post]
func (h *EventHandler) PublishPlanEvent(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	var req PublishEventRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	req.PlanID = c.Param("id")

	event, err := models.BuildEventWithCorrelation(req.EventType, req.PlanEventFields, correlationID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	body, err = event.Marshal()
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	// A failed publish does not fail the request; the event is lost.
	if err := h.Publisher.Publish(c.Request.Context(), string(event.EventType), body, correlationID); err != nil {
		h.log.Error("Error publishing event", "error", err, "event_id", event.EventID, "correlation_id", correlationID)
		metrics.EventsPublished.WithLabelValues(string(event.EventType), "error").Inc()
	} else {
		metrics.EventsPublished.WithLabelValues(string(event.EventType), "ok").Inc()
	}

	h.log.Info("Plan event accepted", "event_id", event.EventID, "event_type", event.EventType,
		"plan_id", req.PlanID, "correlation_id", correlationID)
	c.JSON(http.StatusAccepted, event)
}
