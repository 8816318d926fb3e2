package api

import (
	"errors"
	"net/http"
	"testing"

	"nightlife-sync/pkg/middleware"
	"nightlife-sync/pkg/models"

	"github.com/goccy/go-json"
)

func TestPublishPlanEvent_Created(t *testing.T) {
	pub := &mockPublisher{}
	router := newTestRouter(t, failingService{}, pub)

	body := `{"eventType":"plan.created","creatorId":"user-001","cityId":"city-001","venueId":"venue-001","startDate":"2026-10-31T21:00:00Z"}`
	w := doRequest(router, http.MethodPost, "/plans/plan-001/events", body)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", w.Code, w.Body.String())
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(pub.published))
	}
	msg := pub.published[0]
	if msg.RoutingKey != "plan.created" {
		t.Errorf("expected routing key plan.created, got %s", msg.RoutingKey)
	}
	if msg.CorrelationID == "" || msg.CorrelationID != w.Header().Get(middleware.CorrelationIDHeader) {
		t.Errorf("correlation id %q does not match response header", msg.CorrelationID)
	}

	event, err := models.DecodePlanEvent(msg.Body)
	if err != nil {
		t.Fatalf("published body does not decode: %v", err)
	}
	created, ok := event.Data.(models.PlanCreated)
	if !ok {
		t.Fatalf("expected PlanCreated payload, got %T", event.Data)
	}
	if created.PlanID != "plan-001" {
		t.Errorf("expected plan id from path, got %q", created.PlanID)
	}

	var resp struct {
		EventID string `json:"eventId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.EventID != event.EventID {
		t.Errorf("response eventId %q != published %q", resp.EventID, event.EventID)
	}
}

func TestPublishPlanEvent_UsesIncomingCorrelationID(t *testing.T) {
	pub := &mockPublisher{}
	router := newTestRouter(t, failingService{}, pub)

	w := doRequestWithHeader(router, "/plans/plan-002/events",
		`{"eventType":"plan.saved","userId":"user-002","cityId":"city-001"}`, "corr-xyz")
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", w.Code, w.Body.String())
	}
	if pub.published[0].CorrelationID != "corr-xyz" {
		t.Errorf("expected corr-xyz, got %q", pub.published[0].CorrelationID)
	}
}

func TestPublishPlanEvent_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"unknown type", `{"eventType":"plan.shared","cityId":"c"}`, "eventType"},
		{"missing start", `{"eventType":"plan.created","creatorId":"u","cityId":"c"}`, "startDate"},
		{"end before start", `{"eventType":"plan.created","creatorId":"u","cityId":"c","startDate":"2026-10-31T21:00:00Z","endDate":"2026-10-31T20:00:00Z"}`, "endDate"},
		{"missing city", `{"eventType":"plan.viewed"}`, "cityId"},
		{"missing user", `{"eventType":"plan.unsaved","cityId":"c"}`, "userId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &mockPublisher{}
			router := newTestRouter(t, failingService{}, pub)

			w := doRequest(router, http.MethodPost, "/plans/plan-003/events", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if resp.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, resp.Field)
			}
			if len(pub.published) != 0 {
				t.Error("invalid event must not be published")
			}
		})
	}
}

func TestPublishPlanEvent_PublishFailureStillAccepted(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker unavailable")}
	router := newTestRouter(t, failingService{}, pub)

	w := doRequest(router, http.MethodPost, "/plans/plan-004/events", `{"eventType":"plan.viewed","cityId":"city-001"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPublishPlanEvent_InvalidJSON(t *testing.T) {
	router := newTestRouter(t, failingService{}, &mockPublisher{})

	w := doRequest(router, http.MethodPost, "/plans/plan-005/events", `{bad`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	// Same decoder and error shape as the preferences PATCH.
	var want PublishEventRequest
	decodeErr := json.Unmarshal([]byte(`{bad`), &want)
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error != "invalid JSON body: "+decodeErr.Error() {
		t.Errorf("unexpected error text %q", resp.Error)
	}
}
