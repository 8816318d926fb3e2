package models

import (
	"bytes"
	"fmt"
	"time"

	"nightlife-sync/pkg/apperr"
	"nightlife-sync/pkg/validation"

	"github.com/goccy/go-json"
)

// EventType represents the type of plan lifecycle event. It doubles as the
// routing key on the events exchange.
type EventType string

const (
	EventPlanCreated EventType = "plan.created"
	EventPlanDeleted EventType = "plan.deleted"
	EventPlanSaved   EventType = "plan.saved"
	EventPlanUnsaved EventType = "plan.unsaved"
	EventPlanViewed  EventType = "plan.viewed"
)

// AllEventTypes lists every plan event type in declaration order.
var AllEventTypes = []EventType{
	EventPlanCreated,
	EventPlanDeleted,
	EventPlanSaved,
	EventPlanUnsaved,
	EventPlanViewed,
}

// Valid reports whether t is one of the declared plan event types.
func (t EventType) Valid() bool {
	switch t {
	case EventPlanCreated, EventPlanDeleted, EventPlanSaved, EventPlanUnsaved, EventPlanViewed:
		return true
	}
	return false
}

// PlanPayload is the closed set of plan event payloads. Only the variants in
// this package implement it; consumers switch on the concrete type.
type PlanPayload interface {
	EventType() EventType
	Plan() string
	City() string
	planPayload()
}

// PlanCreated is published when a plan is created.
type PlanCreated struct {
	PlanID    string     `json:"planId" validate:"required"`
	CreatorID string     `json:"creatorId" validate:"required"`
	CityID    string     `json:"cityId" validate:"required"`
	VenueID   string     `json:"venueId,omitempty"`
	StartDate time.Time  `json:"startDate" validate:"required"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// PlanDeleted is published when a plan is deleted by its creator.
type PlanDeleted struct {
	PlanID    string `json:"planId" validate:"required"`
	CreatorID string `json:"creatorId" validate:"required"`
	CityID    string `json:"cityId" validate:"required"`
	VenueID   string `json:"venueId,omitempty"`
}

// PlanSaved is published when a user saves a plan.
type PlanSaved struct {
	PlanID string `json:"planId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
	CityID string `json:"cityId" validate:"required"`
}

// PlanUnsaved is published when a user removes a saved plan.
type PlanUnsaved struct {
	PlanID string `json:"planId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
	CityID string `json:"cityId" validate:"required"`
}

// PlanViewed is published when a plan is viewed. UserID is empty for
// anonymous views.
type PlanViewed struct {
	PlanID string `json:"planId" validate:"required"`
	CityID string `json:"cityId" validate:"required"`
	UserID string `json:"userId,omitempty"`
}

func (PlanCreated) EventType() EventType { return EventPlanCreated }
func (PlanDeleted) EventType() EventType { return EventPlanDeleted }
func (PlanSaved) EventType() EventType   { return EventPlanSaved }
func (PlanUnsaved) EventType() EventType { return EventPlanUnsaved }
func (PlanViewed) EventType() EventType  { return EventPlanViewed }

func (p PlanCreated) Plan() string { return p.PlanID }
func (p PlanDeleted) Plan() string { return p.PlanID }
func (p PlanSaved) Plan() string   { return p.PlanID }
func (p PlanUnsaved) Plan() string { return p.PlanID }
func (p PlanViewed) Plan() string  { return p.PlanID }

func (p PlanCreated) City() string { return p.CityID }
func (p PlanDeleted) City() string { return p.CityID }
func (p PlanSaved) City() string   { return p.CityID }
func (p PlanUnsaved) City() string { return p.CityID }
func (p PlanViewed) City() string  { return p.CityID }

func (PlanCreated) planPayload() {}
func (PlanDeleted) planPayload() {}
func (PlanSaved) planPayload()   {}
func (PlanUnsaved) planPayload() {}
func (PlanViewed) planPayload()  {}

// PlanEvent is the envelope published for every plan lifecycle change.
// EventID is assigned once by BuildEvent and is the consumers' idempotency key.
type PlanEvent struct {
	EventID       string      `json:"eventId"`
	CorrelationID string      `json:"correlationId,omitempty"`
	EventType     EventType   `json:"eventType"`
	Timestamp     time.Time   `json:"timestamp"`
	Data          PlanPayload `json:"data"`
}

type rawPlanEvent struct {
	EventID       string          `json:"eventId"`
	CorrelationID string          `json:"correlationId,omitempty"`
	EventType     EventType       `json:"eventType"`
	Timestamp     time.Time       `json:"timestamp"`
	Data          json.RawMessage `json:"data"`
}

// Marshal encodes the event for the wire.
func (e PlanEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalJSON restores the concrete payload variant from eventType.
func (e *PlanEvent) UnmarshalJSON(b []byte) error {
	var raw rawPlanEvent
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var (
		payload PlanPayload
		err     error
	)
	switch raw.EventType {
	case EventPlanCreated:
		payload, err = decodePayload[PlanCreated](raw.Data)
	case EventPlanDeleted:
		payload, err = decodePayload[PlanDeleted](raw.Data)
	case EventPlanSaved:
		payload, err = decodePayload[PlanSaved](raw.Data)
	case EventPlanUnsaved:
		payload, err = decodePayload[PlanUnsaved](raw.Data)
	case EventPlanViewed:
		payload, err = decodePayload[PlanViewed](raw.Data)
	default:
		return fmt.Errorf("unknown event type %q", raw.EventType)
	}
	if err != nil {
		return fmt.Errorf("decode %s payload: %w", raw.EventType, err)
	}

	*e = PlanEvent{
		EventID:       raw.EventID,
		CorrelationID: raw.CorrelationID,
		EventType:     raw.EventType,
		Timestamp:     raw.Timestamp,
		Data:          payload,
	}
	return nil
}

// decodePayload decodes data into T and holds it to the same rules
// BuildEvent enforces, so a malformed event never reaches a consumer write.
func decodePayload[T PlanPayload](data json.RawMessage) (PlanPayload, error) {
	var p T
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, fmt.Errorf("missing data")
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if c, ok := any(p).(PlanCreated); ok && c.StartDate.IsZero() {
		return nil, apperr.NewValidation("startDate", "must be a valid point in time")
	}
	if err := validation.Struct(p); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodePlanEvent decodes a message body produced by PlanEvent.Marshal.
func DecodePlanEvent(body []byte) (PlanEvent, error) {
	var e PlanEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return PlanEvent{}, err
	}
	if e.EventID == "" {
		return PlanEvent{}, fmt.Errorf("event has no eventId")
	}
	return e, nil
}
