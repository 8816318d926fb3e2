package models

import (
	"time"

	"nightlife-sync/pkg/apperr"
	"nightlife-sync/pkg/validation"

	"github.com/google/uuid"
)

// PlanEventFields is the union of every field a plan event variant can
// carry. BuildEvent picks the ones the requested kind needs.
type PlanEventFields struct {
	PlanID    string     `json:"planId"`
	CreatorID string     `json:"creatorId,omitempty"`
	UserID    string     `json:"userId,omitempty"`
	CityID    string     `json:"cityId"`
	VenueID   string     `json:"venueId,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// BuildEvent validates fields for kind and returns a new event with a fresh
// random event id.
func BuildEvent(kind EventType, fields PlanEventFields) (PlanEvent, error) {
	return BuildEventWithCorrelation(kind, fields, "")
}

// BuildEventWithCorrelation is BuildEvent carrying the caller's correlation id.
func BuildEventWithCorrelation(kind EventType, fields PlanEventFields, correlationID string) (PlanEvent, error) {
	payload, err := buildPayload(kind, fields)
	if err != nil {
		return PlanEvent{}, err
	}
	if err := validation.Struct(payload); err != nil {
		return PlanEvent{}, err
	}

	return PlanEvent{
		EventID:       uuid.NewString(),
		CorrelationID: correlationID,
		EventType:     kind,
		Timestamp:     time.Now().UTC(),
		Data:          payload,
	}, nil
}

func buildPayload(kind EventType, f PlanEventFields) (PlanPayload, error) {
	switch kind {
	case EventPlanCreated:
		if f.StartDate == nil || f.StartDate.IsZero() {
			return nil, apperr.NewValidation("startDate", "must be a valid point in time")
		}
		start := f.StartDate.UTC()
		var end *time.Time
		if f.EndDate != nil {
			if f.EndDate.IsZero() {
				return nil, apperr.NewValidation("endDate", "must be a valid point in time")
			}
			if f.EndDate.Before(start) {
				return nil, apperr.NewValidation("endDate", "must not be before startDate")
			}
			e := f.EndDate.UTC()
			end = &e
		}
		return PlanCreated{
			PlanID:    f.PlanID,
			CreatorID: f.CreatorID,
			CityID:    f.CityID,
			VenueID:   f.VenueID,
			StartDate: start,
			EndDate:   end,
		}, nil
	case EventPlanDeleted:
		return PlanDeleted{PlanID: f.PlanID, CreatorID: f.CreatorID, CityID: f.CityID, VenueID: f.VenueID}, nil
	case EventPlanSaved:
		return PlanSaved{PlanID: f.PlanID, UserID: f.UserID, CityID: f.CityID}, nil
	case EventPlanUnsaved:
		return PlanUnsaved{PlanID: f.PlanID, UserID: f.UserID, CityID: f.CityID}, nil
	case EventPlanViewed:
		return PlanViewed{PlanID: f.PlanID, CityID: f.CityID, UserID: f.UserID}, nil
	default:
		return nil, apperr.NewValidation("eventType", "unknown event type %q", kind)
	}
}
