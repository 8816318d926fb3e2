package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_events_published_total",
			Help: "Plan events handed to the publish channel",
		},
		[]string{"event_type", "outcome"}, // outcome: "ok", "error"
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_events_consumed_total",
			Help: "Plan events received by consumers",
		},
		[]string{"consumer", "event_type", "outcome"}, // "processed", "duplicate", "failed"
	)

	PreferenceOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preference_operations_total",
			Help: "Preference store operations by outcome",
		},
		[]string{"operation", "outcome"},
	)
)
