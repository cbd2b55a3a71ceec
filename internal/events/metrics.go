package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Events appended to the dating stream",
		},
		[]string{"event_type"},
	)

	publishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_publish_failures_total",
			Help: "Events that could not be appended to the stream",
		},
		[]string{"event_type"},
	)

	eventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Events handled by consumer groups",
		},
		[]string{"group", "event_type", "status"},
	)
)

func recordPublished(eventType EventType) {
	eventsPublished.WithLabelValues(string(eventType)).Inc()
}

func recordPublishFailure(eventType EventType) {
	publishFailures.WithLabelValues(string(eventType)).Inc()
}

func recordConsumed(group string, eventType EventType, status string) {
	eventsConsumed.WithLabelValues(group, string(eventType), status).Inc()
}
