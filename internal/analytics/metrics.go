package analytics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_events_total",
			Help: "Events seen by the analytics consumer by type",
		},
		[]string{"event_type"},
	)

	journeyStages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_journey_updates_total",
			Help: "Journey recomputations by resulting stage",
		},
		[]string{"stage"},
	)

	successScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analytics_user_success_score",
			Help:    "Distribution of user success scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	safetyIncidents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_safety_incidents_total",
			Help: "Safety incidents by event type",
		},
		[]string{"event_type"},
	)
)

func recordEvent(eventType string) {
	eventsTracked.WithLabelValues(eventType).Inc()
}

func recordJourney(stage string) {
	journeyStages.WithLabelValues(stage).Inc()
}

func recordSuccessScore(score float64) {
	successScores.Observe(score)
}

func recordSafetyIncident(eventType string) {
	safetyIncidents.WithLabelValues(eventType).Inc()
}
