package trust

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	trustAssessments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trust_assessments_total",
			Help: "Trust assessments by resulting level",
		},
		[]string{"level"},
	)

	verificationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trust_verifications_total",
			Help: "Verification requests and reviews by type and status",
		},
		[]string{"type", "status"},
	)

	safetyAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trust_safety_alerts_total",
			Help: "Safety alerts raised by type",
		},
		[]string{"type"},
	)
)

func recordAssessment(level Level) {
	trustAssessments.WithLabelValues(strconv.Itoa(int(level))).Inc()
}

func recordVerification(verificationType, status string) {
	verificationTransitions.WithLabelValues(verificationType, status).Inc()
}

func recordSafetyAlert(alertType string) {
	safetyAlerts.WithLabelValues(alertType).Inc()
}
