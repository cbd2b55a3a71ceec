package dating

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recommendationsServed = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dating_recommendations_returned",
			Help:    "Number of candidates returned per recommendation request",
			Buckets: prometheus.LinearBuckets(0, 5, 11),
		},
		[]string{"path"},
	)

	rankingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dating_ranking_duration_seconds",
			Help: "Time spent ranking candidates",
		},
		[]string{"path"},
	)

	fallbackRankings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dating_fallback_rankings_total",
			Help: "Rankings served without a usable requester vector",
		},
	)

	candidatesDefaulted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dating_candidates_defaulted_total",
			Help: "Candidates given the default score after a scoring failure",
		},
	)
)

func recordRecommendation(path string, returned int, duration time.Duration) {
	recommendationsServed.WithLabelValues(path).Observe(float64(returned))
	rankingDuration.WithLabelValues(path).Observe(duration.Seconds())
}

func recordFallback() {
	fallbackRankings.Inc()
}

func recordCandidateDefaulted() {
	candidatesDefaulted.Inc()
}
