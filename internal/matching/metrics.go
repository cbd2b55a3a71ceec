package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	vectorsBuilt = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_feature_vectors_built_total",
			Help: "Total number of feature vectors computed",
		},
	)

	vectorRefreshFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_feature_vector_refresh_failures_total",
			Help: "Total number of failed feature vector refreshes",
		},
	)

	matchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_match_scores",
			Help:    "Distribution of explainable match scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	vectorCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_vector_cache_lookups_total",
			Help: "Vector cache lookups by result",
		},
		[]string{"result"},
	)

	corruptVectors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_corrupt_feature_vectors_total",
			Help: "Stored feature vectors that could not be decoded",
		},
	)

	suggestionsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_suggestions_generated_total",
			Help: "Total number of match suggestions produced",
		},
	)
)

func recordVectorBuilt() {
	vectorsBuilt.Inc()
}

func recordRefreshFailure() {
	vectorRefreshFailures.Inc()
}

func recordMatchScore(score float64) {
	matchScores.Observe(score)
}

func recordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	vectorCacheLookups.WithLabelValues(result).Inc()
}

func recordSuggestions(n int) {
	suggestionsGenerated.Add(float64(n))
}

func recordCorruptVector() {
	corruptVectors.Inc()
}
