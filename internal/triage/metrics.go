package triage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	classificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_classifications_total",
		Help: "Report classifications by outcome (suspicious, clean, unavailable)",
	}, []string{"outcome"})

	classificationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "triage_classification_duration_seconds",
		Help:    "Time spent waiting for the classifier",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
)
