package reports

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fraud_reports_total",
	Help: "Report submissions by outcome",
}, []string{"outcome"})

const (
	outcomeRecorded    = "recorded"
	outcomeHeld        = "held_for_review"
	outcomeInvalid     = "invalid"
	outcomeUnavailable = "triage_unavailable"
	outcomeFailed      = "failed"
)
