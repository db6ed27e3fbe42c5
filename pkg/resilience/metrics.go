package resilience

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

const (
	callSuccess  = "success"
	callFailure  = "failure"
	callRejected = "rejected"
)

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Breaker state: 0 closed, 1 half-open, 2 open",
	}, []string{"breaker"})

	breakerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circuit_breaker_calls_total",
		Help: "Calls through a breaker by result (success, failure, rejected)",
	}, []string{"breaker", "result"})

	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circuit_breaker_transitions_total",
		Help: "Breaker state changes",
	}, []string{"breaker", "to"})
)

func observeState(name string, state gobreaker.State) {
	var v float64
	switch state {
	case gobreaker.StateHalfOpen:
		v = 1
	case gobreaker.StateOpen:
		v = 2
	}
	breakerState.WithLabelValues(name).Set(v)
}

func observeTransition(name string, to gobreaker.State) {
	breakerTransitions.WithLabelValues(name, to.String()).Inc()
	observeState(name, to)
}

func observeCall(name, result string) {
	breakerCalls.WithLabelValues(name, result).Inc()
}
