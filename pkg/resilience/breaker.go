package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned when the breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker open")

// Operation is a unit of work guarded by the breaker or retried.
type Operation func(ctx context.Context) (interface{}, error)

// Settings tunes a circuit breaker.
type Settings struct {
	Name             string
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
	SuccessThreshold uint32
	// IsSuccessful classifies errors that should not count as failures (e.g. caller mistakes).
	IsSuccessful func(err error) bool
}

// CircuitBreaker wraps gobreaker with metrics and a fallback.
type CircuitBreaker struct {
	name     string
	breaker  *gobreaker.CircuitBreaker
	fallback FallbackFunc
}

// NewCircuitBreaker creates a breaker that trips after FailureThreshold consecutive failures.
func NewCircuitBreaker(settings Settings, fallback FallbackFunc) *CircuitBreaker {
	name := settings.Name
	if name == "" {
		name = "breaker"
	}
	if fallback == nil {
		fallback = NoopFallback
	}

	failureThreshold := settings.FailureThreshold
	if failureThreshold == 0 {
		failureThreshold = defaultFailureThreshold
	}
	successThreshold := settings.SuccessThreshold
	if successThreshold == 0 {
		successThreshold = defaultSuccessThreshold
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: successThreshold,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		OnStateChange: func(name string, _, to gobreaker.State) {
			observeTransition(name, to)
		},
		IsSuccessful: settings.IsSuccessful,
	}

	cb := &CircuitBreaker{
		name:     name,
		breaker:  gobreaker.NewCircuitBreaker(st),
		fallback: fallback,
	}
	observeState(name, gobreaker.StateClosed)
	return cb
}

// Name returns the breaker name used for metrics.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State reports the current breaker state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Execute runs op through the breaker. When the breaker is open the fallback decides the result.
func (cb *CircuitBreaker) Execute(ctx context.Context, op Operation) (interface{}, error) {
	result, err := cb.breaker.Execute(func() (interface{}, error) {
		return op(ctx)
	})
	if err == nil {
		observeCall(cb.name, callSuccess)
		return result, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		observeCall(cb.name, callRejected)
		return cb.fallback(ctx, err)
	}

	observeCall(cb.name, callFailure)
	return nil, err
}
