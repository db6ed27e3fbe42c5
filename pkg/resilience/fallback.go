package resilience

import (
	"context"
	"errors"

	"github.com/richxcame/fraud-registry/pkg/logger"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// FallbackFunc decides the result of a call the breaker refused to run.
type FallbackFunc func(ctx context.Context, err error) (interface{}, error)

// NoopFallback rejects with ErrCircuitOpen.
func NoopFallback(ctx context.Context, err error) (interface{}, error) {
	return nil, ErrCircuitOpen
}

// RejectWithWarning rejects with ErrCircuitOpen and logs which component was
// shed and whether the breaker was open or only probing.
func RejectWithWarning(component string) FallbackFunc {
	return func(ctx context.Context, err error) (interface{}, error) {
		state := "open"
		if errors.Is(err, gobreaker.ErrTooManyRequests) {
			state = "half-open"
		}
		logger.WithContext(ctx).Warn("Circuit breaker rejected call",
			zap.String("component", component),
			zap.String("breaker_state", state),
		)
		return nil, ErrCircuitOpen
	}
}
