package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/richxcame/fraud-registry/pkg/config"
	"github.com/richxcame/fraud-registry/pkg/logger"
	"github.com/richxcame/fraud-registry/pkg/resilience"
	"github.com/richxcame/fraud-registry/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single classification
const DefaultTimeout = 10 * time.Second

var (
	// errMalformedVerdict marks a classifier answer without a reason
	errMalformedVerdict = errors.New("classifier returned no reason")
	// errCallerGone marks a classification abandoned because the caller's context ended
	errCallerGone = errors.New("caller went away before triage finished")
)

// Gate invokes the classifier once per report with a bounded timeout and
// reports every failure as ErrTriageUnavailable.
type Gate struct {
	classifier Classifier
	timeout    time.Duration
	breaker    *resilience.CircuitBreaker
}

// NewGate creates a gate. breaker may be nil.
func NewGate(classifier Classifier, timeout time.Duration, breaker *resilience.CircuitBreaker) *Gate {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gate{classifier: classifier, timeout: timeout, breaker: breaker}
}

// NewGateFromConfig builds the configured classifier behind a circuit breaker
func NewGateFromConfig(cfg config.TriageConfig) (*Gate, error) {
	var classifier Classifier
	switch cfg.Provider {
	case "http":
		classifier = NewHTTPClassifier(cfg.URL, cfg.APIKey, cfg.Timeout)
	case "rules", "":
		classifier = NewRulesClassifier()
	default:
		return nil, fmt.Errorf("unknown triage provider %q", cfg.Provider)
	}

	settings := resilience.BuildSettings("triage-classifier",
		cfg.BreakerInterval, cfg.BreakerTimeout, cfg.FailureThreshold, cfg.SuccessThreshold)
	settings.IsSuccessful = breakerSuccess
	breaker := resilience.NewCircuitBreaker(settings, resilience.RejectWithWarning("triage"))

	return NewGate(classifier, cfg.Timeout, breaker), nil
}

// Classify returns the classifier's verdict unmodified, or ErrTriageUnavailable.
// It never retries.
func (g *Gate) Classify(ctx context.Context, report Report) (*Verdict, error) {
	ctx, span := tracing.StartSpan(ctx, "triage.classify",
		attribute.String("reported_phone_key", report.ReportedPhoneKey.Masked()))
	defer span.End()

	start := time.Now()
	verdict, err := g.classifyOnce(ctx, report)
	classificationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		classificationsTotal.WithLabelValues("unavailable").Inc()
		tracing.RecordError(span, err)
		logger.WithContext(ctx).Warn("Report triage unavailable",
			zap.String("reported_phone_key", report.ReportedPhoneKey.Masked()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrTriageUnavailable, err)
	}

	if verdict.IsSuspicious {
		classificationsTotal.WithLabelValues("suspicious").Inc()
	} else {
		classificationsTotal.WithLabelValues("clean").Inc()
	}
	span.SetAttributes(attribute.Bool("is_suspicious", verdict.IsSuspicious))
	return verdict, nil
}

// breakerSuccess keeps abandoned requests out of the classifier's failure count
func breakerSuccess(err error) bool {
	return err == nil || errors.Is(err, errCallerGone)
}

func (g *Gate) classifyOnce(ctx context.Context, report Report) (*Verdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errCallerGone, err)
	}

	op := func(ctx context.Context) (interface{}, error) {
		return g.invoke(ctx, report)
	}

	if g.breaker == nil {
		v, err := op(ctx)
		if err != nil {
			return nil, err
		}
		return v.(*Verdict), nil
	}

	v, err := g.breaker.Execute(ctx, op)
	if err != nil {
		return nil, err
	}
	return v.(*Verdict), nil
}

type classifyResult struct {
	verdict *Verdict
	err     error
}

// invoke runs the classifier under the gate timeout even if it ignores ctx
func (g *Gate) invoke(parent context.Context, report Report) (*Verdict, error) {
	ctx, cancel := context.WithTimeout(parent, g.timeout)
	defer cancel()

	done := make(chan classifyResult, 1)
	go func() {
		v, err := g.classifier.Classify(ctx, report)
		done <- classifyResult{verdict: v, err: err}
	}()

	select {
	case <-ctx.Done():
		if err := parent.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", errCallerGone, err)
		}
		return nil, fmt.Errorf("classifier did not answer within %s: %w", g.timeout, ctx.Err())
	case res := <-done:
		if res.err != nil {
			if err := parent.Err(); err != nil {
				return nil, fmt.Errorf("%w: %w", errCallerGone, err)
			}
			return nil, res.err
		}
		if res.verdict == nil || strings.TrimSpace(res.verdict.Reason) == "" {
			return nil, errMalformedVerdict
		}
		return res.verdict, nil
	}
}
