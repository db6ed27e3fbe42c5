// Package errorreporting forwards unexpected failures to Sentry.
package errorreporting

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/richxcame/fraud-registry/pkg/logger"
	"go.uber.org/zap"
)

// Config holds Sentry client settings
type Config struct {
	DSN         string
	Environment string
	ServiceName string
	Release     string
}

// Init configures the global Sentry hub. It reports whether Sentry is active;
// an empty DSN leaves error reporting off.
func Init(cfg Config) (bool, error) {
	if cfg.DSN == "" {
		return false, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		ServerName:       cfg.ServiceName,
		AttachStacktrace: true,
	})
	if err != nil {
		return false, err
	}

	logger.Info("Sentry error reporting enabled", zap.String("environment", cfg.Environment))
	return true, nil
}

// Middleware attaches a per-request hub; panics are re-raised for Recovery
func Middleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// CaptureError reports err with the request correlation id, if any
func CaptureError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		if id := logger.CorrelationIDFromContext(ctx); id != "" {
			scope.SetTag("correlation_id", id)
		}
		hub.CaptureException(err)
	})
}

// Flush waits for buffered events to be sent
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
