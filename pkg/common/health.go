package common

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"

	readinessTimeout = 3 * time.Second
)

// HealthResponse is the body of the health endpoints
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// CheckFunc probes a single dependency
type CheckFunc func(ctx context.Context) error

// HealthCheck answers liveness probes without touching dependencies
func HealthCheck(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{Status: statusHealthy, Service: serviceName, Version: version})
	}
}

// HealthCheckWithDeps answers readiness probes. All checks run concurrently
// under one deadline; any failure turns the response into a 503.
func HealthCheckWithDeps(serviceName, version string, checks map[string]CheckFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		results := runChecks(ctx, checks)

		status, code := statusHealthy, http.StatusOK
		for _, r := range results {
			if r != statusHealthy {
				status, code = statusUnhealthy, http.StatusServiceUnavailable
				break
			}
		}

		c.JSON(code, HealthResponse{Status: status, Service: serviceName, Version: version, Checks: results})
	}
}

func runChecks(ctx context.Context, checks map[string]CheckFunc) map[string]string {
	var (
		mu      sync.Mutex
		g       errgroup.Group
		results = make(map[string]string, len(checks))
	)

	for name, check := range checks {
		g.Go(func() error {
			result := statusHealthy
			if err := check(ctx); err != nil {
				result = statusUnhealthy + ": " + err.Error()
			}
			mu.Lock()
			results[name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}
