package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route and status class",
	}, []string{"service", "method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "http_request_duration_seconds",
		Help: "HTTP request latency by route",
		// Report intake waits on triage for up to 10s
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15},
	}, []string{"service", "method", "route"})

	httpRequestsInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Requests currently being served",
	}, []string{"service"})
)

// Metrics records request counts, latency and in-flight requests. Scrapes of
// /metrics itself are not counted.
func Metrics(serviceName string) gin.HandlerFunc {
	inFlight := httpRequestsInFlight.WithLabelValues(serviceName)

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		inFlight.Inc()
		start := time.Now()

		c.Next()

		inFlight.Dec()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		httpRequestsTotal.WithLabelValues(serviceName, method, route, statusClass(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(serviceName, method, route).Observe(time.Since(start).Seconds())
	}
}

// statusClass folds a status code into 2xx, 4xx, ...
func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
