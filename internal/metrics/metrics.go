// Package metrics exposes the Prometheus instrumentation of the
// service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sub_accounts",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sub_accounts",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	// AllocationExecutions counts allocation executions by trigger and
	// outcome.
	AllocationExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sub_accounts",
			Subsystem: "allocations",
			Name:      "executions_total",
			Help:      "Total allocation executions by trigger and status.",
		},
		[]string{"trigger", "status"},
	)

	// BudgetAlerts counts budget alerts surfaced by the alert sweep.
	BudgetAlerts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sub_accounts",
			Subsystem: "budgets",
			Name:      "alerts_total",
			Help:      "Total budget alerts emitted.",
		},
	)

	// SweepDuration tracks how long the background sweeps take.
	SweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sub_accounts",
			Subsystem: "worker",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of background sweeps in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"sweep"},
	)

	// ReconciliationMismatches tracks how many sub-accounts had a cached
	// balance that disagreed with their ledger at the last check.
	ReconciliationMismatches = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sub_accounts",
			Subsystem: "ledger",
			Name:      "reconciliation_mismatches",
			Help:      "Sub-accounts whose cached balance disagreed with the ledger at the last reconciliation.",
		},
	)
)

// Handler returns the handler serving the metrics endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// Middleware records request counts and latencies for every route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, status).Observe(time.Since(start).Seconds())
	}
}
