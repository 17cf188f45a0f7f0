// Package monitoring provides Prometheus metrics for EVIDENCE-CORE.
//
// Usage:
//
//  1. Setup metrics in your main function:
//     router := gin.New()
//     monitoring.SetupPrometheusMetrics(router)
//
//  2. Add HTTP metrics middleware:
//     router.Use(monitoring.HTTPMetricsMiddleware())
//
//  3. Record custom metrics in your handlers:
//
//	// Cache operations
//	monitoring.RecordCacheOperation("check_and_set", "created")
//
//	// Alert intake outcomes
//	monitoring.RecordIntakeOutcome("accepted")
//
//	// Investigator dispatches
//	monitoring.RecordDispatch("success", time.Since(start))
//
// Available Metrics:
//
//   - evidence_core_http_requests_total{method, endpoint, status_code}
//   - evidence_core_http_request_duration_seconds{method, endpoint}
//   - evidence_core_active_connections
//   - evidence_core_cache_operations_total{operation, result}
//   - evidence_core_alerts_total{outcome}
//   - evidence_core_dispatches_total{status}
//   - evidence_core_dispatch_duration_seconds
//   - evidence_core_errors_total{type, component}
//   - evidence_core_build_info{version, component, go_version}
package monitoring

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evidence_core_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evidence_core_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Cache metrics
	cacheOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evidence_core_cache_operations_total",
			Help: "Total number of dedup cache operations",
		},
		[]string{"operation", "result"}, // result: created, exists, hit, miss, error
	)

	// Alert intake outcomes
	alertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evidence_core_alerts_total",
			Help: "Total number of alerts processed by intake",
		},
		[]string{"outcome"}, // accepted, deduplicated, resolved_skipped, invalid, dispatch_failed
	)

	// Investigator dispatch metrics
	dispatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evidence_core_dispatches_total",
			Help: "Total number of investigation dispatches",
		},
		[]string{"status"}, // success, error, timeout
	)

	dispatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evidence_core_dispatch_duration_seconds",
			Help:    "Investigator dispatch duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// Active connections gauge
	activeConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "evidence_core_active_connections",
			Help: "Number of active connections",
		},
	)

	// Error rate metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evidence_core_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type", "component"}, // type: http, cache, dispatch, etc.
	)
)

// SetupPrometheusMetrics configures the Prometheus metrics endpoint for EVIDENCE-CORE
func SetupPrometheusMetrics(router gin.IRoutes) {
	// Register build info (ignore if already registered)
	_ = prometheus.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "evidence_core_build_info",
		Help: "Build information for EVIDENCE-CORE",
		ConstLabels: prometheus.Labels{
			"version":    "v0.3.1",
			"component":  "evidence-core",
			"go_version": "1.24",
		},
	}, func() float64 { return 1 }))

	// Register metrics (ignore if already registered)
	_ = prometheus.Register(httpRequestsTotal)
	_ = prometheus.Register(httpRequestDuration)
	_ = prometheus.Register(cacheOperationsTotal)
	_ = prometheus.Register(alertsTotal)
	_ = prometheus.Register(dispatchesTotal)
	_ = prometheus.Register(dispatchDuration)
	_ = prometheus.Register(activeConnections)
	_ = prometheus.Register(errorsTotal)

	// Expose metrics endpoint using default registry
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// HTTPMetricsMiddleware collects HTTP request metrics
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		endpoint := normalizeEndpoint(c.Request.URL.Path)

		activeConnections.Inc()
		defer activeConnections.Dec()

		c.Next()

		statusCode := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		httpRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
		httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration)

		if c.Writer.Status() >= 400 {
			errorsTotal.WithLabelValues("http", endpoint).Inc()
		}
	}
}

// RecordCacheOperation records dedup cache operation metrics
func RecordCacheOperation(operation, result string) {
	cacheOperationsTotal.WithLabelValues(operation, result).Inc()
	if result == "error" {
		errorsTotal.WithLabelValues("cache", operation).Inc()
	}
}

// RecordIntakeOutcome records the outcome of one alert submission
func RecordIntakeOutcome(outcome string) {
	alertsTotal.WithLabelValues(outcome).Inc()
}

// RecordDispatch records an investigation dispatch attempt
func RecordDispatch(status string, duration time.Duration) {
	dispatchesTotal.WithLabelValues(status).Inc()
	dispatchDuration.Observe(duration.Seconds())
	if status != "success" {
		errorsTotal.WithLabelValues("dispatch", "investigator").Inc()
	}
}

func normalizeEndpoint(path string) string {
	// Replace numeric segments with :id so per-resource paths collapse into
	// one metrics series.
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if isNumeric(part) && i > 0 {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// isNumeric checks if a string is numeric
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
