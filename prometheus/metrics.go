package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Occupancy operation counter
	OccupancyOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kos_occupancy_operations_total",
			Help: "Total number of occupancy operations",
		},
		[]string{"operation"}, // "create_tenant", "update_tenant", "checkout", "extend", "create_room", "update_room", "delete_room"
	)

	// Ledger entry counter by kind
	LedgerEntryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kos_ledger_entries_total",
			Help: "Total number of ledger entries written",
		},
		[]string{"kind"}, // "INCOME" or "EXPENSE"
	)

	// Auth operation counter
	AuthOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kos_auth_operations_total",
			Help: "Total number of authentication operations",
		},
		[]string{"operation"}, // "register", "request_otp", "verify", "profile_access", etc.
	)

	// Error counters
	ErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kos_errors_total",
			Help: "Total number of request errors",
		},
		[]string{"type"}, // "validation", "not_found", "conflict", "rate_limited", "storage"
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kos_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"path", "method", "status"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kos_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kos_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kos_info",
			Help: "Information about the kos management service",
		},
		[]string{"version"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(OccupancyOperationCounter)
	prometheus.MustRegister(LedgerEntryCounter)
	prometheus.MustRegister(AuthOperationCounter)
	prometheus.MustRegister(ErrorCounter)
	prometheus.MustRegister(HTTPRequestCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(InfoGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// RecordOccupancyOperation increments the occupancy operation counter
func RecordOccupancyOperation(operation string) {
	OccupancyOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordLedgerEntry increments the ledger entry counter
func RecordLedgerEntry(kind string) {
	LedgerEntryCounter.With(prometheus.Labels{"kind": kind}).Inc()
}

// RecordAuthOperation increments the auth operation counter
func RecordAuthOperation(operation string) {
	AuthOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordError increments the error counter
func RecordError(errType string) {
	ErrorCounter.With(prometheus.Labels{"type": errType}).Inc()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware returns an Echo middleware recording request
// counts and durations per route
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			labels := prometheus.Labels{
				"path":   c.Path(),
				"method": c.Request().Method,
				"status": status,
			}
			HTTPRequestCounter.With(labels).Inc()
			RequestDuration.With(labels).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
