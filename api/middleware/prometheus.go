package middleware

import (
	"strconv"
	"time"

	"empowerpwd/api/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status", "service"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "service"},
	)

	messageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_operations_total",
			Help: "Total number of messaging operations processed",
		},
		[]string{"operation", "status"},
	)

	messageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messages_operation_duration_seconds",
			Help:    "Duration of messaging operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	messageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_errors_total",
			Help: "Total number of messaging operation errors",
		},
		[]string{"operation", "error_type"},
	)

	wsConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections",
			Help: "Open WebSocket connections",
		},
	)
)

func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
			serviceName,
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			serviceName,
		).Observe(duration)
	}
}

// RecordMessageOperation tracks one messaging call. The error label is the
// HTTP status class so cardinality stays bounded.
func RecordMessageOperation(operation string, started time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		errorType := "internal"
		if code := response.StatusOf(err); code < 500 {
			errorType = strconv.Itoa(code)
		}
		messageErrors.WithLabelValues(operation, errorType).Inc()
	}
	messageOperationsTotal.WithLabelValues(operation, status).Inc()
	messageOperationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func WSConnected() {
	wsConnections.Inc()
}

func WSDisconnected() {
	wsConnections.Dec()
}
