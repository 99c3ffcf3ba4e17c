// Package metrics provides Prometheus metrics for the relay server and bot.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidstream_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidstream_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Relay metrics
	relayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidstream_relay_requests_total",
			Help: "Stream requests by outcome",
		},
		[]string{"outcome"},
	)

	relayBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidstream_relay_bytes_total",
			Help: "Total bytes relayed to clients",
		},
	)

	upstreamFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidstream_upstream_fetch_duration_seconds",
			Help:    "Time until upstream response headers arrive",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scheme", "status"},
	)

	// Bot metrics
	botUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidstream_bot_uploads_total",
			Help: "Uploads received by the bot by result",
		},
		[]string{"result"},
	)

	botGetFileTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidstream_bot_get_file_total",
			Help: "getFile lookups by result",
		},
		[]string{"result"},
	)
)

// Relay outcomes.
const (
	OutcomeFull        = "full"
	OutcomePartial     = "partial"
	OutcomeHead        = "head"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
	OutcomeBadGateway  = "bad_gateway"
	OutcomeError       = "error"
	OutcomeTruncated   = "truncated"
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRelay counts a finished stream request.
func RecordRelay(outcome string) {
	relayRequestsTotal.WithLabelValues(outcome).Inc()
}

// AddRelayedBytes adds n to the relayed byte counter.
func AddRelayedBytes(n int64) {
	if n > 0 {
		relayBytesTotal.Add(float64(n))
	}
}

// ObserveUpstreamFetch records how long an upstream took to answer.
func ObserveUpstreamFetch(scheme string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	upstreamFetchDuration.WithLabelValues(scheme, status).Observe(duration.Seconds())
}

// RecordUpload records an upload handled by the bot. result is e.g. "stored", "rejected", "error".
func RecordUpload(result string) {
	botUploadsTotal.WithLabelValues(result).Inc()
}

// RecordGetFile records a getFile lookup result.
func RecordGetFile(result string) {
	botGetFileTotal.WithLabelValues(result).Inc()
}

// Middleware records request counts and latency per route template.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			RecordHTTPRequest(c.Request().Method, route, status, time.Since(start))
			return err
		}
	}
}
