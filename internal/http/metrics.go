package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablebook_http_requests_total",
			Help: "Total number of HTTP requests handled.",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tablebook_http_request_duration_seconds",
			Help:    "HTTP request handling time in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	bookingsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tablebook_bookings_created_total",
			Help: "Total number of bookings committed.",
		},
	)

	bookingsCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tablebook_bookings_cancelled_total",
			Help: "Total number of bookings cancelled.",
		},
	)

	bookingRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablebook_booking_rejections_total",
			Help: "Total number of rejected booking operations by reason.",
		},
		[]string{"reason"},
	)
)

// RecordBookingCreated counts a committed booking.
func RecordBookingCreated() {
	bookingsCreatedTotal.Inc()
}

// RecordBookingCancelled counts a cancelled booking.
func RecordBookingCancelled() {
	bookingsCancelledTotal.Inc()
}

// RecordRejection counts a rejected operation by its error kind.
func RecordRejection(reason string) {
	bookingRejectionsTotal.WithLabelValues(reason).Inc()
}

// MetricsHandler exposes the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// Metrics records request counts and latencies per endpoint. Per-date paths
// are collapsed to a template so label cardinality stays bounded.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			endpoint := normalizeEndpoint(r.URL.Path)
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			start := time.Now()
			next.ServeHTTP(recorder, r)

			httpRequestsTotal.WithLabelValues(r.Method, endpoint, http.StatusText(recorder.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
		})
	}
}

func normalizeEndpoint(path string) string {
	switch path {
	case "/tables", "/bookings", "/bookings/move_to_table", "/bookings/swap_tables",
		"/api/available-times", "/healthz", "/metrics":
		return path
	}
	if strings.HasPrefix(path, "/tables/") {
		return "/tables/{id}"
	}
	if strings.HasPrefix(path, "/bookings/") {
		if strings.HasSuffix(path, "/edit") {
			return "/bookings/{date}/{index}/edit"
		}
		return "/bookings/{date}/{index}"
	}
	return "other"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
