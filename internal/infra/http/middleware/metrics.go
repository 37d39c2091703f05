package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontdesk_leads_created_total",
			Help: "Total number of leads created",
		},
		[]string{"source"},
	)

	bookingsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "frontdesk_bookings_completed_total",
			Help: "Total number of bookings auto-completed",
		},
	)

	calendarSyncErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontdesk_calendar_sync_errors_total",
			Help: "Total number of failed Google Calendar sync attempts",
		},
		[]string{"action"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps label cardinality bounded: ids in the path collapse into
// the chi pattern they matched.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := strings.TrimSpace(rctx.RoutePattern()); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// DomainMetrics records business counters for the use case layer.
type DomainMetrics struct{}

func (DomainMetrics) LeadCreated(source string) {
	leadsCreated.WithLabelValues(source).Inc()
}

func (DomainMetrics) BookingsCompleted(n int) {
	if n > 0 {
		bookingsCompleted.Add(float64(n))
	}
}

func (DomainMetrics) CalendarSyncFailed(action string) {
	calendarSyncErrors.WithLabelValues(action).Inc()
}
