package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	clientRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total number of API calls issued by the storefront client.",
		},
		[]string{"resource", "outcome"},
	)

	clientDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Duration of API calls issued by the storefront client.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"resource"},
	)

	unauthorizedEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "client",
			Name:      "session_invalidations_total",
			Help:      "Number of 401 responses that invalidated the local session.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the reference API.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests handled by the reference API.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(clientRequests, clientDuration, unauthorizedEvents, httpRequests, httpDuration)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveClientRequest records one outgoing API call.
func ObserveClientRequest(resource, outcome string, d time.Duration) {
	clientRequests.WithLabelValues(resource, outcome).Inc()
	clientDuration.WithLabelValues(resource).Observe(d.Seconds())
}

// ClientRecorder reports client calls to the collectors in this package.
type ClientRecorder struct{}

func (ClientRecorder) ObserveRequest(resource, outcome string, d time.Duration) {
	ObserveClientRequest(resource, outcome, d)
}

func (ClientRecorder) Unauthorized() { RecordUnauthorized() }

// RecordUnauthorized counts a session invalidation triggered by a 401.
func RecordUnauthorized() {
	unauthorizedEvents.Inc()
}

// ObserveHTTPRequest records one request served by the reference API.
// path must be the route template, not the raw URL, to keep cardinality bounded.
func ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}
