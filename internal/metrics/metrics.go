package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var HTTPRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "employee_records_http_requests_total",
		Help: "Total count of HTTP requests by method, route and status code",
	},
	[]string{"method", "route", "status"},
)

var HTTPDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "employee_records_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

var LoginAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "employee_records_login_attempts_total",
		Help: "Total count of login attempts by result (success, invalid, error)",
	},
	[]string{"result"},
)

var DecryptionFailures = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "employee_records_decryption_failures_total",
		Help: "Total count of sensitive fields that failed to decrypt",
	},
)

var SearchIndexErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "employee_records_search_index_errors_total",
		Help: "Total count of failed search index updates by operation",
	},
	[]string{"operation"},
)

// RegisterMetrics adds the application collectors plus the Go runtime and
// process collectors to reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		HTTPRequests,
		HTTPDuration,
		LoginAttempts,
		DecryptionFailures,
		SearchIndexErrors,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves the exposition format for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
