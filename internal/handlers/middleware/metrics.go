package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "taskmanager_http_requests_total",
		Help: "Total number of handled HTTP requests",
	},
	[]string{"method", "code"},
)

var requestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "taskmanager_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method"},
)

// RegisterMetrics registers HTTP metrics with the given Prometheus registry.
// Must be called once at startup to make metrics available on /metrics.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(requestsTotal)
	reg.MustRegister(requestDuration)
}

func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lw := &logWriter{
				ResponseWriter: w,
				data:           logData{responseStatus: http.StatusOK},
			}

			next.ServeHTTP(lw, r)

			requestsTotal.WithLabelValues(r.Method, strconv.Itoa(lw.data.responseStatus)).Inc()
			requestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
