package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics instrumentation, grounded on the Middleware/Handler pattern in
// replay-api's pkg/infra/metrics/prometheus.go: an HTTP middleware plus a
// small set of business counters/histograms the engine and handlers record
// into directly.
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairing_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pairing_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	pairingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairing_engine_runs_total",
			Help: "Total number of round-pairing computations, by outcome",
		},
		[]string{"outcome"},
	)

	pairingRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pairing_engine_run_duration_seconds",
			Help:    "Duration of a full round-pairing computation",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	bracketCollapsesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pairing_bracket_collapses_total",
			Help: "Total number of score-bracket collapses across all runs",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records per-request counters and latency.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := newResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(wrapped.statusCode)
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

// RecordPairingRun records one pairing computation's outcome and latency.
// The HTTP handler reports the whole ComputeRound service call here,
// including its repository lookup and save, not engine.Run alone.
func RecordPairingRun(outcome string, duration time.Duration) {
	pairingRunsTotal.WithLabelValues(outcome).Inc()
	pairingRunDuration.Observe(duration.Seconds())
}

// RecordBracketCollapse records one score-bracket collapse.
func RecordBracketCollapse() {
	bracketCollapsesTotal.Inc()
}

// Handler exposes the /metrics scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
