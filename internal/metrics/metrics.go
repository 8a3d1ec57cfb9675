// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers the application's Prometheus metrics.
//
// WHY AN EXPLICIT REGISTRY?
// prometheus.MustRegister uses a package-global default registry, which
// makes tests that construct two Collectors panic with duplicate
// registration. Taking a prometheus.Registerer lets each test (and the
// server) own its own registry.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	loginsTotal     *prometheus.CounterVec
	commentsTotal   prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_http_requests_total",
			Help: "HTTP requests served, by method and status code.",
		}, []string{"method", "status"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "inkwell_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		loginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_logins_total",
			Help: "Login attempts, by outcome (success, failure).",
		}, []string{"outcome"}),
		commentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_comments_total",
			Help: "Comments successfully posted.",
		}),
	}

	reg.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.loginsTotal,
		c.commentsTotal,
	)

	return c
}

// RecordLogin counts a login attempt by outcome ("success" or "failure").
func (c *Collector) RecordLogin(outcome string) {
	c.loginsTotal.WithLabelValues(outcome).Inc()
}

// RecordComment counts a successfully posted comment.
func (c *Collector) RecordComment() {
	c.commentsTotal.Inc()
}

// statusRecorder captures the status code for the request counter.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Middleware instruments every request with the counter and the latency
// histogram. It sits near the top of the chain so the recorded duration
// includes the whole handler stack.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		c.requestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		c.requestDuration.Observe(time.Since(start).Seconds())
	})
}

// Handler returns the /metrics scrape endpoint for the given gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Mount attaches the scrape endpoint to a chi router.
func Mount(r chi.Router, gatherer prometheus.Gatherer) {
	r.Handle("/metrics", Handler(gatherer))
}
