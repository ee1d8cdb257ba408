package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "factcalc"

// Metrics holds the Prometheus collectors of one process. Each instance owns
// a private registry so tests and embedded servers never collide on the
// global default registry.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	computations   *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	workers        prometheus.Gauge
	activeRequests prometheus.Gauge
	requests       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them together with the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "computations_total",
			Help:      "Number of factorial computations by algorithm and outcome.",
		}, []string{"algorithm", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "computation_duration_seconds",
			Help:      "Wall-clock duration of factorial computations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 12),
		}, []string{"algorithm"}),
		workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "workers",
			Help:      "Worker count of the most recent parallel computation.",
		}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_requests",
			Help:      "HTTP requests currently being served.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "requests_total",
			Help:      "HTTP requests by path and status code.",
		}, []string{"path", "code"}),
	}
	reg.MustRegister(
		m.computations, m.duration, m.workers, m.activeRequests, m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m
}

// ObserveComputation records one finished computation. workers is ignored
// when it is not positive.
func (m *Metrics) ObserveComputation(algorithm string, workers int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.computations.WithLabelValues(algorithm, status).Inc()
	if err == nil {
		m.duration.WithLabelValues(algorithm).Observe(d.Seconds())
	}
	if workers > 0 {
		m.workers.Set(float64(workers))
	}
}

// IncrementActiveRequests marks the start of an HTTP request.
func (m *Metrics) IncrementActiveRequests() { m.activeRequests.Inc() }

// DecrementActiveRequests marks the end of an HTTP request.
func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }

// ObserveRequest counts a served HTTP request.
func (m *Metrics) ObserveRequest(path string, code int) {
	m.requests.WithLabelValues(path, strconv.Itoa(code)).Inc()
}

// Handler returns the exposition handler for this registry.
func (m *Metrics) Handler() http.Handler { return m.handler }

// WritePrometheus serves the current metrics in the text exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ActiveRequests returns the in-flight request gauge.
func (m *Metrics) ActiveRequests() prometheus.Gauge { return m.activeRequests }

// RequestCounter returns the counter of one path and status code.
func (m *Metrics) RequestCounter(path string, code int) prometheus.Counter {
	return m.requests.WithLabelValues(path, strconv.Itoa(code))
}

// ComputationCounter returns the counter of one algorithm and status
// ("success" or "error").
func (m *Metrics) ComputationCounter(algorithm, status string) prometheus.Counter {
	return m.computations.WithLabelValues(algorithm, status)
}
