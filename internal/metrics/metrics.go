// Package metrics exposes Prometheus metrics for the flickflock service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flickflock"

// Provider request outcomes.
const (
	OutcomeUpstream = "upstream"
	OutcomeCached   = "cached"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)

// Metrics holds every collector of the service on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	providerRequests   *prometheus.CounterVec
	providerLatency    *prometheus.HistogramVec
	breakerState       *prometheus.GaugeVec
	breakerTransitions *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	flockMutations  *prometheus.CounterVec
	scoringDuration prometheus.Histogram
	worksFanout     prometheus.Histogram
	flocksSwept     prometheus.Counter
	relationReloads *prometheus.CounterVec
}

// New registers all collectors on a fresh registry, plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,

		providerRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Metadata provider requests by provider and outcome",
		}, []string{"provider", "outcome"}),

		providerLatency: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Latency of upstream provider calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),

		breakerState: auto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		}, []string{"name"}),

		breakerTransitions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "circuit_breaker_transitions_total",
			Help:      "Circuit breaker state transitions",
		}, []string{"name", "from", "to"}),

		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status code",
		}, []string{"route", "method", "code"}),

		httpDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"route"}),

		flockMutations: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flock",
			Name:      "mutations_total",
			Help:      "Flock mutations by operation",
		}, []string{"op"}),

		scoringDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "flock",
			Name:      "scoring_duration_seconds",
			Help:      "Time spent scoring a flock's entries",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),

		worksFanout: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "flock",
			Name:      "works_fanout_duration_seconds",
			Help:      "Time spent fetching contributor filmographies for one ranking",
			Buckets:   prometheus.DefBuckets,
		}),

		flocksSwept: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flock",
			Name:      "swept_total",
			Help:      "Flocks removed by the retention sweeper",
		}),

		relationReloads: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relations",
			Name:      "reloads_total",
			Help:      "Relation filter reloads by result",
		}, []string{"result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ProviderRequest(provider, outcome string) {
	m.providerRequests.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) ProviderLatency(provider string, d time.Duration) {
	m.providerLatency.WithLabelValues(provider).Observe(d.Seconds())
}

// BreakerState records a breaker state as 0 (closed), 1 (half-open) or 2 (open).
func (m *Metrics) BreakerState(name string, state float64) {
	m.breakerState.WithLabelValues(name).Set(state)
}

func (m *Metrics) BreakerTransition(name, from, to string) {
	m.breakerTransitions.WithLabelValues(name, from, to).Inc()
}

func (m *Metrics) HTTPRequest(route, method string, code int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) FlockMutation(op string) {
	m.flockMutations.WithLabelValues(op).Inc()
}

func (m *Metrics) ScoringDuration(d time.Duration) {
	m.scoringDuration.Observe(d.Seconds())
}

func (m *Metrics) WorksFanout(d time.Duration) {
	m.worksFanout.Observe(d.Seconds())
}

func (m *Metrics) FlocksSwept(n int) {
	m.flocksSwept.Add(float64(n))
}

func (m *Metrics) RelationsReload(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.relationReloads.WithLabelValues(result).Inc()
}
