package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// namespace prefixes every metric exposed by the simulator.
const namespace = "pi_simulator"

// Metrics holds the Prometheus collectors for the simulator core.
// A nil *Metrics disables instrumentation: every method is a no-op.
type Metrics struct {
	// registry is the dedicated registry all collectors live in.
	registry *prometheus.Registry

	ticksTotal        prometheus.Counter
	tickDuration      prometheus.Histogram
	sessionsConnected prometheus.Gauge
	sessionsTotal     prometheus.Counter
	updatesSent       prometheus.Counter
	scenarioActive    *prometheus.GaugeVec
}

// New creates and registers the simulator collectors on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total simulation ticks executed",
		}),

		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time to recompute all tag values in one tick",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),

		sessionsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_connected",
			Help:      "Number of currently connected streaming sessions",
		}),

		sessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total streaming sessions opened (including closed)",
		}),

		updatesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_sent_total",
			Help:      "Total value batches pushed to streaming sessions",
		}),

		scenarioActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scenario_active",
			Help:      "1 for the currently active scenario, 0 otherwise",
		}, []string{"scenario"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ticksTotal,
		m.tickDuration,
		m.sessionsConnected,
		m.sessionsTotal,
		m.updatesSent,
		m.scenarioActive,
	)

	return m
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}

	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTick records one completed tick and its duration.
func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}

	m.ticksTotal.Inc()
	m.tickDuration.Observe(d.Seconds())
}

// SessionOpened records a new streaming session.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}

	m.sessionsTotal.Inc()
	m.sessionsConnected.Inc()
}

// SessionClosed records a torn-down streaming session.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}

	m.sessionsConnected.Dec()
}

// UpdateSent records one value batch pushed to a session.
func (m *Metrics) UpdateSent() {
	if m == nil {
		return
	}

	m.updatesSent.Inc()
}

// SetActiveScenario marks the named scenario as the active one.
func (m *Metrics) SetActiveScenario(name string) {
	if m == nil {
		return
	}

	m.scenarioActive.Reset()
	m.scenarioActive.WithLabelValues(name).Set(1)
}
