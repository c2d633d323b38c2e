package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultMetricsNamespace prefixes every metric the server registers.
const DefaultMetricsNamespace = "semiresponsive"

// Metrics holds the Prometheus collectors for the server.
//
// Metrics collected:
//   - semiresponsive_active_sessions: Gauge of connected sessions
//   - semiresponsive_sessions_total: Counter of sessions created
//   - semiresponsive_sessions_rejected_total: Counter of refused sessions by reason
//   - semiresponsive_events_total: Counter of client events by kind and status
//   - semiresponsive_event_duration_seconds: Histogram of event handling time
//   - semiresponsive_stylesheet_switches_total: Counter of applied stylesheets by mode
//   - semiresponsive_patches_sent_total: Counter of patches sent to clients
//   - semiresponsive_page_renders_total: Counter of server-side renders by status
//   - semiresponsive_websocket_errors_total: Counter of WebSocket errors by type
type Metrics struct {
	activeSessions   prometheus.Gauge
	sessionsTotal    prometheus.Counter
	sessionsRejected *prometheus.CounterVec
	eventsTotal      *prometheus.CounterVec
	eventDuration    *prometheus.HistogramVec
	switchesTotal    *prometheus.CounterVec
	patchesSent      prometheus.Counter
	pageRenders      *prometheus.CounterVec
	wsErrors         *prometheus.CounterVec
}

// NewMetrics registers the server collectors with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultMetricsNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of active WebSocket sessions",
		}),

		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of sessions created",
		}),

		sessionsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_rejected_total",
			Help:      "Total number of refused sessions by reason",
		}, []string{"reason"}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of client events processed",
		}, []string{"kind", "status"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_duration_seconds",
			Help:      "Event processing duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),

		switchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stylesheet_switches_total",
			Help:      "Total number of stylesheets applied by selection mode",
		}, []string{"mode"}),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patches_sent_total",
			Help:      "Total number of patches sent to clients",
		}),

		pageRenders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_renders_total",
			Help:      "Total number of server-side page renders",
		}, []string{"status"}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "websocket_errors_total",
			Help:      "Total WebSocket errors by type",
		}, []string{"type"}),
	}
}

// The recorders below are nil-safe so tests can run sessions without a
// registry.

func (m *Metrics) sessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
	m.sessionsTotal.Inc()
}

func (m *Metrics) sessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

func (m *Metrics) sessionRejected(reason string) {
	if m == nil {
		return
	}
	m.sessionsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) event(kind, status string, seconds float64) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(kind, status).Inc()
	m.eventDuration.WithLabelValues(kind).Observe(seconds)
}

func (m *Metrics) stylesheetSwitched(mode string) {
	if m == nil {
		return
	}
	m.switchesTotal.WithLabelValues(mode).Inc()
}

func (m *Metrics) patches(n int) {
	if m == nil {
		return
	}
	m.patchesSent.Add(float64(n))
}

func (m *Metrics) pageRendered(status string) {
	if m == nil {
		return
	}
	m.pageRenders.WithLabelValues(status).Inc()
}

func (m *Metrics) wsError(typ string) {
	if m == nil {
		return
	}
	m.wsErrors.WithLabelValues(typ).Inc()
}
