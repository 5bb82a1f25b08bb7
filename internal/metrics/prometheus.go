// Package metrics exposes Prometheus instrumentation for the lifecycle
// engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label used for successful operations.
const OutcomeOK = "ok"

var defaultBuckets = []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}

// Manager owns the lifecycle metrics.  A nil *Manager is valid and records
// nothing.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  *prometheus.Registry

	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	cascadeSize       prometheus.Histogram
	eventsPublished   *prometheus.CounterVec
}

// NewManager builds a Manager with its own registry unless one is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "gigbook",
		subsystem: "lifecycle",
		buckets:   defaultBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.init()
	return m
}

func (m *Manager) init() {
	auto := promauto.With(m.registry)

	m.operations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "operations_total",
		Help:      "Lifecycle operations by operation and outcome",
	}, []string{"operation", "outcome"})

	m.operationDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "operation_duration_milliseconds",
		Help:      "Lifecycle operation latency in milliseconds",
		Buckets:   m.buckets,
	}, []string{"operation"})

	m.cascadeSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cascade_performances",
		Help:      "Performances moved to pending_reconfirm per event core edit",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
	})

	m.eventsPublished = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_published_total",
		Help:      "Lifecycle events handed to the broker by outcome",
	}, []string{"outcome"})
}

// ObserveOperation records one finished operation.
func (m *Manager) ObserveOperation(operation, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(float64(took) / float64(time.Millisecond))
}

// ObserveCascade records how many performances an event core edit moved.
func (m *Manager) ObserveCascade(n int) {
	if m == nil {
		return
	}
	m.cascadeSize.Observe(float64(n))
}

// IncEventsPublished counts a publish attempt.
func (m *Manager) IncEventsPublished(ok bool) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if !ok {
		outcome = "error"
	}
	m.eventsPublished.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
