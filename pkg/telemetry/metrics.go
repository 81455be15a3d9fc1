package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels.
const (
	ResultApplied    = "applied"
	ResultSuppressed = "suppressed"
	ResultError      = "error"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "storectx").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "storectx",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	storeWrites   *prometheus.CounterVec
	persistOps    *prometheus.CounterVec
	busDispatches *prometheus.CounterVec
	busListeners  prometheus.Gauge
	renders       prometheus.Counter
	renderStorms  prometheus.Counter
}

// NewMetrics creates and registers the collectors.
// Registering twice on the same registry panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		storeWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_writes_total",
			Help:        "Scoped store operations by kind and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"op", "result"}),

		persistOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "persist_operations_total",
			Help:        "Backend write-through operations by channel, kind and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"channel", "op", "result"}),

		busDispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bus_dispatches_total",
			Help:        "Events dispatched on the broadcast bus by topic",
			ConstLabels: config.ConstLabels,
		}, []string{"topic"}),

		busListeners: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bus_listeners",
			Help:        "Listeners currently registered on the broadcast bus",
			ConstLabels: config.ConstLabels,
		}),

		renders: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Component renders performed by the reactive runtime",
			ConstLabels: config.ConstLabels,
		}),

		renderStorms: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_storms_total",
			Help:        "Flushes aborted because the render pass budget was exceeded",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// StoreWrite records a scoped store operation.
func (m *Metrics) StoreWrite(op, result string) {
	if m == nil {
		return
	}
	m.storeWrites.WithLabelValues(op, result).Inc()
}

// PersistOp records a write-through to a backend.
func (m *Metrics) PersistOp(channel, op, result string) {
	if m == nil {
		return
	}
	if channel == "" {
		channel = "generic"
	}
	m.persistOps.WithLabelValues(channel, op, result).Inc()
}

// BusDispatch records one dispatched event.
func (m *Metrics) BusDispatch(topic string) {
	if m == nil {
		return
	}
	m.busDispatches.WithLabelValues(topic).Inc()
}

// BusListeners sets the current listener count.
func (m *Metrics) BusListeners(n int) {
	if m == nil {
		return
	}
	m.busListeners.Set(float64(n))
}

// Render records one component render.
func (m *Metrics) Render() {
	if m == nil {
		return
	}
	m.renders.Inc()
}

// RenderStorm records an aborted flush.
func (m *Metrics) RenderStorm() {
	if m == nil {
		return
	}
	m.renderStorms.Inc()
}
