package observation

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics of the observation core.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "observation").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dependencies per scope.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
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

// WithBuckets sets the dependency histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
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
		Namespace: "observation",
		Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
		Registry:  prometheus.DefaultRegisterer,
	}
}

type metrics struct {
	scopesTotal         prometheus.Counter
	scopeDependencies   prometheus.Histogram
	registrationsTotal  prometheus.Counter
	activeRegistrations prometheus.Gauge
	cancellationsTotal  prometheus.Counter
	mutationsTotal      *prometheus.CounterVec
	firedTotal          prometheus.Counter
	cancelledTotal      prometheus.Counter
}

var (
	globalMetrics   atomic.Pointer[metrics]
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		scopesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scopes_total",
			Help:        "Total number of completed tracking scopes",
			ConstLabels: config.ConstLabels,
		}),

		scopeDependencies: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scope_dependencies",
			Help:        "Distinct (object, property) pairs read per tracking scope",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		registrationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "registrations_total",
			Help:        "Total number of watches registered in registrars",
			ConstLabels: config.ConstLabels,
		}),

		activeRegistrations: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_registrations",
			Help:        "Number of watches currently registered in registrars",
			ConstLabels: config.ConstLabels,
		}),

		cancellationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "registration_cancellations_total",
			Help:        "Total number of registrar watches removed by cancelWatch",
			ConstLabels: config.ConstLabels,
		}),

		mutationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mutations_total",
			Help:        "Total number of withMutation calls by whether any watch fired",
			ConstLabels: config.ConstLabels,
		}, []string{"notified"}),

		firedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "observations_fired_total",
			Help:        "Total number of observations whose onChange ran",
			ConstLabels: config.ConstLabels,
		}),

		cancelledTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "observations_cancelled_total",
			Help:        "Total number of observations cancelled before firing",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// EnableMetrics registers the observation metrics and starts recording.
// Only the first call registers; later calls return the existing collector.
//
// Metrics collected (with the default namespace):
//   - observation_scopes_total
//   - observation_scope_dependencies
//   - observation_registrations_total
//   - observation_active_registrations
//   - observation_registration_cancellations_total
//   - observation_mutations_total{notified="true|false"}
//   - observation_observations_fired_total
//   - observation_observations_cancelled_total
//
// Example:
//
//	observation.EnableMetrics(observation.WithNamespace("myapp"))
//	http.Handle("/metrics", promhttp.Handler())
func EnableMetrics(opts ...MetricsOption) *Collector {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()

	m := globalMetrics.Load()
	if m == nil {
		m = initMetrics(config)
		globalMetrics.Store(m)
	}
	return &Collector{m: m}
}

// Collector exposes the recorded metrics.
type Collector struct {
	m *metrics
}

// GetMetrics returns the metrics collector, or nil if EnableMetrics has not
// been called.
func GetMetrics() *Collector {
	m := globalMetrics.Load()
	if m == nil {
		return nil
	}
	return &Collector{m: m}
}

// ActiveRegistrations returns the gauge of registered watches.
func (c *Collector) ActiveRegistrations() prometheus.Gauge {
	return c.m.activeRegistrations
}

// ObservationsFired returns the counter of fired observations.
func (c *Collector) ObservationsFired() prometheus.Counter {
	return c.m.firedTotal
}

func recordScope(dependencies int) {
	if m := globalMetrics.Load(); m != nil {
		m.scopesTotal.Inc()
		m.scopeDependencies.Observe(float64(dependencies))
	}
}

func recordRegistration() {
	if m := globalMetrics.Load(); m != nil {
		m.registrationsTotal.Inc()
		m.activeRegistrations.Inc()
	}
}

func recordUnregistration() {
	if m := globalMetrics.Load(); m != nil {
		m.activeRegistrations.Dec()
	}
}

func recordCancellation() {
	if m := globalMetrics.Load(); m != nil {
		m.cancellationsTotal.Inc()
	}
}

func recordMutation(fired int) {
	if m := globalMetrics.Load(); m != nil {
		notified := "false"
		if fired > 0 {
			notified = "true"
		}
		m.mutationsTotal.WithLabelValues(notified).Inc()
	}
}

func recordFire() {
	if m := globalMetrics.Load(); m != nil {
		m.firedTotal.Inc()
	}
}

func recordCancel() {
	if m := globalMetrics.Load(); m != nil {
		m.cancelledTotal.Inc()
	}
}
