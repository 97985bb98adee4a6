package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Bucket presets shared by components.
var (
	// DurationBuckets covers in-memory work measured in seconds, 10µs to ~5s.
	DurationBuckets = prometheus.ExponentialBuckets(0.00001, 4, 10)

	// SizeBuckets covers payload sizes in bytes, 16B to 16MB.
	SizeBuckets = prometheus.ExponentialBuckets(16, 4, 11)

	// CountBuckets covers small item counts.
	CountBuckets = []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000}
)

// ComponentRegistry creates collectors that share a namespace and
// subsystem and registers them with a single prometheus.Registerer.
type ComponentRegistry struct {
	namespace string
	subsystem string
	factory   promauto.Factory
}

// NewComponentRegistry registers with the default Prometheus registry.
func NewComponentRegistry(namespace, subsystem string) *ComponentRegistry {
	return NewComponentRegistryWith(prometheus.DefaultRegisterer, namespace, subsystem)
}

// NewComponentRegistryWith registers with reg. Tests pass a fresh
// prometheus.NewRegistry() so collectors do not collide.
func NewComponentRegistryWith(reg prometheus.Registerer, namespace, subsystem string) *ComponentRegistry {
	return &ComponentRegistry{
		namespace: namespace,
		subsystem: subsystem,
		factory:   promauto.With(reg),
	}
}

func (r *ComponentRegistry) NewCounter(opts prometheus.CounterOpts) prometheus.Counter {
	opts.Namespace, opts.Subsystem = r.namespace, r.subsystem
	return r.factory.NewCounter(opts)
}

func (r *ComponentRegistry) NewCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	opts.Namespace, opts.Subsystem = r.namespace, r.subsystem
	return r.factory.NewCounterVec(opts, labels)
}

func (r *ComponentRegistry) NewGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	opts.Namespace, opts.Subsystem = r.namespace, r.subsystem
	return r.factory.NewGauge(opts)
}

func (r *ComponentRegistry) NewHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	opts.Namespace, opts.Subsystem = r.namespace, r.subsystem
	return r.factory.NewHistogram(opts)
}

func (r *ComponentRegistry) NewHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	opts.Namespace, opts.Subsystem = r.namespace, r.subsystem
	return r.factory.NewHistogramVec(opts, labels)
}
