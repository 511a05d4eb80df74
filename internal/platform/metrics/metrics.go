package metrics

import (
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricLogger records values for one named metric. Dimension values are
// given in the order the dimensions were declared.
type MetricLogger interface {
	LogMetric(value float64, dimensionValues ...string)
}

// MetricLoggerFactory creates named, dimensioned metric loggers.
// CreateMetricLogger is for measured values such as durations;
// CreateCounterLogger is for occurrences, where only the running total
// matters.
type MetricLoggerFactory interface {
	CreateMetricLogger(name string, dimensions ...string) MetricLogger
	CreateCounterLogger(name string, dimensions ...string) MetricLogger
}

type kind int

const (
	kindHistogram kind = iota
	kindCounter
)

// Factory creates Prometheus-backed metric loggers. Each name maps to one
// histogram or counter vector.
type Factory struct {
	namespace string
	factory   promauto.Factory

	mu      sync.Mutex
	loggers map[string]*vecLogger
}

// New creates a factory registering metrics on reg under namespace.
func New(reg prometheus.Registerer, namespace string) *Factory {
	return &Factory{
		namespace: namespace,
		factory:   promauto.With(reg),
		loggers:   make(map[string]*vecLogger),
	}
}

// CreateMetricLogger returns a histogram-backed logger for name, registering
// it on first use. Asking again for the same name with different dimensions
// or as a counter yields a logger that drops its values.
func (f *Factory) CreateMetricLogger(name string, dimensions ...string) MetricLogger {
	return f.logger(kindHistogram, name, dimensions, func() *vecLogger {
		vec := f.factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: f.namespace,
			Name:      name,
			Help:      "Values logged for " + name,
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, dimensions)
		return &vecLogger{log: func(value float64, labels []string) {
			obs, err := vec.GetMetricWithLabelValues(labels...)
			if err != nil {
				return
			}
			obs.Observe(value)
		}}
	})
}

// CreateCounterLogger returns a counter-backed logger for name. Each logged
// value is added to the total; negative values are dropped.
func (f *Factory) CreateCounterLogger(name string, dimensions ...string) MetricLogger {
	return f.logger(kindCounter, name, dimensions, func() *vecLogger {
		vec := f.factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: f.namespace,
			Name:      name,
			Help:      "Total of values logged for " + name,
		}, dimensions)
		return &vecLogger{log: func(value float64, labels []string) {
			if value < 0 {
				return
			}
			c, err := vec.GetMetricWithLabelValues(labels...)
			if err != nil {
				return
			}
			c.Add(value)
		}}
	})
}

func (f *Factory) logger(k kind, name string, dimensions []string, create func() *vecLogger) MetricLogger {
	f.mu.Lock()
	defer f.mu.Unlock()

	if existing, ok := f.loggers[name]; ok {
		if existing.kind != k || !slices.Equal(existing.dimensions, dimensions) {
			return Nop{}
		}
		return existing
	}

	l := create()
	l.kind = k
	l.dimensions = slices.Clone(dimensions)
	f.loggers[name] = l
	return l
}

type vecLogger struct {
	kind       kind
	dimensions []string
	log        func(value float64, labels []string)
}

// LogMetric records value. Calls with the wrong number of dimension values
// are dropped.
func (l *vecLogger) LogMetric(value float64, dimensionValues ...string) {
	l.log(value, dimensionValues)
}

// Nop discards every value.
type Nop struct{}

// LogMetric implements MetricLogger.
func (Nop) LogMetric(float64, ...string) {}

// NopFactory hands out Nop loggers.
type NopFactory struct{}

// CreateMetricLogger implements MetricLoggerFactory.
func (NopFactory) CreateMetricLogger(string, ...string) MetricLogger {
	return Nop{}
}

// CreateCounterLogger implements MetricLoggerFactory.
func (NopFactory) CreateCounterLogger(string, ...string) MetricLogger {
	return Nop{}
}
