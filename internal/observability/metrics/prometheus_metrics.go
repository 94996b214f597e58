// Package metrics provides a Prometheus-backed implementation of the
// metrics port. Metric names are normalized to Prometheus conventions
// with the service name as a prefix.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"videoforge/internal/ports"
)

// PrometheusMetrics implements the Metrics interface using the Prometheus
// client library. Vectors are registered lazily on first use of a metric
// name; the tag keys of that first call become the vector's label set, so
// a given metric name must always be recorded with the same tag keys.
type PrometheusMetrics struct {
	mu          *sync.Mutex
	serviceName string
	tags        map[string]string

	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
}

// New creates a new PrometheusMetrics instance. All metrics register with
// the default Prometheus registry, so they are exposed by promhttp.Handler.
func New(serviceName string) *PrometheusMetrics {
	return &PrometheusMetrics{
		mu:          &sync.Mutex{},
		serviceName: serviceName,
		tags:        make(map[string]string),
		counters:    make(map[string]*prometheus.CounterVec),
		histograms:  make(map[string]*prometheus.HistogramVec),
		gauges:      make(map[string]*prometheus.GaugeVec),
	}
}

// IncrementCounter increments a counter metric by 1
func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	labels := m.combineTags(tags)

	m.mu.Lock()
	defer m.mu.Unlock()

	vec, ok := m.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: m.metricName(name),
				Help: fmt.Sprintf("Counter %s for %s", name, m.serviceName),
			},
			labelKeys(labels),
		)
		prometheus.MustRegister(vec)
		m.counters[name] = vec
	}

	vec.With(labels).Inc()
}

// RecordHistogram records a value in a histogram distribution
func (m *PrometheusMetrics) RecordHistogram(name string, value float64, tags map[string]string) {
	labels := m.combineTags(tags)

	m.mu.Lock()
	defer m.mu.Unlock()

	vec, ok := m.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    m.metricName(name),
				Help:    fmt.Sprintf("Histogram %s for %s", name, m.serviceName),
				Buckets: prometheus.DefBuckets,
			},
			labelKeys(labels),
		)
		prometheus.MustRegister(vec)
		m.histograms[name] = vec
	}

	vec.With(labels).Observe(value)
}

// RecordGauge records a point-in-time measurement
func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	labels := m.combineTags(tags)

	m.mu.Lock()
	defer m.mu.Unlock()

	vec, ok := m.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: m.metricName(name),
				Help: fmt.Sprintf("Gauge %s for %s", name, m.serviceName),
			},
			labelKeys(labels),
		)
		prometheus.MustRegister(vec)
		m.gauges[name] = vec
	}

	vec.With(labels).Set(value)
}

// WithTags returns a new Metrics instance with additional default tags.
// The underlying vectors are shared so metric registration stays unique.
func (m *PrometheusMetrics) WithTags(tags map[string]string) ports.Metrics {
	newTags := make(map[string]string)
	for k, v := range m.tags {
		newTags[k] = v
	}
	for k, v := range tags {
		newTags[k] = v
	}

	return &PrometheusMetrics{
		mu:          m.mu,
		serviceName: m.serviceName,
		tags:        newTags,
		counters:    m.counters,
		histograms:  m.histograms,
		gauges:      m.gauges,
	}
}

func (m *PrometheusMetrics) combineTags(tags map[string]string) map[string]string {
	all := make(map[string]string)
	for k, v := range m.tags {
		all[k] = v
	}
	for k, v := range tags {
		all[k] = v
	}
	return all
}

// metricName converts a dotted metric name into a prefixed Prometheus name
func (m *PrometheusMetrics) metricName(name string) string {
	return fmt.Sprintf("%s_%s", m.serviceName, strings.ReplaceAll(name, ".", "_"))
}

func labelKeys(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
