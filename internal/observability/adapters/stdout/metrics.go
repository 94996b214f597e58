package stdout

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"videoforge/internal/ports"
)

// Metrics implements ports.Metrics using stdout
type Metrics struct {
	tags   map[string]string
	logger *log.Logger
	mu     *sync.RWMutex

	// Store metrics in memory for debugging/testing
	counters   map[string]int64
	histograms map[string][]float64
	gauges     map[string]float64
}

// NewMetrics creates a new stdout metrics instance
func NewMetrics() ports.Metrics {
	return &Metrics{
		tags:       make(map[string]string),
		logger:     log.New(os.Stdout, "", 0),
		mu:         &sync.RWMutex{},
		counters:   make(map[string]int64),
		histograms: make(map[string][]float64),
		gauges:     make(map[string]float64),
	}
}

// IncrementCounter increments a counter metric
func (m *Metrics) IncrementCounter(name string, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.buildKey(name, tags)
	m.counters[key]++

	m.logMetric("COUNTER", name, float64(m.counters[key]), tags)
}

// RecordHistogram records a histogram value
func (m *Metrics) RecordHistogram(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.buildKey(name, tags)
	m.histograms[key] = append(m.histograms[key], value)

	m.logMetric("HISTOGRAM", name, value, tags)
}

// RecordGauge records a gauge value
func (m *Metrics) RecordGauge(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.buildKey(name, tags)
	m.gauges[key] = value

	m.logMetric("GAUGE", name, value, tags)
}

// WithTags returns a new Metrics instance with additional tags
func (m *Metrics) WithTags(tags map[string]string) ports.Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	newTags := make(map[string]string)
	for k, v := range m.tags {
		newTags[k] = v
	}
	for k, v := range tags {
		newTags[k] = v
	}

	return &Metrics{
		tags:       newTags,
		logger:     m.logger,
		mu:         m.mu,
		counters:   m.counters,   // Share the same storage
		histograms: m.histograms, // Share the same storage
		gauges:     m.gauges,     // Share the same storage
	}
}

// GetCounter returns the current value of a counter (useful for testing)
func (m *Metrics) GetCounter(name string, tags map[string]string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.counters[m.buildKey(name, tags)]
}

// GetHistogram returns all values recorded for a histogram (useful for testing)
func (m *Metrics) GetHistogram(name string, tags map[string]string) []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := m.histograms[m.buildKey(name, tags)]
	result := make([]float64, len(values))
	copy(result, values)
	return result
}

// Reset clears all metrics (useful for testing)
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters = make(map[string]int64)
	m.histograms = make(map[string][]float64)
	m.gauges = make(map[string]float64)
}

// buildKey creates a unique key for a metric with tags
func (m *Metrics) buildKey(name string, tags map[string]string) string {
	allTags := m.combineTags(tags)

	// Build sorted tag string for consistent keys
	var tagPairs []string
	for k, v := range allTags {
		tagPairs = append(tagPairs, fmt.Sprintf("%s:%s", k, v))
	}
	sort.Strings(tagPairs)

	if len(tagPairs) > 0 {
		return fmt.Sprintf("%s{%s}", name, strings.Join(tagPairs, ","))
	}
	return name
}

func (m *Metrics) combineTags(tags map[string]string) map[string]string {
	allTags := make(map[string]string)
	for k, v := range m.tags {
		allTags[k] = v
	}
	for k, v := range tags {
		allTags[k] = v
	}
	return allTags
}

// logMetric logs a metric to stdout
func (m *Metrics) logMetric(metricType string, name string, value float64, tags map[string]string) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	allTags := m.combineTags(tags)

	tagStr := ""
	if len(allTags) > 0 {
		var tagPairs []string
		for k, v := range allTags {
			tagPairs = append(tagPairs, fmt.Sprintf("%s=%s", k, v))
		}
		sort.Strings(tagPairs)
		tagStr = " " + strings.Join(tagPairs, " ")
	}

	m.logger.Printf("%s [METRIC] %s %s=%.2f%s", timestamp, metricType, name, value, tagStr)
}
