package metrics

import (
	"time"
)

// Exporter defines the interface for cache metrics exporters
// This abstraction allows supporting multiple observability systems
type Exporter interface {
	// ExportStats publishes point-in-time cache gauges
	ExportStats(stats Stats, labels Labels) error

	// RecordCacheOperation records a single cache operation with its outcome and timing
	RecordCacheOperation(operation Operation, result Result, duration time.Duration, labels Labels) error

	// RecordEviction records an entry leaving the cache without an explicit clean
	RecordEviction(reason string, labels Labels) error

	// RecordFlush records an attribute-set flush and the event source that caused it
	RecordFlush(source string, labels Labels) error

	// Close shuts down the exporter and flushes any pending metrics
	Close() error
}

// Labels represents key-value pairs for metric labels/tags
type Labels map[string]string

// Stats interface defines the cache statistics that can be exported
// This allows the metrics package to work with any stats implementation
type Stats interface {
	Hits() int64
	Misses() int64
	Evictions() int64
	Invalidations() int64
	KeyCount() int64
	HitRate() float64
}

// Operation represents different cache operations for metrics
type Operation string

const (
	OperationLoad    Operation = "load"
	OperationSave    Operation = "save"
	OperationDelete  Operation = "delete"
	OperationClean   Operation = "clean"
	OperationCleanup Operation = "cleanup"
)

// Result represents the result of a cache operation
type Result string

const (
	ResultHit   Result = "hit"
	ResultMiss  Result = "miss"
	ResultOK    Result = "ok"
	ResultError Result = "error"
)

// MetricNames defines standard metric names used across exporters
type MetricNames struct {
	// Counters
	CacheOperationsTotal string
	CacheEvictionsTotal  string
	FlushesTotal         string

	// Histograms
	CacheOperationDuration string

	// Gauges
	CacheKeysCount string
	CacheHitRate   string
}

// DefaultMetricNames returns the default metric names with proper namespacing
func DefaultMetricNames() MetricNames {
	return MetricNames{
		CacheOperationsTotal:   "pview_cache_operations_total",
		CacheEvictionsTotal:    "pview_cache_evictions_total",
		FlushesTotal:           "pview_flushes_total",
		CacheOperationDuration: "pview_cache_operation_duration_seconds",
		CacheKeysCount:         "pview_cache_keys",
		CacheHitRate:           "pview_cache_hit_rate",
	}
}

// Config holds configuration for metrics exporters
type Config struct {
	// Labels are default labels applied to all metrics
	Labels Labels

	// MetricNames allows customizing metric names
	MetricNames MetricNames

	// IncludeDetailedTimings enables the operation duration histogram
	IncludeDetailedTimings bool
}

// NewDefaultConfig creates a default metrics configuration
func NewDefaultConfig() *Config {
	return &Config{
		Labels:                 make(Labels),
		MetricNames:            DefaultMetricNames(),
		IncludeDetailedTimings: false,
	}
}

// WithLabels adds default labels to all metrics
func (c *Config) WithLabels(labels Labels) *Config {
	if c.Labels == nil {
		c.Labels = make(Labels)
	}
	for k, v := range labels {
		c.Labels[k] = v
	}
	return c
}

// WithDetailedTimings enables detailed operation timing metrics
func (c *Config) WithDetailedTimings(enabled bool) *Config {
	c.IncludeDetailedTimings = enabled
	return c
}

// MultiExporter allows using multiple exporters simultaneously
type MultiExporter struct {
	exporters []Exporter
}

// NewMultiExporter creates an exporter that writes to multiple backends
func NewMultiExporter(exporters ...Exporter) *MultiExporter {
	return &MultiExporter{
		exporters: exporters,
	}
}

// ExportStats exports to all configured exporters
func (m *MultiExporter) ExportStats(stats Stats, labels Labels) error {
	return m.each(func(e Exporter) error { return e.ExportStats(stats, labels) })
}

// RecordCacheOperation records to all configured exporters
func (m *MultiExporter) RecordCacheOperation(operation Operation, result Result, duration time.Duration, labels Labels) error {
	return m.each(func(e Exporter) error { return e.RecordCacheOperation(operation, result, duration, labels) })
}

// RecordEviction records to all configured exporters
func (m *MultiExporter) RecordEviction(reason string, labels Labels) error {
	return m.each(func(e Exporter) error { return e.RecordEviction(reason, labels) })
}

// RecordFlush records to all configured exporters
func (m *MultiExporter) RecordFlush(source string, labels Labels) error {
	return m.each(func(e Exporter) error { return e.RecordFlush(source, labels) })
}

// Close closes all configured exporters
func (m *MultiExporter) Close() error {
	return m.each(func(e Exporter) error { return e.Close() })
}

func (m *MultiExporter) each(fn func(Exporter) error) error {
	for _, exporter := range m.exporters {
		if err := fn(exporter); err != nil {
			return err
		}
	}
	return nil
}

// NoOpExporter provides a no-op implementation for when metrics are disabled
type NoOpExporter struct{}

// NewNoOpExporter creates a no-op exporter
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

// ExportStats does nothing
func (n *NoOpExporter) ExportStats(Stats, Labels) error { return nil }

// RecordCacheOperation does nothing
func (n *NoOpExporter) RecordCacheOperation(Operation, Result, time.Duration, Labels) error {
	return nil
}

// RecordEviction does nothing
func (n *NoOpExporter) RecordEviction(string, Labels) error { return nil }

// RecordFlush does nothing
func (n *NoOpExporter) RecordFlush(string, Labels) error { return nil }

// Close does nothing
func (n *NoOpExporter) Close() error { return nil }

// Ensure interfaces are implemented
var (
	_ Exporter = (*MultiExporter)(nil)
	_ Exporter = (*NoOpExporter)(nil)
)
