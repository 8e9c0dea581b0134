package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusExporter implements the Exporter interface for Prometheus metrics
type PrometheusExporter struct {
	config *Config

	// Counters
	operationsTotal *prometheus.CounterVec
	evictionsTotal  *prometheus.CounterVec
	flushesTotal    *prometheus.CounterVec

	// Histograms
	operationDuration *prometheus.HistogramVec

	// Gauges
	keysCount *prometheus.GaugeVec
	hitRate   *prometheus.GaugeVec
}

// PrometheusConfig holds Prometheus-specific configuration
type PrometheusConfig struct {
	// Registry is the Prometheus registry to use (optional, uses default if nil)
	Registry prometheus.Registerer

	// DurationBuckets for the operation duration histogram
	DurationBuckets []float64
}

// NewPrometheusExporter creates a new Prometheus metrics exporter
func NewPrometheusExporter(config *Config, promConfig *PrometheusConfig) (*PrometheusExporter, error) {
	if config == nil {
		config = NewDefaultConfig()
	}

	if promConfig == nil {
		promConfig = &PrometheusConfig{}
	}

	registry := promConfig.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	durationBuckets := promConfig.DurationBuckets
	if durationBuckets == nil {
		durationBuckets = []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1}
	}

	constLabels := prometheus.Labels{}
	for k, v := range config.Labels {
		constLabels[k] = v
	}

	names := config.MetricNames
	p := &PrometheusExporter{
		config: config,
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        names.CacheOperationsTotal,
			Help:        "Total number of cache operations by outcome",
			ConstLabels: constLabels,
		}, []string{"cache_name", "operation", "result"}),
		evictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        names.CacheEvictionsTotal,
			Help:        "Total number of cache evictions",
			ConstLabels: constLabels,
		}, []string{"cache_name", "reason"}),
		flushesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        names.FlushesTotal,
			Help:        "Total number of attribute set flushes",
			ConstLabels: constLabels,
		}, []string{"source"}),
		keysCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        names.CacheKeysCount,
			Help:        "Current number of keys in cache",
			ConstLabels: constLabels,
		}, []string{"cache_name"}),
		hitRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        names.CacheHitRate,
			Help:        "Cache hit rate as a percentage",
			ConstLabels: constLabels,
		}, []string{"cache_name"}),
	}

	collectors := []prometheus.Collector{p.operationsTotal, p.evictionsTotal, p.flushesTotal, p.keysCount, p.hitRate}

	if config.IncludeDetailedTimings {
		p.operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        names.CacheOperationDuration,
			Help:        "Cache operation duration in seconds",
			ConstLabels: constLabels,
			Buckets:     durationBuckets,
		}, []string{"cache_name", "operation"})
		collectors = append(collectors, p.operationDuration)
	}

	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// ExportStats sets the key count and hit rate gauges
func (p *PrometheusExporter) ExportStats(stats Stats, labels Labels) error {
	name := cacheName(labels)
	p.keysCount.WithLabelValues(name).Set(float64(stats.KeyCount()))
	p.hitRate.WithLabelValues(name).Set(stats.HitRate())
	return nil
}

// RecordCacheOperation records a cache operation with timing
func (p *PrometheusExporter) RecordCacheOperation(operation Operation, result Result, duration time.Duration, labels Labels) error {
	name := cacheName(labels)
	p.operationsTotal.WithLabelValues(name, string(operation), string(result)).Inc()

	if p.operationDuration != nil {
		p.operationDuration.WithLabelValues(name, string(operation)).Observe(duration.Seconds())
	}
	return nil
}

// RecordEviction increments the eviction counter
func (p *PrometheusExporter) RecordEviction(reason string, labels Labels) error {
	p.evictionsTotal.WithLabelValues(cacheName(labels), reason).Inc()
	return nil
}

// RecordFlush increments the flush counter
func (p *PrometheusExporter) RecordFlush(source string, _ Labels) error {
	p.flushesTotal.WithLabelValues(source).Inc()
	return nil
}

// Close shuts down the exporter
func (p *PrometheusExporter) Close() error {
	// Prometheus metrics don't need explicit cleanup
	return nil
}

func cacheName(labels Labels) string {
	if name, ok := labels["cache_name"]; ok && name != "" {
		return name
	}
	return "default"
}

// Ensure interface is implemented
var _ Exporter = (*PrometheusExporter)(nil)
