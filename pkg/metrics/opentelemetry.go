package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OpenTelemetryExporter implements the Exporter interface for OpenTelemetry metrics
type OpenTelemetryExporter struct {
	config *Config
	meter  metric.Meter
	ctx    context.Context

	operationsCounter metric.Int64Counter
	evictionsCounter  metric.Int64Counter
	flushesCounter    metric.Int64Counter

	operationDuration metric.Float64Histogram

	keysGauge    metric.Int64Gauge
	hitRateGauge metric.Float64Gauge
}

// OpenTelemetryConfig holds OpenTelemetry-specific configuration
type OpenTelemetryConfig struct {
	// Meter is the OpenTelemetry meter to use
	Meter metric.Meter

	// Context is the context to use for metric operations
	Context context.Context
}

// NewOpenTelemetryExporter creates a new OpenTelemetry metrics exporter
func NewOpenTelemetryExporter(config *Config, otelConfig *OpenTelemetryConfig) (*OpenTelemetryExporter, error) {
	if config == nil {
		config = NewDefaultConfig()
	}

	if otelConfig == nil {
		return nil, fmt.Errorf("OpenTelemetry configuration is required")
	}

	if otelConfig.Meter == nil {
		return nil, fmt.Errorf("OpenTelemetry meter is required")
	}

	ctx := otelConfig.Context
	if ctx == nil {
		ctx = context.Background()
	}

	exporter := &OpenTelemetryExporter{
		config: config,
		meter:  otelConfig.Meter,
		ctx:    ctx,
	}

	if err := exporter.createInstruments(); err != nil {
		return nil, fmt.Errorf("failed to create standard metrics: %w", err)
	}

	return exporter, nil
}

func (o *OpenTelemetryExporter) createInstruments() error {
	names := o.config.MetricNames
	var err error

	o.operationsCounter, err = o.meter.Int64Counter(
		names.CacheOperationsTotal,
		metric.WithDescription("Total number of cache operations by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create operations counter: %w", err)
	}

	o.evictionsCounter, err = o.meter.Int64Counter(
		names.CacheEvictionsTotal,
		metric.WithDescription("Total number of cache evictions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create evictions counter: %w", err)
	}

	o.flushesCounter, err = o.meter.Int64Counter(
		names.FlushesTotal,
		metric.WithDescription("Total number of attribute set flushes"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create flushes counter: %w", err)
	}

	if o.config.IncludeDetailedTimings {
		o.operationDuration, err = o.meter.Float64Histogram(
			names.CacheOperationDuration,
			metric.WithDescription("Cache operation duration"),
			metric.WithUnit("s"),
		)
		if err != nil {
			return fmt.Errorf("failed to create operation duration histogram: %w", err)
		}
	}

	o.keysGauge, err = o.meter.Int64Gauge(
		names.CacheKeysCount,
		metric.WithDescription("Current number of keys in cache"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create keys gauge: %w", err)
	}

	o.hitRateGauge, err = o.meter.Float64Gauge(
		names.CacheHitRate,
		metric.WithDescription("Cache hit rate as a percentage"),
		metric.WithUnit("%"),
	)
	if err != nil {
		return fmt.Errorf("failed to create hit rate gauge: %w", err)
	}

	return nil
}

// ExportStats records the key count and hit rate gauges
func (o *OpenTelemetryExporter) ExportStats(stats Stats, labels Labels) error {
	attrs := metric.WithAttributes(o.convertLabels(labels)...)
	o.keysGauge.Record(o.ctx, stats.KeyCount(), attrs)
	o.hitRateGauge.Record(o.ctx, stats.HitRate(), attrs)
	return nil
}

// RecordCacheOperation records a cache operation with timing
func (o *OpenTelemetryExporter) RecordCacheOperation(operation Operation, result Result, duration time.Duration, labels Labels) error {
	attrs := append(o.convertLabels(labels), attribute.String("operation", string(operation)))

	o.operationsCounter.Add(o.ctx, 1,
		metric.WithAttributes(append(attrs, attribute.String("result", string(result)))...))

	if o.operationDuration != nil {
		o.operationDuration.Record(o.ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	}
	return nil
}

// RecordEviction increments the eviction counter
func (o *OpenTelemetryExporter) RecordEviction(reason string, labels Labels) error {
	attrs := append(o.convertLabels(labels), attribute.String("reason", reason))
	o.evictionsCounter.Add(o.ctx, 1, metric.WithAttributes(attrs...))
	return nil
}

// RecordFlush increments the flush counter
func (o *OpenTelemetryExporter) RecordFlush(source string, labels Labels) error {
	attrs := append(o.convertLabels(labels), attribute.String("source", source))
	o.flushesCounter.Add(o.ctx, 1, metric.WithAttributes(attrs...))
	return nil
}

// Close shuts down the exporter
func (o *OpenTelemetryExporter) Close() error {
	// the meter provider owns the pipeline
	return nil
}

func (o *OpenTelemetryExporter) convertLabels(labels Labels) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels)+len(o.config.Labels)+1)

	for k, v := range o.config.Labels {
		attrs = append(attrs, attribute.String(k, v))
	}
	for k, v := range labels {
		attrs = append(attrs, attribute.String(k, v))
	}

	return attrs
}

// Ensure interface is implemented
var _ Exporter = (*OpenTelemetryExporter)(nil)
