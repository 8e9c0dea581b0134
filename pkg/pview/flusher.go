package pview

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vnykmshr/pviewgroups/pkg/metrics"
	"github.com/vnykmshr/pviewgroups/pkg/tagcache"
)

// Flush sources reported to metrics.
const (
	SourceManual          = "manual"
	SourceAttributeSet    = "attribute_set"
	SourceEntityAttribute = "entity_attribute"
	SourceAttributeGroup  = "attribute_group"
)

// PageCache is the full-page cache holding rendered product views.
type PageCache interface {
	CleanMatching(mode tagcache.CleanMode, tags []string) error
}

// CacheFlusher is the single invalidation entry point: it cleans a set's tag
// from the structure cache and the page cache.
type CacheFlusher struct {
	structure StructureCache
	page      PageCache
	exporter  metrics.Exporter
	logger    *slog.Logger
}

// FlusherOption configures a CacheFlusher.
type FlusherOption func(*CacheFlusher)

// WithFlushMetrics records every flush on exporter.
func WithFlushMetrics(exporter metrics.Exporter) FlusherOption {
	return func(f *CacheFlusher) { f.exporter = exporter }
}

// WithFlushLogger sets the flusher logger.
func WithFlushLogger(l *slog.Logger) FlusherOption {
	return func(f *CacheFlusher) { f.logger = l }
}

// NewCacheFlusher creates a flusher. page may be nil when no page cache is in
// front of the product views.
func NewCacheFlusher(structure StructureCache, page PageCache, opts ...FlusherOption) *CacheFlusher {
	f := &CacheFlusher{
		structure: structure,
		page:      page,
		exporter:  metrics.NewNoOpExporter(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FlushByAttributeSetID cleans everything tagged for setID. It does nothing
// for setID <= 0.
func (f *CacheFlusher) FlushByAttributeSetID(ctx context.Context, setID int) error {
	return f.flush(ctx, setID, SourceManual)
}

func (f *CacheFlusher) flush(ctx context.Context, setID int, source string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tags := CacheTagsForAttributeSet(setID)
	if len(tags) == 0 {
		return nil
	}

	if err := f.structure.Clean(tags); err != nil {
		return fmt.Errorf("clean structure cache for set %d: %w", setID, err)
	}
	if f.page != nil {
		if err := f.page.CleanMatching(tagcache.CleanMatchingAnyTag, tags); err != nil {
			return fmt.Errorf("clean page cache for set %d: %w", setID, err)
		}
	}

	f.logger.Debug("flushed attribute set caches",
		slog.Int("set_id", setID),
		slog.String("source", source))
	_ = f.exporter.RecordFlush(source, nil) //nolint:errcheck // metrics are best effort
	return nil
}
