package pview

import (
	"context"
	"log/slog"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
)

const (
	setObserverGuard    = "attribute_set"
	entityObserverGuard = "entity_attribute"
)

// AttributeSetObserver flushes a set's caches whenever the set is saved or
// deleted.
type AttributeSetObserver struct {
	flusher *CacheFlusher
	logger  *slog.Logger
}

// NewAttributeSetObserver creates the observer.
func NewAttributeSetObserver(flusher *CacheFlusher, logger *slog.Logger) *AttributeSetObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttributeSetObserver{flusher: flusher, logger: logger}
}

// Execute implements catalog.Observer.
func (o *AttributeSetObserver) Execute(ctx context.Context, event catalog.Event) {
	if event.Set == nil {
		return
	}
	setID := event.Set.ID
	scope := ScopeFromContext(ctx)
	if setID <= 0 || scope.wasFlushed(setObserverGuard, setID) {
		return
	}

	if err := o.flusher.flush(ctx, setID, SourceAttributeSet); err != nil {
		o.logger.Error("failed to flush attribute set caches",
			slog.String("event", event.Name),
			slog.Int("set_id", setID),
			slog.Any("error", err))
		return
	}
	scope.markFlushed(setObserverGuard, setID)
}

// EntityAttributeObserver flushes a set's caches when an attribute is moved
// into, out of or within a prefixed group.
type EntityAttributeObserver struct {
	flusher *CacheFlusher
	helper  *FlushHelper
	logger  *slog.Logger
}

// NewEntityAttributeObserver creates the observer.
func NewEntityAttributeObserver(flusher *CacheFlusher, helper *FlushHelper, logger *slog.Logger) *EntityAttributeObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &EntityAttributeObserver{flusher: flusher, helper: helper, logger: logger}
}

// Execute implements catalog.Observer.
func (o *EntityAttributeObserver) Execute(ctx context.Context, event catalog.Event) {
	ea := event.EntityAttribute
	if ea == nil {
		return
	}
	setID := ea.SetID
	scope := ScopeFromContext(ctx)
	if setID <= 0 || scope.wasFlushed(entityObserverGuard, setID) {
		return
	}

	relevant, err := o.isRelevant(ctx, ea)
	if err != nil {
		o.logger.Error("failed to check attribute group prefix",
			slog.String("event", event.Name),
			slog.Int("set_id", setID),
			slog.Any("error", err))
		return
	}
	if !relevant {
		return
	}

	if err := o.flusher.flush(ctx, setID, SourceEntityAttribute); err != nil {
		o.logger.Error("failed to flush attribute set caches",
			slog.String("event", event.Name),
			slog.Int("set_id", setID),
			slog.Any("error", err))
		return
	}
	scope.markFlushed(entityObserverGuard, setID)
}

func (o *EntityAttributeObserver) isRelevant(ctx context.Context, ea *catalog.EntityAttribute) (bool, error) {
	isNew, err := o.helper.GroupIDIsPview(ctx, ea.GroupID)
	if err != nil || isNew {
		return isNew, err
	}
	return o.helper.GroupIDIsPview(ctx, ea.OrigGroupID)
}

// RegisterObservers subscribes the observers to the catalog mutation events.
func RegisterObservers(d catalog.EventDispatcher, sets *AttributeSetObserver, assignments *EntityAttributeObserver) {
	d.Subscribe(catalog.EventAttributeSetSaveAfter, sets)
	d.Subscribe(catalog.EventAttributeSetDeleteAfter, sets)
	d.Subscribe(catalog.EventEntityAttributeSaveAfter, assignments)
	d.Subscribe(catalog.EventEntityAttributeDeleteAfter, assignments)
}
