package pview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
)

// FlushingGroupWriter wraps group persistence, which emits no events, and
// flushes the owning set when the group is or was prefixed.
type FlushingGroupWriter struct {
	next    catalog.GroupWriter
	groups  catalog.GroupStore
	flusher *CacheFlusher
	helper  *FlushHelper
	logger  *slog.Logger
}

// NewFlushingGroupWriter decorates next. groups is used to recover the
// persisted name of a group saved without its original values.
func NewFlushingGroupWriter(next catalog.GroupWriter, groups catalog.GroupStore, flusher *CacheFlusher, helper *FlushHelper, logger *slog.Logger) *FlushingGroupWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlushingGroupWriter{next: next, groups: groups, flusher: flusher, helper: helper, logger: logger}
}

// SaveGroup saves the group and flushes its set afterwards if needed.
func (w *FlushingGroupWriter) SaveGroup(ctx context.Context, group *catalog.AttributeGroup) error {
	if err := w.loadOrig(ctx, group); err != nil {
		return err
	}
	if err := w.next.SaveGroup(ctx, group); err != nil {
		return err
	}
	w.flushIfPview(ctx, *group)
	return nil
}

// DeleteGroup deletes the group and flushes its set afterwards if needed.
func (w *FlushingGroupWriter) DeleteGroup(ctx context.Context, group catalog.AttributeGroup) error {
	if err := w.loadOrig(ctx, &group); err != nil {
		return err
	}
	if err := w.next.DeleteGroup(ctx, group); err != nil {
		return err
	}
	w.flushIfPview(ctx, group)
	return nil
}

func (w *FlushingGroupWriter) loadOrig(ctx context.Context, group *catalog.AttributeGroup) error {
	if group.ID <= 0 || group.OrigName != "" || group.OrigCode != "" || w.groups == nil {
		return nil
	}
	stored, err := w.groups.GroupByID(ctx, group.ID)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load group %d: %w", group.ID, err)
	}
	group.OrigName = stored.Name
	group.OrigCode = stored.Code
	if group.SetID <= 0 {
		group.SetID = stored.SetID
	}
	return nil
}

// flushIfPview never fails the write; errors are logged.
func (w *FlushingGroupWriter) flushIfPview(ctx context.Context, group catalog.AttributeGroup) {
	if group.SetID <= 0 {
		return
	}

	isPview, err := w.helper.IsPviewGroupName(ctx, group.DisplayName())
	if err == nil && !isPview {
		isPview, err = w.helper.IsPviewGroupName(ctx, group.OrigDisplayName())
	}
	if err == nil && isPview {
		err = w.flusher.flush(ctx, group.SetID, SourceAttributeGroup)
	}
	if err != nil {
		w.logger.Error("failed to flush caches after group write",
			slog.Int("group_id", group.ID),
			slog.Int("set_id", group.SetID),
			slog.Any("error", err))
	}
}

var _ catalog.GroupWriter = (*FlushingGroupWriter)(nil)
