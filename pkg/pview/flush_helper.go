package pview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
)

// FlushHelper decides whether a group is a prefixed group under any store's
// configuration. Lookups are memoized in the request scope of the context.
type FlushHelper struct {
	config *Config
	stores catalog.StoreLister
	groups catalog.GroupStore
}

// NewFlushHelper creates a FlushHelper.
func NewFlushHelper(config *Config, stores catalog.StoreLister, groups catalog.GroupStore) *FlushHelper {
	return &FlushHelper{config: config, stores: stores, groups: groups}
}

// AllPrefixesLower returns the lowercased prefixes of the default scope and
// every store, each with its hyphen variant, plus pview_ and pview-.
func (h *FlushHelper) AllPrefixesLower(ctx context.Context) (map[string]struct{}, error) {
	scope := ScopeFromContext(ctx)
	if p, ok := scope.cachedPrefixes(); ok {
		return p, nil
	}

	stores, err := h.stores.Stores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	storeIDs := []int{catalog.DefaultStoreID}
	for _, s := range stores {
		storeIDs = append(storeIDs, s.ID)
	}

	prefixes := make(map[string]struct{})
	for _, id := range storeIDs {
		p := h.config.Prefix(id)
		if p == "" {
			continue
		}
		p = strings.ToLower(p)
		prefixes[p] = struct{}{}
		prefixes[strings.ReplaceAll(p, "_", "-")] = struct{}{}
	}
	prefixes["pview_"] = struct{}{}
	prefixes["pview-"] = struct{}{}

	scope.storePrefixes(prefixes)
	return prefixes, nil
}

// IsPviewGroupName reports whether the trimmed, lowercased name starts with
// any known prefix.
func (h *FlushHelper) IsPviewGroupName(ctx context.Context, name string) (bool, error) {
	prefixes, err := h.AllPrefixesLower(ctx)
	if err != nil {
		return false, err
	}
	name = strings.ToLower(strings.TrimSpace(name))
	for p := range prefixes {
		if p != "" && strings.HasPrefix(name, p) {
			return true, nil
		}
	}
	return false, nil
}

// GroupIDIsPview reports whether the group with groupID currently has a
// prefixed name. Unknown groups and ids <= 0 are not prefixed.
func (h *FlushHelper) GroupIDIsPview(ctx context.Context, groupID int) (bool, error) {
	if groupID <= 0 {
		return false, nil
	}
	scope := ScopeFromContext(ctx)
	if v, ok := scope.cachedGroup(groupID); ok {
		return v, nil
	}

	var name string
	group, err := h.groups.GroupByID(ctx, groupID)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
	case err != nil:
		return false, fmt.Errorf("load group %d: %w", groupID, err)
	default:
		name = group.DisplayName()
	}

	isPview, err := h.IsPviewGroupName(ctx, name)
	if err != nil {
		return false, err
	}
	scope.storeGroup(groupID, isPview)
	return isPview, nil
}

// AttributeSetHasPviewGroups reports whether any group of setID is prefixed.
func (h *FlushHelper) AttributeSetHasPviewGroups(ctx context.Context, setID int) (bool, error) {
	if setID <= 0 {
		return false, nil
	}
	groups, err := h.groups.GroupsBySet(ctx, setID)
	if err != nil {
		return false, fmt.Errorf("list groups of set %d: %w", setID, err)
	}
	for _, g := range groups {
		ok, err := h.IsPviewGroupName(ctx, g.DisplayName())
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
