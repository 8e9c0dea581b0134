package pview

import (
	"strings"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
)

// Configuration paths.
const (
	PathEnabled               = "catalog/product_view_attribute_groups/enabled"
	PathPrefix                = "catalog/product_view_attribute_groups/prefix"
	PathRequireVisibleOnFront = "catalog/product_view_attribute_groups/require_visible_on_front"
	PathDenylistCSV           = "catalog/product_view_attribute_groups/denylist_csv"
)

// DefaultPrefix is used when no prefix is configured at any scope.
const DefaultPrefix = "pview_"

// Config reads module settings for a store. It does not cache.
type Config struct {
	scope catalog.ScopeConfig
}

// NewConfig creates a Config over scope.
func NewConfig(scope catalog.ScopeConfig) *Config {
	return &Config{scope: scope}
}

// IsEnabled reports whether groups are shown in the store.
func (c *Config) IsEnabled(storeID int) bool {
	return c.scope.IsSetFlag(PathEnabled, storeID)
}

// Prefix returns the group name prefix. A configured empty value is returned
// as is.
func (c *Config) Prefix(storeID int) string {
	if v, ok := c.scope.Value(PathPrefix, storeID); ok {
		return v
	}
	return DefaultPrefix
}

// RequireVisibleOnFront reports whether attributes must be flagged visible on
// the storefront.
func (c *Config) RequireVisibleOnFront(storeID int) bool {
	return c.scope.IsSetFlag(PathRequireVisibleOnFront, storeID)
}

// Denylist returns the excluded attribute codes in configured order. Entries
// are trimmed, empty entries dropped and duplicates kept.
func (c *Config) Denylist(storeID int) []string {
	csv, ok := c.scope.Value(PathDenylistCSV, storeID)
	if !ok || strings.TrimSpace(csv) == "" {
		return []string{}
	}
	var codes []string
	for _, code := range strings.Split(csv, ",") {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
