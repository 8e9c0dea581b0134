package pview

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
)

// View is what a product page renderer needs: the groups to show, the block
// cache key parts and the identities to tag the rendered page with.
type View struct {
	config   *Config
	provider *GroupProvider
}

// NewView creates a View.
func NewView(config *Config, provider *GroupProvider) *View {
	return &View{config: config, provider: provider}
}

// Groups returns the display groups of product, or none when the feature is
// disabled for its store or the product is not persisted.
func (v *View) Groups(ctx context.Context, product catalog.Product) ([]DisplayGroup, error) {
	if product.ID <= 0 || !v.config.IsEnabled(product.StoreID) {
		return []DisplayGroup{}, nil
	}
	return v.provider.GroupsForProduct(ctx, product, &product.StoreID)
}

// CacheKeyInfo returns the values a rendered block varies by. pview_cfg
// fingerprints the prefix, the visibility flag and the sorted denylist.
func (v *View) CacheKeyInfo(product catalog.Product) (map[string]string, error) {
	info := map[string]string{}
	if product.ID <= 0 {
		return info, nil
	}
	info["product_id"] = strconv.Itoa(product.ID)
	info["store_id"] = strconv.Itoa(product.StoreID)
	info["attribute_set_id"] = strconv.Itoa(product.AttributeSetID)

	cfg, err := json.Marshal([]any{
		v.config.Prefix(product.StoreID),
		v.config.RequireVisibleOnFront(product.StoreID),
		sortedCopy(v.config.Denylist(product.StoreID)),
	})
	if err != nil {
		return nil, fmt.Errorf("encode view config: %w", err)
	}
	info["pview_cfg"] = shortHash(cfg)
	return info, nil
}

// Identities returns the page cache tags of a rendered product view.
func (v *View) Identities(product catalog.Product) []string {
	if product.ID <= 0 {
		return nil
	}
	ids := []string{catalog.ProductCacheTag + "_" + strconv.Itoa(product.ID)}
	if product.AttributeSetID > 0 {
		ids = append(ids, SetTag(product.AttributeSetID))
	}
	return ids
}
