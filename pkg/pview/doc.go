// Package pview exposes prefix-selected attribute groups on product pages.
//
// Attribute groups whose names start with a configurable prefix (pview_ by
// default) are collected per attribute set into a structure of group titles
// and attribute labels. The structure is independent of any product, so it
// is cached per attribute set, store and configuration fingerprint and
// tagged for invalidation:
//
//	provider := pview.NewGroupProvider(cfg, groups, attributes, resolver, cache)
//	groups, err := provider.GroupsForProduct(ctx, product, nil)
//
// Catalog mutations reach the cache through observers subscribed on a
// catalog.EventDispatcher and through FlushingGroupWriter, which wraps the
// group persistence call. Both funnel into CacheFlusher, which cleans the
// structure cache and the page cache by the per-set tag.
//
// Memoized lookups made while deciding whether a mutation is relevant live in
// a RequestScope installed with WithRequestScope, one per request.
package pview
