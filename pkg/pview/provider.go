package pview

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
)

// ProductEntityTypeCode is the entity type whose groups are displayed.
const ProductEntityTypeCode = "catalog_product"

// StructureCache is the tagged cache holding serialized structures.
type StructureCache interface {
	Load(key string) ([]byte, bool)
	Save(data []byte, key string, tags []string, ttl time.Duration) error
	Clean(tags []string) error
}

// GroupProvider builds the display groups of a product.
type GroupProvider struct {
	config     *Config
	groups     catalog.GroupStore
	attributes catalog.AttributeStore
	resolver   *AttributeValueResolver
	cache      StructureCache
	serializer Serializer
	titles     TitleFormatter
	logger     *slog.Logger

	sortDenylistKey bool
}

// ProviderOption configures a GroupProvider.
type ProviderOption func(*GroupProvider)

// WithSerializer replaces the CBOR serializer.
func WithSerializer(s Serializer) ProviderOption {
	return func(p *GroupProvider) { p.serializer = s }
}

// WithLogger sets the logger used for degraded cache reads and writes.
func WithLogger(l *slog.Logger) ProviderOption {
	return func(p *GroupProvider) { p.logger = l }
}

// WithSortedDenylistKey sorts the denylist before hashing it into the
// structure key, so lists that differ only in order share an entry.
func WithSortedDenylistKey(enabled bool) ProviderOption {
	return func(p *GroupProvider) { p.sortDenylistKey = enabled }
}

// NewGroupProvider wires a provider.
func NewGroupProvider(
	config *Config,
	groups catalog.GroupStore,
	attributes catalog.AttributeStore,
	resolver *AttributeValueResolver,
	cache StructureCache,
	opts ...ProviderOption,
) (*GroupProvider, error) {
	p := &GroupProvider{
		config:     config,
		groups:     groups,
		attributes: attributes,
		resolver:   resolver,
		cache:      cache,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.serializer == nil {
		s, err := NewCBORSerializer()
		if err != nil {
			return nil, err
		}
		p.serializer = s
	}
	return p, nil
}

// GroupsForProduct returns the groups of product that have at least one
// attribute value, ordered by group sort order. storeID defaults to the
// product's store.
func (p *GroupProvider) GroupsForProduct(ctx context.Context, product catalog.Product, storeID *int) ([]DisplayGroup, error) {
	store := product.StoreID
	if storeID != nil {
		store = *storeID
	}
	setID := product.AttributeSetID
	if setID <= 0 {
		return []DisplayGroup{}, nil
	}

	entityTypeID, ok, err := p.attributes.EntityTypeID(ctx, ProductEntityTypeCode)
	if err != nil {
		return nil, fmt.Errorf("resolve entity type: %w", err)
	}
	if !ok {
		return []DisplayGroup{}, nil
	}

	structure, err := p.Structure(ctx, entityTypeID, setID, store)
	if err != nil {
		return nil, err
	}
	return p.resolve(ctx, product, structure, entityTypeID, store)
}

// Structure returns the cached structure of setID for store, building and
// caching it on a miss. An entry that fails to decode yields an empty
// structure and is left for the next rebuild.
func (p *GroupProvider) Structure(ctx context.Context, entityTypeID, setID, storeID int) (Structure, error) {
	prefix := p.config.Prefix(storeID)
	requireVisible := p.config.RequireVisibleOnFront(storeID)
	denylist := p.config.Denylist(storeID)

	keyDenylist := denylist
	if p.sortDenylistKey {
		keyDenylist = sortedCopy(denylist)
	}
	key := StructureKey(setID, storeID, prefix, requireVisible, keyDenylist)

	if data, found := p.cache.Load(key); found {
		structure, err := p.serializer.Unserialize(data)
		if err != nil {
			p.logger.Warn("discarding undecodable group structure",
				slog.String("key", key),
				slog.Any("error", err))
			return Structure{}, nil
		}
		return structure, nil
	}

	structure, err := p.buildStructure(ctx, entityTypeID, setID, storeID, prefix, requireVisible, denylist)
	if err != nil {
		return nil, err
	}

	data, err := p.serializer.Serialize(structure)
	if err != nil {
		return nil, fmt.Errorf("serialize group structure: %w", err)
	}
	tags := []string{CacheTag, SetTag(setID)}
	if err := p.cache.Save(data, key, tags, CacheLifetime); err != nil {
		p.logger.Warn("failed to cache group structure",
			slog.String("key", key),
			slog.Any("error", err))
	}
	return structure, nil
}

func (p *GroupProvider) buildStructure(
	ctx context.Context,
	entityTypeID, setID, storeID int,
	prefix string,
	requireVisible bool,
	denylist []string,
) (Structure, error) {
	groups, err := p.groups.GroupsBySet(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("list groups of set %d: %w", setID, err)
	}

	structure := Structure{}
	for _, group := range groups {
		name := group.DisplayName()
		if name == "" || !matchesPrefix(name, prefix) {
			continue
		}

		attrs, err := p.attributes.AttributesInGroup(ctx, entityTypeID, setID, group.ID, storeID)
		if err != nil {
			return nil, fmt.Errorf("list attributes of group %d: %w", group.ID, err)
		}
		meta := filterAttributes(attrs, requireVisible, denylist)
		if len(meta) == 0 {
			continue
		}

		structure = append(structure, StructureGroup{
			Code:       GroupCode(name),
			Title:      p.titles.Format(name, prefix),
			SortOrder:  group.SortOrder,
			Attributes: meta,
		})
	}

	slices.SortStableFunc(structure, func(a, b StructureGroup) int { return a.SortOrder - b.SortOrder })
	return structure, nil
}

func filterAttributes(attrs []catalog.Attribute, requireVisible bool, denylist []string) []AttributeMeta {
	var out []AttributeMeta
	for _, attr := range attrs {
		if requireVisible && !attr.IsVisibleOnFront {
			continue
		}
		if slices.Contains(denylist, attr.Code) {
			continue
		}
		out = append(out, AttributeMeta{
			Code:      attr.Code,
			Label:     attr.Label(),
			SortOrder: attr.SortOrder,
		})
	}
	slices.SortStableFunc(out, func(a, b AttributeMeta) int { return a.SortOrder - b.SortOrder })
	return out
}

// resolve fills structure with the product's values, loading every referenced
// attribute in a single call.
func (p *GroupProvider) resolve(ctx context.Context, product catalog.Product, structure Structure, entityTypeID, storeID int) ([]DisplayGroup, error) {
	result := []DisplayGroup{}
	codes := structure.codes()
	if len(codes) == 0 {
		return result, nil
	}

	byCode, err := p.attributes.AttributesByCode(ctx, entityTypeID, codes, storeID)
	if err != nil {
		return nil, fmt.Errorf("load attributes: %w", err)
	}

	for _, group := range structure {
		var attrs []DisplayAttribute
		for _, meta := range group.Attributes {
			attr, ok := byCode[meta.Code]
			if !ok {
				continue
			}
			value, has, err := p.resolver.FrontendValue(ctx, attr, product)
			if err != nil {
				return nil, err
			}
			if !has {
				continue
			}
			attrs = append(attrs, DisplayAttribute{Code: meta.Code, Label: meta.Label, Value: value})
		}
		if len(attrs) == 0 {
			continue
		}
		result = append(result, DisplayGroup{
			Code:       group.Code,
			Title:      group.Title,
			SortOrder:  group.SortOrder,
			Attributes: attrs,
		})
	}
	return result, nil
}
