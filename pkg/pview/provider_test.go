package pview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
)

func TestGroupsForProductEndToEnd(t *testing.T) {
	f := newTruckFixture(t)
	p := f.provider(t)

	groups, err := p.GroupsForProduct(context.Background(), f.product, nil)
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.Equal(t, "Truck", groups[0].Title)
	assert.Equal(t, "pview_truck", groups[0].Code)
	assert.Equal(t, 10, groups[0].SortOrder)
	assert.Equal(t, []DisplayAttribute{{Code: "meta_description", Label: "Meta Description", Value: "Truck value"}}, groups[0].Attributes)
	assert.Equal(t, "Trailer", groups[1].Title)
	assert.Equal(t, []DisplayAttribute{{Code: "meta_keyword", Label: "Meta Keywords", Value: "Trailer value"}}, groups[1].Attributes)
}

func TestGroupsForProductUnreadableBooleanKeepsOtherGroups(t *testing.T) {
	f := newTruckFixture(t)
	f.catalog.addAttribute(catalog.Attribute{ID: 5, Code: "has_hitch", FrontendInput: catalog.InputBoolean, FrontendLabel: "Hitch", IsVisibleOnFront: true})
	f.catalog.assign(3, "has_hitch", 2)
	f.product.Data["has_hitch"] = "yes"

	groups, err := f.provider(t).GroupsForProduct(context.Background(), f.product, nil)
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.Equal(t, "Truck", groups[0].Title)
	assert.Equal(t, "Trailer", groups[1].Title)
	assert.Equal(t, []DisplayAttribute{
		{Code: "meta_keyword", Label: "Meta Keywords", Value: "Trailer value"},
		{Code: "has_hitch", Label: "Hitch", Value: "yes"},
	}, groups[1].Attributes)
}

func TestGroupsForProductNoQualifyingAttributes(t *testing.T) {
	f := newTruckFixture(t)
	for _, code := range []string{"meta_description", "meta_keyword", "axle_count"} {
		attr := f.catalog.attributes[code]
		attr.IsVisibleOnFront = false
		f.catalog.attributes[code] = attr
	}

	groups, err := f.provider(t).GroupsForProduct(context.Background(), f.product, nil)
	require.NoError(t, err)
	assert.Empty(t, groups)
	assert.NotNil(t, groups)
}

func TestGroupsForProductFiltersDenylistAndVisibility(t *testing.T) {
	f := newTruckFixture(t)
	f.catalog.addAttribute(catalog.Attribute{ID: 5, Code: "internal_note", FrontendInput: catalog.InputText, FrontendLabel: "Note"})
	f.catalog.assign(2, "internal_note", 0)
	f.product.Data["internal_note"] = "secret"
	f.scope.set(catalog.DefaultStoreID, PathDenylistCSV, "meta_keyword")

	groups, err := f.provider(t).GroupsForProduct(context.Background(), f.product, nil)
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, "Truck", groups[0].Title)
	for _, g := range groups {
		for _, a := range g.Attributes {
			assert.NotEqual(t, "internal_note", a.Code)
			assert.NotEqual(t, "meta_keyword", a.Code)
		}
	}

	f.scope.set(catalog.DefaultStoreID, PathRequireVisibleOnFront, "0")
	groups, err = f.provider(t).GroupsForProduct(context.Background(), f.product, nil)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Attributes, 2)
	assert.Equal(t, "internal_note", groups[0].Attributes[0].Code, "attributes follow assignment sort order")
}

func TestGroupsForProductOrdering(t *testing.T) {
	f := newTruckFixture(t)
	truck := f.catalog.groups[2]
	truck.SortOrder = 50
	f.catalog.groups[2] = truck

	groups, err := f.provider(t).GroupsForProduct(context.Background(), f.product, nil)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"Trailer", "Truck"}, []string{groups[0].Title, groups[1].Title})
}

func TestGroupsForProductHyphenAndCaseVariants(t *testing.T) {
	f := newTruckFixture(t)
	trailer := f.catalog.groups[3]
	trailer.Name = "PVIEW-Trailer"
	f.catalog.groups[3] = trailer

	groups, err := f.provider(t).GroupsForProduct(context.Background(), f.product, nil)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Trailer", groups[1].Title)
	assert.Equal(t, "pview_trailer", groups[1].Code)
}

func TestGroupsForProductIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newTruckFixture(t)
	p := f.provider(t)

	first, err := p.GroupsForProduct(ctx, f.product, nil)
	require.NoError(t, err)
	second, err := p.GroupsForProduct(ctx, f.product, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.catalog.bySetCalls, "second call is served from the structure cache")

	require.NoError(t, f.flusher().FlushByAttributeSetID(ctx, fixtureSetID))
	third, err := p.GroupsForProduct(ctx, f.product, nil)
	require.NoError(t, err)
	assert.Equal(t, first, third)
	assert.Equal(t, 2, f.catalog.bySetCalls)
}

func TestGroupsForProductBulkLoadsAttributes(t *testing.T) {
	f := newTruckFixture(t)
	_, err := f.provider(t).GroupsForProduct(context.Background(), f.product, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.catalog.byCodeCalls)
}

func TestGroupsForProductEdgeCases(t *testing.T) {
	ctx := context.Background()

	t.Run("no attribute set", func(t *testing.T) {
		f := newTruckFixture(t)
		f.product.AttributeSetID = 0
		groups, err := f.provider(t).GroupsForProduct(ctx, f.product, nil)
		require.NoError(t, err)
		assert.Empty(t, groups)
		assert.Zero(t, f.catalog.bySetCalls)
	})

	t.Run("unknown entity type", func(t *testing.T) {
		f := newTruckFixture(t)
		f.catalog.noEntity = true
		groups, err := f.provider(t).GroupsForProduct(ctx, f.product, nil)
		require.NoError(t, err)
		assert.Empty(t, groups)
		assert.Zero(t, f.cache.Len())
	})

	t.Run("explicit store", func(t *testing.T) {
		f := newTruckFixture(t)
		f.scope.set(5, PathPrefix, "spec_")
		store := 5
		groups, err := f.provider(t).GroupsForProduct(ctx, f.product, &store)
		require.NoError(t, err)
		assert.Empty(t, groups)
	})
}

func TestStructureCacheEntry(t *testing.T) {
	ctx := context.Background()
	f := newTruckFixture(t)
	_, err := f.provider(t).GroupsForProduct(ctx, f.product, nil)
	require.NoError(t, err)

	key := StructureKey(fixtureSetID, 1, "pview_", true, []string{})
	require.True(t, f.cache.Has(key))
	ttl, ok := f.cache.TTL(key)
	require.True(t, ok)
	assert.InDelta(t, CacheLifetime.Seconds(), ttl.Seconds(), 5)

	require.NoError(t, f.cache.Clean([]string{CacheTag}))
	assert.False(t, f.cache.Has(key))
}

func TestStructureUndecodableEntry(t *testing.T) {
	ctx := context.Background()
	f := newTruckFixture(t)
	p := f.provider(t)

	key := StructureKey(fixtureSetID, 1, "pview_", true, []string{})
	require.NoError(t, f.cache.Save([]byte{0xff, 0x00, 0x13}, key, []string{CacheTag}, CacheLifetime))

	groups, err := p.GroupsForProduct(ctx, f.product, nil)
	require.NoError(t, err)
	assert.Empty(t, groups)

	data, found := f.cache.Load(key)
	require.True(t, found)
	assert.Equal(t, []byte{0xff, 0x00, 0x13}, data, "undecodable entry is not overwritten")

	require.NoError(t, f.cache.Remove(key))
	groups, err = p.GroupsForProduct(ctx, f.product, nil)
	require.NoError(t, err)
	assert.Len(t, groups, 2)
}

func TestSortedDenylistKey(t *testing.T) {
	ctx := context.Background()
	f := newTruckFixture(t)

	f.scope.set(catalog.DefaultStoreID, PathDenylistCSV, "sku,weight")
	p := f.provider(t, WithSortedDenylistKey(true))
	_, err := p.GroupsForProduct(ctx, f.product, nil)
	require.NoError(t, err)

	f.scope.set(catalog.DefaultStoreID, PathDenylistCSV, "weight,sku")
	_, err = p.GroupsForProduct(ctx, f.product, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, f.cache.Len())
	assert.Equal(t, 1, f.catalog.bySetCalls)

	plain := f.provider(t)
	_, err = plain.GroupsForProduct(ctx, f.product, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, f.cache.Len(), "unsorted keys fragment by denylist order")
}

func TestCBORSerializerRoundTrip(t *testing.T) {
	s, err := NewCBORSerializer()
	require.NoError(t, err)

	in := Structure{{Code: "pview_truck", Title: "Truck", SortOrder: 10, Attributes: []AttributeMeta{{Code: "a", Label: "A", SortOrder: 1}}}}
	data, err := s.Serialize(in)
	require.NoError(t, err)
	out, err := s.Unserialize(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = s.Unserialize([]byte("not cbor"))
	assert.Error(t, err)
}
