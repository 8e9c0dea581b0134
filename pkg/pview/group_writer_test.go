package pview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
)

func newGroupWriter(f *truckFixture) *FlushingGroupWriter {
	return NewFlushingGroupWriter(f.catalog, f.catalog, f.flusher(), f.helper(), nil)
}

func TestGroupWriterRename(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		flushed  bool
	}{
		{"prefixed to plain", "pview_X", "Other", true},
		{"plain to prefixed", "Other", "pview_X", true},
		{"prefixed to prefixed", "pview_X", "PVIEW-Y", true},
		{"plain to plain", "Other", "Another", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithRequestScope(context.Background())
			f := newTruckFixture(t)
			f.catalog.addGroup(7, fixtureSetID, tt.from, 40)
			seedStructure(t, f)

			group, err := f.catalog.GroupByID(ctx, 7)
			require.NoError(t, err)
			group.Name = tt.to
			require.NoError(t, newGroupWriter(f).SaveGroup(ctx, &group))

			assert.Equal(t, tt.to, f.catalog.groups[7].Name)
			assert.Equal(t, !tt.flushed, f.cache.Has("structure"))
			assert.Equal(t, tt.flushed, len(f.page.modes) == 1)
		})
	}
}

func TestGroupWriterRenameInvalidatesProvider(t *testing.T) {
	ctx := context.Background()
	f := newTruckFixture(t)
	p := f.provider(t)

	groups, err := p.GroupsForProduct(ctx, f.product, nil)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	trailer := f.catalog.groups[3]
	trailer.Name = "Trailer"
	require.NoError(t, newGroupWriter(f).SaveGroup(WithRequestScope(ctx), &trailer))

	groups, err = p.GroupsForProduct(ctx, f.product, nil)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Truck", groups[0].Title)
}

func TestGroupWriterKeepsExplicitOrigValues(t *testing.T) {
	ctx := WithRequestScope(context.Background())
	f := newTruckFixture(t)
	seedStructure(t, f)

	group := catalog.AttributeGroup{ID: 1, SetID: fixtureSetID, Name: "Misc", OrigName: "pview_Misc"}
	require.NoError(t, newGroupWriter(f).SaveGroup(ctx, &group))
	assert.False(t, f.cache.Has("structure"))
	assert.Zero(t, f.catalog.byIDCalls)
}

func TestGroupWriterDelete(t *testing.T) {
	ctx := WithRequestScope(context.Background())
	f := newTruckFixture(t)
	seedStructure(t, f)

	require.NoError(t, newGroupWriter(f).DeleteGroup(ctx, catalog.AttributeGroup{ID: 4}))
	assert.False(t, f.cache.Has("structure"))
	_, ok := f.catalog.groups[4]
	assert.False(t, ok)
}

func TestGroupWriterNewGroup(t *testing.T) {
	ctx := WithRequestScope(context.Background())
	f := newTruckFixture(t)
	seedStructure(t, f)

	group := catalog.AttributeGroup{SetID: fixtureSetID, Name: "pview_New", SortOrder: 50}
	require.NoError(t, newGroupWriter(f).SaveGroup(ctx, &group))
	assert.NotZero(t, group.ID)
	assert.False(t, f.cache.Has("structure"))
}

func TestGroupWriterPropagatesWriteErrors(t *testing.T) {
	ctx := WithRequestScope(context.Background())
	f := newTruckFixture(t)
	seedStructure(t, f)

	err := newGroupWriter(f).DeleteGroup(ctx, catalog.AttributeGroup{ID: 555, SetID: fixtureSetID, Name: "pview_Gone"})
	assert.True(t, errors.Is(err, catalog.ErrNotFound))
	assert.True(t, f.cache.Has("structure"), "failed writes do not flush")
}
