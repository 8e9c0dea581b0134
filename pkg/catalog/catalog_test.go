package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeGroupDisplayName(t *testing.T) {
	assert.Equal(t, "pview_Truck", AttributeGroup{Name: "pview_Truck", Code: "pview-truck"}.DisplayName())
	assert.Equal(t, "pview-truck", AttributeGroup{Code: "pview-truck"}.DisplayName())
	assert.Equal(t, "General", AttributeGroup{OrigName: "General"}.OrigDisplayName())
}

func TestDefaultRenderer(t *testing.T) {
	ctx := context.Background()
	r := DefaultRenderer{}
	product := Product{Data: map[string]any{
		"color":     "2",
		"unknown":   "9",
		"has_hitch": "1",
		"sleeper":   "yes",
		"is_new":    false,
		"weight":    12.5,
	}}
	color := Attribute{Code: "color", FrontendInput: InputSelect, Options: []Option{{Value: "1", Label: "Red"}, {Value: "2", Label: "Blue"}}}

	v, err := r.Render(ctx, color, product)
	require.NoError(t, err)
	assert.Equal(t, "Blue", v)

	v, err = r.Render(ctx, Attribute{Code: "unknown", FrontendInput: InputSelect}, product)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	v, err = r.Render(ctx, Attribute{Code: "has_hitch", FrontendInput: InputBoolean}, product)
	require.NoError(t, err)
	assert.Equal(t, "Yes", v)

	v, err = r.Render(ctx, Attribute{Code: "sleeper", FrontendInput: InputBoolean}, product)
	require.NoError(t, err)
	assert.Equal(t, "yes", v)

	v, err = r.Render(ctx, Attribute{Code: "is_new", FrontendInput: InputBoolean}, product)
	require.NoError(t, err)
	assert.Equal(t, "No", v)

	v, err = r.Render(ctx, Attribute{Code: "weight", FrontendInput: InputText}, product)
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	v, err = r.Render(ctx, Attribute{Code: "missing", FrontendInput: InputBoolean}, product)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestTruthy(t *testing.T) {
	b, err := Truthy("0")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.False(t, *b)

	b, err = Truthy("")
	require.NoError(t, err)
	assert.Nil(t, b)

	_, err = Truthy("maybe")
	assert.Error(t, err)
}

func TestDispatcher(t *testing.T) {
	d := NewDispatcher()
	var got []string
	d.Subscribe(EventAttributeSetSaveAfter, ObserverFunc(func(_ context.Context, e Event) {
		got = append(got, "first:"+e.Set.Name)
	}))
	d.Subscribe(EventAttributeSetSaveAfter, ObserverFunc(func(_ context.Context, e Event) {
		got = append(got, "second:"+e.Set.Name)
	}))

	d.Dispatch(context.Background(), Event{Name: EventAttributeSetSaveAfter, Set: &AttributeSet{ID: 4, Name: "Trucks"}})
	d.Dispatch(context.Background(), Event{Name: EventAttributeSetDeleteAfter, Set: &AttributeSet{ID: 4}})

	assert.Equal(t, []string{"first:Trucks", "second:Trucks"}, got)
}
