package pview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
)

type phrase string

func (p phrase) String() string { return string(p) }

// staticRenderer renders a fixed value regardless of the product.
type staticRenderer struct {
	value any
	err   error
}

func (s staticRenderer) Render(context.Context, catalog.Attribute, catalog.Product) (any, error) {
	return s.value, s.err
}

func TestFrontendValueNormalization(t *testing.T) {
	ctx := context.Background()
	attr := catalog.Attribute{Code: "spec", FrontendInput: catalog.InputText}

	tests := []struct {
		name     string
		rendered any
		want     string
		has      bool
	}{
		{"string trimmed", "  Heavy  ", "Heavy", true},
		{"stringer", phrase("Translated"), "Translated", true},
		{"false is empty", false, "", false},
		{"true", true, "1", true},
		{"integer", 3, "3", true},
		{"float", 2.5, "2.5", true},
		{"nil", nil, "", false},
		{"whitespace", "   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewAttributeValueResolver(staticRenderer{value: tt.rendered}, nil)
			got, has, err := r.FrontendValue(ctx, attr, catalog.Product{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.has, has)
		})
	}
}

func TestFrontendValuePrice(t *testing.T) {
	ctx := context.Background()
	r := NewAttributeValueResolver(nil, fakeCurrency{})
	price := catalog.Attribute{Code: "price", FrontendInput: catalog.InputPrice}

	got, has, err := r.FrontendValue(ctx, price, catalog.Product{Data: map[string]any{"price": "10"}})
	require.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, "$10.00", got)

	got, has, err = r.FrontendValue(ctx, price, catalog.Product{Data: map[string]any{"price": "call us"}})
	require.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, "call us", got)

	text := catalog.Attribute{Code: "weight", FrontendInput: catalog.InputText}
	got, _, err = r.FrontendValue(ctx, text, catalog.Product{Data: map[string]any{"weight": 10.0}})
	require.NoError(t, err)
	assert.Equal(t, "10", got)
}

func TestFrontendValueBoolean(t *testing.T) {
	ctx := context.Background()
	attr := catalog.Attribute{Code: "has_hitch", FrontendInput: catalog.InputBoolean}

	tests := []struct {
		name     string
		rendered any
		data     map[string]any
		want     string
		has      bool
	}{
		{"raw missing with text", "No", map[string]any{}, "", false},
		{"raw nil with text", "No", map[string]any{"has_hitch": nil}, "", false},
		{"raw empty with text", "No", map[string]any{"has_hitch": ""}, "", false},
		{"raw zero", "No", map[string]any{"has_hitch": "0"}, "No", true},
		{"raw one", "Yes", map[string]any{"has_hitch": 1}, "Yes", true},
		{"raw zero without text", nil, map[string]any{"has_hitch": "0"}, "No", true},
		{"raw true without text", "", map[string]any{"has_hitch": true}, "Yes", true},
		{"unreadable raw without text", nil, map[string]any{"has_hitch": "maybe"}, "No", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewAttributeValueResolver(staticRenderer{value: tt.rendered}, nil)
			got, has, err := r.FrontendValue(ctx, attr, catalog.Product{Data: tt.data})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.has, has)
		})
	}
}

func TestFrontendValueRenderError(t *testing.T) {
	boom := errors.New("boom")
	r := NewAttributeValueResolver(staticRenderer{err: boom}, nil)
	_, _, err := r.FrontendValue(context.Background(), catalog.Attribute{Code: "x"}, catalog.Product{})
	assert.ErrorIs(t, err, boom)
}
