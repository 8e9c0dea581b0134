package pview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleFormatterFormat(t *testing.T) {
	tests := []struct {
		name, group, prefix, want string
	}{
		{"underscore prefix", "pview_Truck", "pview_", "Truck"},
		{"hyphen variant any case", "PVIEW-Trailer", "pview_", "Trailer"},
		{"prefix only keeps name", "pview_", "pview_", "pview_"},
		{"separators collapse", "pview_heavy__duty-truck", "pview_", "Heavy Duty Truck"},
		{"title casing lowers the rest", "pview_TRUCK specs", "pview_", "Truck Specs"},
		{"no match keeps name", "General", "pview_", "General"},
		{"empty prefix", "my_group", "", "My Group"},
		{"multi-byte", "pview_über_größe", "pview_", "Über Größe"},
		{"multi-byte prefix", "ÄÖ_öffnung", "äö_", "Öffnung"},
		{"separators only keep name", "___", "x", "___"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleFormatter{}.Format(tt.group, tt.prefix))
		})
	}
}

func TestMatchesPrefix(t *testing.T) {
	assert.True(t, matchesPrefix("pview_Truck", "pview_"))
	assert.True(t, matchesPrefix("PVIEW-Truck", "pview_"))
	assert.True(t, matchesPrefix("Spec-Sheet", "SPEC_"))
	assert.False(t, matchesPrefix("Truck pview_", "pview_"))
	assert.False(t, matchesPrefix("pviewTruck", "pview_"))
}

func TestGroupCode(t *testing.T) {
	assert.Equal(t, "pview_truck", GroupCode("pview_Truck"))
	assert.Equal(t, "pview_heavy_duty_", GroupCode("PVIEW-Heavy  Duty!"))
}
