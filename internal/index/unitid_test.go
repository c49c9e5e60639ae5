package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUnit(t *testing.T) {
	tests := []struct {
		raw  string
		want UnitID
	}{
		{"102", "102"},
		{"  102  ", "102"},
		{"A12", "a12"},
		{"CAT 320/D", "cat_320_d"},
		{"unit#9", "unit_9"},
		{"loader-2", "loader-2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeUnit(tt.raw), "raw=%q", tt.raw)
	}
}

func TestUnitIDCollection(t *testing.T) {
	assert.Equal(t, "unit_102", NormalizeUnit("102").Collection())

	unit, ok := unitFromCollection("unit_102")
	assert.True(t, ok)
	assert.Equal(t, "102", unit)

	_, ok = unitFromCollection("documents")
	assert.False(t, ok)
}

func TestPointID_Deterministic(t *testing.T) {
	a := pointID("unit_102", 4, 2)
	b := pointID("unit_102", 4, 2)
	assert.Equal(t, a, b, "same (collection, page, chunk) must map to the same id")

	assert.NotEqual(t, a, pointID("unit_102", 4, 3))
	assert.NotEqual(t, a, pointID("unit_102", 5, 2))
	assert.NotEqual(t, a, pointID("unit_55", 4, 2))
}
