package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float64", 1500.0, 1500, true},
		{"int", 10, 10, true},
		{"numeric string", "250.5", 250.5, true},
		{"garbage string", "ten", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
		{"nan", math.NaN(), 0, false},
		{"inf", math.Inf(1), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat64(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToFloat32Slice(t *testing.T) {
	got, ok := ToFloat32Slice([]any{1.0, 2, "3"})
	assert.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, got)

	_, ok = ToFloat32Slice([]any{1.0, "x"})
	assert.False(t, ok)
}
