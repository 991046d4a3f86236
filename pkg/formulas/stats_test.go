package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeltaPct(t *testing.T) {
	tests := []struct {
		name     string
		previous float64
		current  float64
		expected float64
	}{
		{"zero previous, positive current", 0, 42, 100},
		{"zero previous, zero current", 0, 0, 0},
		{"increase", 100, 125, 25},
		{"decrease", 200, 150, -25},
		{"unchanged", 80, 80, 0},
		{"negative previous uses magnitude", -50, -25, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, DeltaPct(tt.previous, tt.current), 1e-9)
		})
	}
}

func TestSafeDiv(t *testing.T) {
	assert.Equal(t, 0.0, SafeDiv(10, 0))
	assert.Equal(t, 2.5, SafeDiv(10, 4))
	assert.Equal(t, 0.0, SafeDiv(math.Inf(1), 2))
	assert.Equal(t, 0.0, SafeDiv(math.NaN(), 2))
}

func TestSafeDivPtr(t *testing.T) {
	assert.Nil(t, SafeDivPtr(1, 0))

	v := SafeDivPtr(9, 3)
	require.NotNil(t, v)
	assert.Equal(t, 3.0, *v)
}

func TestPct(t *testing.T) {
	assert.Equal(t, 0.0, Pct(5, 0))
	assert.InDelta(t, 25.0, Pct(5, 20), 1e-9)
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
}

func TestNonNegativeAndFinite(t *testing.T) {
	assert.Equal(t, 0.0, NonNegative(-3))
	assert.Equal(t, 3.0, NonNegative(3))
	assert.Equal(t, 0.0, NonNegative(math.NaN()))
	assert.Equal(t, 0.0, Finite(math.Inf(-1)))
	assert.Equal(t, 1.5, Finite(1.5))
}

func TestRollingMean(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8}

	rolling := RollingMean(values, 3)
	require.Len(t, rolling, len(values))

	assert.Equal(t, 0.0, rolling[0])
	assert.Equal(t, 0.0, rolling[1])
	assert.InDelta(t, 2.0, rolling[2], 1e-9)
	assert.InDelta(t, 7.0, rolling[7], 1e-9)
}

func TestRollingMean_TooShort(t *testing.T) {
	assert.Nil(t, RollingMean([]float64{1, 2}, 3))
	assert.Nil(t, RollingMean([]float64{1, 2, 3}, 1))
}

func TestTrailingMean(t *testing.T) {
	values := []float64{10, 10, 10, 20, 20, 20, 99}
	rolling := RollingMean(values, 3)

	_, ok := TrailingMean(rolling, 3, 2)
	assert.False(t, ok, "index 2 has only two predecessors")

	mean, ok := TrailingMean(rolling, 3, 6)
	require.True(t, ok)
	assert.InDelta(t, 20.0, mean, 1e-9, "mean of values[3..5], excluding index 6")

	mean, ok = TrailingMean(rolling, 3, 3)
	require.True(t, ok)
	assert.InDelta(t, 10.0, mean, 1e-9)
}
