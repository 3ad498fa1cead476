package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingMeanBasics(t *testing.T) {
	values := []float64{2, 4, 6, 8}
	identity := func(v float64) float64 { return v }

	out := RollingMean(values, 2, identity)
	require.Len(t, out, 4)

	assert.True(t, math.IsNaN(out[0]))
	assert.InDelta(t, 3.0, out[1], 1e-9)
	assert.InDelta(t, 5.0, out[2], 1e-9)
	assert.InDelta(t, 7.0, out[3], 1e-9)
}

func TestRollingMeanWindowOne(t *testing.T) {
	values := []float64{3.5, 7.25, 0}

	out := RollingMean(values, 1, func(v float64) float64 { return v })

	// For k=1 every index equals the accessor value itself.
	require.Len(t, out, 3)
	for i, v := range values {
		assert.InDelta(t, v, out[i], 1e-9)
	}
}

func TestRollingMeanWindowWiderThanInput(t *testing.T) {
	out := RollingMean([]float64{1, 2, 3}, 5, func(v float64) float64 { return v })

	require.Len(t, out, 3)
	for _, v := range out {
		assert.True(t, math.IsNaN(v))
	}
}

func TestRollingMeanEmptyInput(t *testing.T) {
	out := RollingMean(nil, 3, func(v float64) float64 { return v })
	assert.Empty(t, out)
}

func TestRollingMeanMatchesNaiveRescan(t *testing.T) {
	values := []float64{5, 1, 9, 2, 6, 6, 3, 8, 4, 7}
	const window = 4

	out := RollingMean(values, window, func(v float64) float64 { return v })

	for i := range values {
		if i < window-1 {
			assert.True(t, math.IsNaN(out[i]), "index %d", i)
			continue
		}
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		assert.InDelta(t, sum/window, out[i], 1e-9, "index %d", i)
	}
}
