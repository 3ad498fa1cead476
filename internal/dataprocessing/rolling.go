package dataprocessing

import (
	"math"
)

// RollingMean computes the fixed-width moving average of the accessor value
// over items. The result is index-aligned with the input: index i holds the
// arithmetic mean of the window ending at i once window items have been
// consumed, and NaN before that. A window wider than the input yields NaN
// everywhere.
//
// The implementation keeps a running sum and a bounded queue of the last
// window values, so the whole series costs O(N). Rolling width is
// user-adjustable and recomputed on every parameter change, which makes the
// naive O(N*k) rescan noticeable on multi-year datasets.
func RollingMean[T any](items []T, window int, accessor func(T) float64) []float64 {
	out := make([]float64, len(items))
	if window < 1 {
		window = 1
	}

	var sum float64
	queue := make([]float64, 0, window+1)

	for i, item := range items {
		v := accessor(item)
		queue = append(queue, v)
		sum += v

		if len(queue) > window {
			sum -= queue[0]
			queue = queue[1:]
		}

		if len(queue) == window {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}

	return out
}
