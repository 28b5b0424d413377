// Package score holds the arithmetic shared by the trial engine and the
// submission validator. Both sides must agree bit-for-bit on the rounding
// grid, so this is the only place it is defined.
package score

import "math"

// Grid is the rounding granularity for reaction times, in milliseconds.
const Grid = 0.05

// gridPerMs is 1/Grid; multiplying by it maps milliseconds onto grid steps.
const gridPerMs = 20

// Round snaps a millisecond value to the nearest grid step.
// Rounding is idempotent: Round(Round(x)) == Round(x).
func Round(ms float64) float64 {
	return math.Round(ms*gridPerMs) / gridPerMs
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Average computes a session average: the mean of the (already rounded)
// per-trial reaction times, snapped back onto the grid.
func Average(reactionTimes []float64) float64 {
	return Round(Mean(reactionTimes))
}
