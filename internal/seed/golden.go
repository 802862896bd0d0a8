package seed

import "math"

// Phi is the golden ratio.
var Phi = (1 + math.Sqrt(5)) / 2

// GoldenSplit returns length/φ perturbed by a uniform offset in
// [-0.5, 0.5)*variation*length and snapped to the nearest multiple of grid.
// The result is not clamped to (0, length); callers own that check.
func GoldenSplit(length float64, s *Stream, grid, variation float64) float64 {
	split := length / Phi
	split += (s.Float64() - 0.5) * variation * length
	return Snap(split, grid)
}

// Snap rounds v to the nearest multiple of grid. A non-positive grid returns v.
func Snap(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}
