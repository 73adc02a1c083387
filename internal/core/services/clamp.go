package services

import "github.com/custodia-labs/themescope/internal/core/domain"

// Clamp returns max(lo, min(hi, n)).
func Clamp(n, lo, hi int) int {
	return max(lo, min(hi, n))
}

// ClampSlice keeps the first Clamp(len(items), b.Min, b.Max) items, never
// more than are available. Items are neither padded nor reordered.
func ClampSlice[T any](items []T, b domain.Bounds) []T {
	n := len(items)
	keep := min(n, Clamp(n, b.Min, b.Max))
	return items[:keep]
}
