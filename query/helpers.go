package query

import (
	"slices"
	"time"
)

// First returns the first item, if any
func First[T any](items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[0], true
}

// FirstBy returns the first item matching pred
func FirstBy[T any](items []T, pred func(T) bool) (T, bool) {
	for _, item := range items {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Newest returns up to n items ordered by updatedAt, latest first. Items
// with equal times keep their input order.
func Newest[T any](items []T, n int, updatedAt func(T) time.Time) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return updatedAt(b).Compare(updatedAt(a))
	})
	return sorted[:max(0, min(n, len(sorted)))]
}
