package sort

import "golang.org/x/exp/slices"

// binPosition carves two adjacent runs [start,mid) and [mid,end) out of values,
// destined to be merged into buffer[start,end).
type binPosition struct {
	start int
	mid   int
	end   int
}

type sortState[T any] struct {
	binSize int
	length  int
	// values holds the current best-known order, buffer is the target of the running pass.
	values []T
	buffer []T
	less   func(a, b T) bool
}

func newSortState[T any](input []T, less func(a, b T) bool) *sortState[T] {
	return &sortState[T]{
		binSize: 1,
		length:  len(input),
		values:  slices.Clone(input),
		buffer:  slices.Clone(input),
		less:    less,
	}
}

// binPosition returns the bin pair starting at start for the current bin size,
// false when fewer than binSize+1 elements remain. Such a trailing run is already
// sorted by the previous pass and stays untouched until a larger bin absorbs it.
func (s *sortState[T]) binPosition(start int) (binPosition, bool) {
	switch {
	case start+2*s.binSize <= s.length:
		return binPosition{start: start, mid: start + s.binSize, end: start + 2*s.binSize}, true
	case start+s.binSize < s.length:
		return binPosition{start: start, mid: start + s.binSize, end: s.length}, true
	default:
		return binPosition{}, false
	}
}

// taskPosition maps a bin pair index to its position.
func (s *sortState[T]) taskPosition(task int) (binPosition, bool) {
	return s.binPosition(task * 2 * s.binSize)
}

// tasks returns the number of bin pairs to merge during the current pass.
func (s *sortState[T]) tasks() int {
	if s.length <= s.binSize {
		return 0
	}
	pair := 2 * s.binSize
	return (s.length - s.binSize + pair - 1) / pair
}

// merge merges the bin pair at p into the matching buffer segment. Concurrent calls
// are safe as long as their positions belong to the same pass.
func (s *sortState[T]) merge(p binPosition) {
	mergeBins(s.values[p.start:p.mid], s.values[p.mid:p.end], s.buffer[p.start:p.end], s.less)
}

// writeBack copies the merged buffer segment at p into values.
func (s *sortState[T]) writeBack(p binPosition) {
	copy(s.values[p.start:p.end], s.buffer[p.start:p.end])
}

// commit publishes the pass result and doubles the bin size. It must only be called
// once every task of the pass has completed.
func (s *sortState[T]) commit() {
	copy(s.values, s.buffer)
	s.advance()
}

// advance doubles the bin size, used when tasks already wrote their segments back.
func (s *sortState[T]) advance() {
	s.binSize *= 2
}

func (s *sortState[T]) converged() bool {
	return s.length <= 1 || s.binSize >= s.length
}

// snapshot returns the sorted values, only meaningful once converged.
func (s *sortState[T]) snapshot() []T {
	return s.values
}

// sortedRuns reports whether values is tiled by sorted runs of the current bin size.
func (s *sortState[T]) sortedRuns() bool {
	for start := 0; start < s.length; start += s.binSize {
		end := start + s.binSize
		if end > s.length {
			end = s.length
		}
		for i := start + 1; i < end; i++ {
			if s.less(s.values[i], s.values[i-1]) {
				return false
			}
		}
	}
	return true
}
