// Package sort implements iterative (bottom-up) merge sort under several
// concurrency strategies. Every strategy shares the same pass structure: bins
// start at size 1, each pass merges adjacent bin pairs from the working array into
// a scratch buffer, and a commit publishes the buffer and doubles the bin size.
// Strategies only differ in how the merges of one pass are spread over goroutines,
// so all of them return identical output for identical input.
package sort

import (
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Comparable is the set of types sorted with their natural order. Floating point NaN
// values are not totally ordered and leave the result unspecified.
type Comparable interface {
	constraints.Ordered
}

// Backend is implemented by anything able to return a sorted copy of a sequence.
type Backend[T any] interface {
	Sort(in []T) ([]T, error)
}

// Strategy selects how the merge tasks of a pass are dispatched.
type Strategy uint8

const (
	// Sequential merges every bin pair on the calling goroutine.
	Sequential Strategy = iota + 1
	// Parallel spawns one goroutine per bin pair for every pass.
	Parallel
	// ParallelLimit splits the bin pairs into a contiguous range per worker and spawns
	// a fresh goroutine per range for every pass.
	ParallelLimit
	// Pool submits one job per bin pair to a pool created once per sort call.
	Pool
	// PoolChunks submits the ParallelLimit ranges as jobs to the pool, each job also
	// writes its merged segment back.
	PoolChunks
)

var strategyNames = map[Strategy]string{
	Sequential:    "sequential",
	Parallel:      "parallel",
	ParallelLimit: "limit",
	Pool:          "pool",
	PoolChunks:    "chunks",
}

func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("strategy(%d)", uint8(s))
}

// usesWorkers reports whether the strategy is bounded by a worker count.
func (s Strategy) usesWorkers() bool {
	return s == ParallelLimit || s == Pool || s == PoolChunks
}

// Strategies returns every known strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{Sequential, Parallel, ParallelLimit, Pool, PoolChunks}
}

// ParseStrategy returns the strategy matching name, case insensitive.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Sorter sorts sequences of T with a fixed strategy. It keeps no state between calls
// and is safe for concurrent use.
type Sorter[T any] struct {
	strategy Strategy
	workers  int
	less     func(a, b T) bool
	// afterPass, when set, observes the state after every commit
	afterPass func(*sortState[T])
}

var _ Backend[int] = &Sorter[int]{}

func lessOrdered[T Comparable](a, b T) bool {
	return a < b
}

// NewSorter returns a Sorter ordering T by its natural order. workers is ignored by
// Sequential and Parallel and must be positive otherwise.
func NewSorter[T Comparable](strategy Strategy, workers int) (*Sorter[T], error) {
	return NewSorterFunc(strategy, workers, lessOrdered[T])
}

// NewSorterFunc returns a Sorter ordering T by less, which must describe a strict
// weak order.
func NewSorterFunc[T any](strategy Strategy, workers int, less func(a, b T) bool) (*Sorter[T], error) {
	if _, ok := strategyNames[strategy]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
	if strategy.usesWorkers() && workers <= 0 {
		return nil, fmt.Errorf("%w: strategy %s got %d", ErrInvalidWorkers, strategy, workers)
	}
	return &Sorter[T]{
		strategy: strategy,
		workers:  workers,
		less:     less,
	}, nil
}

// Strategy returns the sorter's strategy.
func (s *Sorter[T]) Strategy() Strategy {
	return s.strategy
}

// Workers returns the configured number of workers.
func (s *Sorter[T]) Workers() int {
	return s.workers
}

// Sort returns a sorted copy of in, in is never modified. Sequences of length 0 or 1
// are returned as a copy without spawning anything.
func (s *Sorter[T]) Sort(in []T) ([]T, error) {
	if len(in) <= 1 {
		return slices.Clone(in), nil
	}
	return s.sort(newSortState(in, s.less))
}

// Sort returns a sorted copy of in using the sequential strategy.
func Sort[T Comparable](in []T) []T {
	s, _ := NewSorter[T](Sequential, 0)
	out, err := s.Sort(in)
	if err != nil {
		// Comparing ordered values cannot panic
		panic(err)
	}
	return out
}

// SortParallel returns a sorted copy of in, spawning one goroutine per bin pair.
func SortParallel[T Comparable](in []T) ([]T, error) {
	return sortWith(in, Parallel, 0)
}

// SortParallelLimit returns a sorted copy of in, spawning one goroutine per worker
// range for every pass.
func SortParallelLimit[T Comparable](in []T, workers int) ([]T, error) {
	return sortWith(in, ParallelLimit, workers)
}

// SortPool returns a sorted copy of in, submitting one job per bin pair to a pool of
// workers.
func SortPool[T Comparable](in []T, workers int) ([]T, error) {
	return sortWith(in, Pool, workers)
}

// SortPoolChunks returns a sorted copy of in, submitting one job per worker range to a
// pool of workers.
func SortPoolChunks[T Comparable](in []T, workers int) ([]T, error) {
	return sortWith(in, PoolChunks, workers)
}

func sortWith[T Comparable](in []T, strategy Strategy, workers int) ([]T, error) {
	s, err := NewSorter[T](strategy, workers)
	if err != nil {
		return nil, err
	}
	return s.Sort(in)
}
