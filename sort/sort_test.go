package sort

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/go-test/deep"
	"golang.org/x/exp/slices"
)

var testWorkers = []int{1, 2, 3, 8, 17}

// allSorters returns a sorter for every strategy and worker count combination.
func allSorters[T Comparable](t *testing.T) []*Sorter[T] {
	t.Helper()
	sorters := make([]*Sorter[T], 0)
	for _, strategy := range Strategies() {
		workers := []int{0}
		if strategy.usesWorkers() {
			workers = testWorkers
		}
		for _, w := range workers {
			s, err := NewSorter[T](strategy, w)
			if err != nil {
				t.Fatalf("supposed to succeed but failed with error: %+v", err)
			}
			sorters = append(sorters, s)
		}
	}
	return sorters
}

func sorterName(s interface {
	Strategy() Strategy
	Workers() int
}) string {
	return fmt.Sprintf("%s/%d", s.Strategy(), s.Workers())
}

func TestSortComparableSlice(t *testing.T) {
	tests := []struct {
		name     string
		unsorted []string
		expected []string
	}{
		{
			name:     "nil slice",
			unsorted: nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			unsorted: []string{},
			expected: []string{},
		},
		{
			name:     "valid slice with 1 element",
			unsorted: []string{"A"},
			expected: []string{"A"},
		},
		{
			name:     "valid slice with 2 elements",
			unsorted: []string{"B", "A"},
			expected: []string{"A", "B"},
		},
		{
			name:     "valid slice with 3 elements",
			unsorted: []string{"A", "C", "B"},
			expected: []string{"A", "B", "C"},
		},
		{
			name:     "valid slice with 4 elements",
			unsorted: []string{"D", "A", "C", "B"},
			expected: []string{"A", "B", "C", "D"},
		},
		{
			name:     "valid slice with 7 elements",
			unsorted: []string{"G", "E", "A", "F", "C", "B", "D"},
			expected: []string{"A", "B", "C", "D", "E", "F", "G"},
		},
	}
	for _, s := range allSorters[string](t) {
		for _, tt := range tests {
			t.Run(sorterName(s)+"/"+tt.name, func(t *testing.T) {
				sorted, err := s.Sort(tt.unsorted)
				if err != nil {
					t.Fatalf("supposed to succeed but failed with error: %+v", err)
				}
				if !reflect.DeepEqual(sorted, tt.expected) {
					t.Logf("Diffs: %+v", deep.Equal(sorted, tt.expected))
					t.Fatal("expected and computed result do not match")
				}
			})
		}
	}
}

func TestSortScenarios(t *testing.T) {
	tests := []struct {
		name     string
		sort     func([]int) ([]int, error)
		unsorted []int
		expected []int
	}{
		{
			name: "sequential",
			sort: func(in []int) ([]int, error) {
				return Sort(in), nil
			},
			unsorted: []int{15, 53, 1, 24, 3},
			expected: []int{1, 3, 15, 24, 53},
		},
		{
			name:     "parallel",
			sort:     SortParallel[int],
			unsorted: []int{15, 53, 1, 24, 25, 3},
			expected: []int{1, 3, 15, 24, 25, 53},
		},
		{
			name: "pool of 8 workers",
			sort: func(in []int) ([]int, error) {
				return SortPool(in, 8)
			},
			unsorted: []int{15, 53, 1, 24, 25, 3},
			expected: []int{1, 3, 15, 24, 25, 53},
		},
		{
			name: "limit of 8 workers",
			sort: func(in []int) ([]int, error) {
				return SortParallelLimit(in, 8)
			},
			unsorted: []int{15, 53, 1, 24, 25, 3, 37, 12, 56},
			expected: []int{1, 3, 12, 15, 24, 25, 37, 53, 56},
		},
		{
			name: "pool chunks of 8 workers",
			sort: func(in []int) ([]int, error) {
				return SortPoolChunks(in, 8)
			},
			unsorted: []int{15, 53, 1, 24, 25, 3, 37, 12, 56},
			expected: []int{1, 3, 12, 15, 24, 25, 37, 53, 56},
		},
		{
			name: "pool chunks of 8 workers with the driver sample",
			sort: func(in []int) ([]int, error) {
				return SortPoolChunks(in, 8)
			},
			unsorted: []int{15, 53, 1, 24, 3, 1765, 22, 2, 8, 7, 4},
			expected: []int{1, 2, 3, 4, 7, 8, 15, 22, 24, 53, 1765},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sorted, err := tt.sort(tt.unsorted)
			if err != nil {
				t.Fatalf("supposed to succeed but failed with error: %+v", err)
			}
			if diff := deep.Equal(sorted, tt.expected); diff != nil {
				t.Errorf("%+v", diff)
			}
		})
	}
}

func TestSortFloats(t *testing.T) {
	unsorted := []float64{15.1, 15.3, 53.2, 1.9, 1.5, 24.7, 3.2}
	expected := []float64{1.5, 1.9, 3.2, 15.1, 15.3, 24.7, 53.2}
	for _, s := range allSorters[float64](t) {
		sorted, err := s.Sort(unsorted)
		if err != nil {
			t.Fatalf("%s: supposed to succeed but failed with error: %+v", sorterName(s), err)
		}
		if diff := deep.Equal(sorted, expected); diff != nil {
			t.Errorf("%s: %+v", sorterName(s), diff)
		}
	}
}

func TestSortRandomAcrossStrategies(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	lengths := []int{2, 3, 5, 7, 8, 9, 15, 16, 17, 31, 33, 100, 127, 1000, 1025}
	sorters := allSorters[int](t)
	for _, l := range lengths {
		input := make([]int, l)
		for i := range input {
			// Narrow range to get plenty of duplicates
			input[i] = r.Intn(l/2+1) - l/4
		}
		original := slices.Clone(input)
		expected := slices.Clone(input)
		slices.Sort(expected)
		for _, s := range sorters {
			sorted, err := s.Sort(input)
			if err != nil {
				t.Fatalf("%s length %d: supposed to succeed but failed with error: %+v", sorterName(s), l, err)
			}
			if !slices.Equal(sorted, expected) {
				t.Fatalf("%s length %d: expected %v, got %v", sorterName(s), l, expected, sorted)
			}
			if !slices.Equal(input, original) {
				t.Fatalf("%s length %d: input was modified", sorterName(s), l)
			}
		}
	}
}

func TestSortAlreadySorted(t *testing.T) {
	input := make([]int, 77)
	for i := range input {
		input[i] = i / 3
	}
	for _, s := range allSorters[int](t) {
		sorted, err := s.Sort(input)
		if err != nil {
			t.Fatalf("%s: supposed to succeed but failed with error: %+v", sorterName(s), err)
		}
		if diff := deep.Equal(sorted, input); diff != nil {
			t.Errorf("%s: %+v", sorterName(s), diff)
		}
	}
}

func TestSortStable(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	input := make([]keyed, 200)
	for i := range input {
		input[i] = keyed{key: r.Intn(10), tag: fmt.Sprintf("%03d", i)}
	}
	for _, strategy := range Strategies() {
		s, err := NewSorterFunc(strategy, 4, lessKeyed)
		if err != nil {
			t.Fatalf("supposed to succeed but failed with error: %+v", err)
		}
		sorted, err := s.Sort(input)
		if err != nil {
			t.Fatalf("%s: supposed to succeed but failed with error: %+v", strategy, err)
		}
		for i := 1; i < len(sorted); i++ {
			prev, cur := sorted[i-1], sorted[i]
			if prev.key > cur.key || (prev.key == cur.key && prev.tag > cur.tag) {
				t.Fatalf("%s: order broken at %d: %+v before %+v", strategy, i, prev, cur)
			}
		}
	}
}

// TestPassOrdering asserts after every commit that values is tiled by sorted runs of the
// new bin size, which the trailing run rule of every later pass relies on.
func TestPassOrdering(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for _, l := range []int{5, 6, 9, 13, 64, 100} {
		input := r.Perm(l)
		for _, s := range allSorters[int](t) {
			passes := 0
			binSize := 1
			s.afterPass = func(state *sortState[int]) {
				passes++
				binSize *= 2
				if state.binSize != binSize {
					t.Errorf("%s length %d: expected bin size %d after pass %d, got %d", sorterName(s), l, binSize, passes, state.binSize)
				}
				if !state.sortedRuns() {
					t.Errorf("%s length %d: runs of %d not sorted after pass %d: %v", sorterName(s), l, state.binSize, passes, state.values)
				}
				if !slices.Equal(state.values, state.buffer) {
					t.Errorf("%s length %d: values and buffer differ after pass %d", sorterName(s), l, passes)
				}
			}
			if _, err := s.Sort(input); err != nil {
				t.Fatalf("%s: supposed to succeed but failed with error: %+v", sorterName(s), err)
			}
			// ceil(log2(l)) passes
			expected := 0
			for b := 1; b < l; b *= 2 {
				expected++
			}
			if passes != expected {
				t.Errorf("%s length %d: expected %d passes, got %d", sorterName(s), l, expected, passes)
			}
		}
	}
}

func TestSortTaskFailure(t *testing.T) {
	poisoned := func(a, b int) bool {
		if a == 13 || b == 13 {
			panic("poisoned value")
		}
		return a < b
	}
	input := []int{5, 9, 13, 1, 7, 2, 8, 3, 4}
	for _, strategy := range Strategies() {
		s, err := NewSorterFunc(strategy, 3, poisoned)
		if err != nil {
			t.Fatalf("supposed to succeed but failed with error: %+v", err)
		}
		sorted, err := s.Sort(input)
		if err == nil {
			t.Fatalf("%s: supposed to fail but succeeded with %v", strategy, sorted)
		}
		if !errors.Is(err, ErrTaskFailed) {
			t.Fatalf("%s: expected error %+v, got %+v", strategy, ErrTaskFailed, err)
		}
		if sorted != nil {
			t.Fatalf("%s: aborted sort returned %v", strategy, sorted)
		}
	}
}

func TestNewSorter(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		workers  int
		err      error
	}{
		{
			name:     "sequential ignores workers",
			strategy: Sequential,
			workers:  0,
		},
		{
			name:     "parallel ignores workers",
			strategy: Parallel,
			workers:  -1,
		},
		{
			name:     "pool with workers",
			strategy: Pool,
			workers:  4,
		},
		{
			name:     "pool without workers",
			strategy: Pool,
			workers:  0,
			err:      ErrInvalidWorkers,
		},
		{
			name:     "chunks without workers",
			strategy: PoolChunks,
			workers:  0,
			err:      ErrInvalidWorkers,
		},
		{
			name:     "limit with negative workers",
			strategy: ParallelLimit,
			workers:  -2,
			err:      ErrInvalidWorkers,
		},
		{
			name:     "unknown strategy",
			strategy: Strategy(42),
			workers:  4,
			err:      ErrUnknownStrategy,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSorter[int](tt.strategy, tt.workers)
			if tt.err == nil && err != nil {
				t.Fatalf("supposed to succeed but failed with error: %+v", err)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Fatalf("expected error %+v, got %+v", tt.err, err)
			}
		})
	}
	if _, err := SortPool([]int{2, 1}, 0); !errors.Is(err, ErrInvalidWorkers) {
		t.Fatalf("expected error %+v, got %+v", ErrInvalidWorkers, err)
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies() {
		got, err := ParseStrategy(s.String())
		if err != nil {
			t.Fatalf("supposed to succeed but failed with error: %+v", err)
		}
		if got != s {
			t.Fatalf("expected strategy %s, got %s", s, got)
		}
	}
	if got, err := ParseStrategy("POOL"); err != nil || got != Pool {
		t.Fatalf("expected strategy pool, got %s with error %+v", got, err)
	}
	if _, err := ParseStrategy("gpu"); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("expected error %+v, got %+v", ErrUnknownStrategy, err)
	}
}
