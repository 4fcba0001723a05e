package sort

import (
	"github.com/sbezverk/msort/pool"
	"golang.org/x/sync/errgroup"
)

// taskRange is the contiguous set of bin pair indexes [from,to).
type taskRange struct {
	from int
	to   int
}

// partition splits tasks into at most workers contiguous ranges of ceil(tasks/workers).
// The last range may be shorter and trailing workers may get no range at all.
func partition(tasks, workers int) []taskRange {
	if tasks <= 0 || workers <= 0 {
		return nil
	}
	chunk := (tasks + workers - 1) / workers
	ranges := make([]taskRange, 0, workers)
	for from := 0; from < tasks; from += chunk {
		to := from + chunk
		if to > tasks {
			to = tasks
		}
		ranges = append(ranges, taskRange{from: from, to: to})
	}
	return ranges
}

func dispatchSequential[T any](s *sortState[T]) error {
	return runTasks(s, taskRange{from: 0, to: s.tasks()}, false)
}

func dispatchParallel[T any](s *sortState[T]) error {
	var g errgroup.Group
	for task := 0; task < s.tasks(); task++ {
		task := task
		g.Go(func() error {
			return runTask(s, task, false)
		})
	}
	// Wait is the pass barrier
	return g.Wait()
}

func dispatchLimit[T any](workers int) dispatchFunc[T] {
	return func(s *sortState[T]) error {
		var g errgroup.Group
		for _, r := range partition(s.tasks(), workers) {
			r := r
			g.Go(func() error {
				return runTasks(s, r, false)
			})
		}
		return g.Wait()
	}
}

func dispatchPool[T any](p *pool.Pool) dispatchFunc[T] {
	return func(s *sortState[T]) error {
		n := s.tasks()
		// Buffered so that workers never block reporting completion
		done := make(chan error, n)
		for task := 0; task < n; task++ {
			task := task
			if err := p.Execute(func() {
				done <- runTask(s, task, false)
			}); err != nil {
				awaitTasks(done, task)
				return err
			}
		}
		return awaitTasks(done, n)
	}
}

func dispatchPoolChunks[T any](p *pool.Pool, workers int) dispatchFunc[T] {
	return func(s *sortState[T]) error {
		ranges := partition(s.tasks(), workers)
		done := make(chan error, len(ranges))
		for i, r := range ranges {
			r := r
			// Ranges are disjoint, so writing back inside the job cannot race
			if err := p.Execute(func() {
				done <- runTasks(s, r, true)
			}); err != nil {
				awaitTasks(done, i)
				return err
			}
		}
		return awaitTasks(done, len(ranges))
	}
}
