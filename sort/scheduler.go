package sort

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/sbezverk/msort/pool"
)

// dispatchFunc runs every merge task of the current pass and returns only once all of
// them have completed.
type dispatchFunc[T any] func(s *sortState[T]) error

func (s *Sorter[T]) sort(state *sortState[T]) ([]T, error) {
	switch s.strategy {
	case Sequential:
		return s.run(state, dispatchSequential[T], false)
	case Parallel:
		return s.run(state, dispatchParallel[T], false)
	case ParallelLimit:
		return s.run(state, dispatchLimit[T](s.workers), false)
	case Pool, PoolChunks:
		p, err := pool.New(s.workers)
		if err != nil {
			return nil, fmt.Errorf("failed to start pool of %d workers with error: %w", s.workers, err)
		}
		// Close runs before the result is returned, no worker outlives the sort call
		defer p.Close()
		if s.strategy == Pool {
			return s.run(state, dispatchPool[T](p), false)
		}
		return s.run(state, dispatchPoolChunks[T](p, s.workers), true)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, s.strategy)
}

// run drives passes until the state converges. Passes never overlap: the next pass is
// dispatched only after commit of the previous one returned. When foldCommit is set the
// tasks wrote their segments back themselves and only the bin size is advanced.
func (s *Sorter[T]) run(state *sortState[T], dispatch dispatchFunc[T], foldCommit bool) ([]T, error) {
	for pass := 0; !state.converged(); pass++ {
		if glog.V(4) {
			glog.Infof("%s: pass %d, bin size %d, %d tasks", s.strategy, pass, state.binSize, state.tasks())
		}
		if err := dispatch(state); err != nil {
			glog.Errorf("%s: pass %d at bin size %d aborted with error: %+v", s.strategy, pass, state.binSize, err)
			return nil, err
		}
		if foldCommit {
			state.advance()
		} else {
			state.commit()
		}
		if s.afterPass != nil {
			s.afterPass(state)
		}
	}

	return state.snapshot(), nil
}

// runTask merges the bin pair task, a panic is converted into ErrTaskFailed.
func runTask[T any](s *sortState[T], task int, writeBack bool) (err error) {
	p, ok := s.taskPosition(task)
	if !ok {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: bins [%d,%d,%d) at bin size %d: %+v", ErrTaskFailed, p.start, p.mid, p.end, s.binSize, r)
		}
	}()
	glog.V(5).Infof("merging bins [%d,%d) and [%d,%d)", p.start, p.mid, p.mid, p.end)
	s.merge(p)
	if writeBack {
		s.writeBack(p)
	}

	return nil
}

// runTasks merges the bin pairs of r in order, stopping at the first failure.
func runTasks[T any](s *sortState[T], r taskRange, writeBack bool) error {
	for task := r.from; task < r.to; task++ {
		if err := runTask(s, task, writeBack); err != nil {
			return err
		}
	}
	return nil
}

// awaitTasks receives exactly n completion messages and returns the first error.
// All n are drained so that no task still touches the state once it returns.
func awaitTasks(done <-chan error, n int) error {
	var first error
	for i := 0; i < n; i++ {
		if err := <-done; err != nil && first == nil {
			first = err
		}
	}
	return first
}
