// Package stencil implements a parallel stencil execution engine: given an
// N-dimensional grid A, a step count T, and a pure per-cell update function
// f(t, p, A) -> value, it produces the grid state after T sweeps in which
// every cell at step t+1 is computed from cells in a bounded neighborhood of
// its position at step t. Five execution strategies are available, all
// producing identical results: sequential and parallel iterative sweeps, a
// fine-grained neighborhood-synchronized sweep, and a cache-oblivious
// recursive space-time decomposition run either sequentially or in
// parallel.
package stencil

import (
	"fmt"

	"github.com/sbl8/stencil/internal/task"
)

// Run dispatches (a, steps, f) to the strategy named in opts.Strategy,
// returning a treeture representing the in-flight computation. Awaiting it
// (via Wait) yields nil on success and guarantees a holds the state at time
// steps; a negative steps is treated as 0.
func Run[T any](a Container[T], steps int64, f UpdateFunc[T], newLike Allocator[T], opts Options) *task.Treeture {
	if steps < 0 {
		steps = 0
	}
	opts.log().Debug("stencil run", "strategy", opts.Strategy.String(), "steps", steps)

	switch opts.Strategy {
	case SequentialIterative:
		return runSequentialIterative(a, steps, f, newLike, opts)
	case CoarseParallelIterative:
		return runCoarseParallelIterative(a, steps, f, newLike, opts)
	case FineParallelIterative:
		return runFineParallelIterative(a, steps, f, newLike, opts)
	case SequentialRecursive:
		return runSequentialRecursive(a, steps, f, newLike, opts)
	case ParallelRecursive:
		return runParallelRecursive(a, steps, f, newLike, opts)
	default:
		return task.Spawn(nil, func() error {
			return fmt.Errorf("stencil: unknown strategy %v", int(opts.Strategy))
		})
	}
}

// Stencil runs with DefaultOptions, i.e. the fine-grained parallel iterative
// strategy.
func Stencil[T any](a Container[T], steps int64, f UpdateFunc[T], newLike Allocator[T]) *task.Treeture {
	return Run(a, steps, f, newLike, DefaultOptions())
}

// CheckedUpdateFunc is an UpdateFunc that may itself report failure, for
// callers whose per-cell computation can fail (e.g. an update that performs
// a bounded lookup outside the core's own guarantees). Its error surfaces as
// a normal error through the treeture rather than only as a recovered panic.
type CheckedUpdateFunc[T any] func(t int64, p Coord, v Container[T]) (T, error)

// RunChecked behaves like Run but for an update function that can fail. The
// first error returned by any cell's update aborts the run and is reported
// through the returned treeture's Wait.
func RunChecked[T any](a Container[T], steps int64, f CheckedUpdateFunc[T], newLike Allocator[T], opts Options) *task.Treeture {
	wrapped := func(t int64, p Coord, v Container[T]) T {
		val, err := f(t, p, v)
		if err != nil {
			panic(checkedUpdateError{err: err})
		}
		return val
	}
	return Run(a, steps, wrapped, newLike, opts)
}

type checkedUpdateError struct{ err error }

func (e checkedUpdateError) Error() string { return e.err.Error() }
func (e checkedUpdateError) Unwrap() error { return e.err }
