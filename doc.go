// Package stencil implements a parallel stencil execution engine over
// N-dimensional grids.
//
// Given a grid A, a step count T, and a per-cell update function
// f(t, p, A) -> value, the engine advances A through T time steps, with
// every cell at step t+1 computed from cells within a bounded neighborhood
// of its position at step t. Five execution strategies are available,
// selected via Options.Strategy, all producing bit-identical results for a
// pure update function:
//
//   - SequentialIterative: a plain nested loop over the whole grid, one
//     time step at a time.
//   - CoarseParallelIterative: the same sweep, parallelized within a step
//     via a bounded worker pool, with a full barrier between steps.
//   - FineParallelIterative: a per-cell task graph in which cell p at step
//     t depends only on the cells within Options.NeighborhoodRadius of p
//     at step t-1, pipelining across steps instead of barrier-synchronizing.
//   - SequentialRecursive / ParallelRecursive: a cache-oblivious recursive
//     decomposition of the space-time volume into trapezoidal zoids, run
//     either depth-first or as a dependency-wired task graph.
//
// Run dispatches to the configured strategy and returns a treeture
// (internal/task.Treeture) representing the in-flight computation; Wait on
// it to block for completion and observe any error.
//
// Grid is the reference Container implementation, but any type satisfying
// Container[T] can be used in its place; an Allocator[T] supplies the
// shadow buffer a double-buffered strategy needs.
package stencil
