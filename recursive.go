package stencil

import "github.com/sbl8/stencil/internal/task"

// buildUpdateClosures wires the even/odd CellFunc pair the zoid machinery
// expects onto a double-buffered Container[T] pair plus the caller's
// UpdateFunc: an even step reads a and writes b, an odd step reads b and
// writes a.
func buildUpdateClosures[T any](a, b Container[T], f UpdateFunc[T]) (even, odd CellFunc) {
	even = func(pos Coord, t int64) { b.Set(pos, f(t, pos, a)) }
	odd = func(pos Coord, t int64) { a.Set(pos, f(t, pos, b)) }
	return even, odd
}

func runSequentialRecursive[T any](a Container[T], steps int64, f UpdateFunc[T], newLike Allocator[T], opts Options) *task.Treeture {
	return task.Spawn(nil, func() error {
		size := a.Size()
		b := newLike(size)
		even, odd := buildUpdateClosures(a, b, f)
		plan := CreatePlan(FullBase(size), steps)
		plan.RunSequential(even, odd, size)
		finishDoubleBuffer(a, b, steps)
		return nil
	})
}

func runParallelRecursive[T any](a Container[T], steps int64, f UpdateFunc[T], newLike Allocator[T], opts Options) *task.Treeture {
	return task.Spawn(nil, func() error {
		size := a.Size()
		b := newLike(size)
		even, odd := buildUpdateClosures(a, b, f)
		plan := CreatePlan(FullBase(size), steps)
		if err := plan.RunParallel(even, odd, size).Wait(); err != nil {
			return err
		}
		finishDoubleBuffer(a, b, steps)
		return nil
	})
}
