package stencil

import (
	"context"
	"fmt"
	"unsafe"

	"golang.org/x/sync/errgroup"

	"github.com/sbl8/stencil/core"
	"github.com/sbl8/stencil/internal/task"
)

func runSequentialIterative[T any](a Container[T], steps int64, f UpdateFunc[T], newLike Allocator[T], opts Options) *task.Treeture {
	return task.Spawn(nil, func() error {
		size := a.Size()
		b := newLike(size)
		x, y := a, b
		for t := int64(0); t < steps; t++ {
			forEachIndex(size, func(p Coord) {
				y.Set(p, f(t, p, x))
			})
			x, y = y, x
		}
		finishDoubleBuffer(a, b, steps)
		return nil
	})
}

func runCoarseParallelIterative[T any](a Container[T], steps int64, f UpdateFunc[T], newLike Allocator[T], opts Options) *task.Treeture {
	return task.Spawn(nil, func() error {
		size := a.Size()
		b := newLike(size)
		x, y := a, b
		var zero T
		chunk := core.OptimalBatchSize(int(unsafe.Sizeof(zero)))
		for t := int64(0); t < steps; t++ {
			if err := parallelForIndex(size, opts.workers(), chunk, func(p Coord) {
				y.Set(p, f(t, p, x))
			}); err != nil {
				return err
			}
			x, y = y, x
		}
		finishDoubleBuffer(a, b, steps)
		return nil
	})
}

// parallelForIndex runs fn over every coordinate in size, bounded to workers
// concurrent goroutines via errgroup, batching chunk linear indices per
// goroutine to amortize scheduling overhead. It is a full barrier: it does
// not return until every coordinate has been visited.
func parallelForIndex(size Size, workers, chunk int, fn func(Coord)) error {
	total := size.Total()
	if total <= 0 {
		return nil
	}
	if chunk < 1 {
		chunk = 1
	}

	strides := stridesFor(size)
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	for start := int64(0); start < total; start += int64(chunk) {
		start := start
		end := start + int64(chunk)
		if end > total {
			end = total
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					if asErr, ok := r.(error); ok {
						err = asErr
						return
					}
					err = fmt.Errorf("stencil: panic in update function: %v", r)
				}
			}()
			for linear := start; linear < end; linear++ {
				fn(unflatten(linear, size, strides))
			}
			return nil
		})
	}
	return g.Wait()
}

func stridesFor(size Size) []int64 {
	dims := len(size)
	strides := make([]int64, dims)
	stride := int64(1)
	for d := dims - 1; d >= 0; d-- {
		strides[d] = stride
		stride *= size[d]
	}
	return strides
}

func unflatten(linear int64, size Size, strides []int64) Coord {
	pos := make(Coord, len(size))
	for d := 0; d < len(size); d++ {
		pos[d] = (linear / strides[d]) % size[d]
	}
	return pos
}

// runFineParallelIterative gives task (t,i) a dependency only on tasks
// (t-1,j) for j within opts.radius() of i (Chebyshev distance, wrapped per
// axis), rather than on the whole previous step. The per-cell treeture set
// from step t-1 is the loop-reference carried into step t; the final
// reference is the join of every slot from the last step.
func runFineParallelIterative[T any](a Container[T], steps int64, f UpdateFunc[T], newLike Allocator[T], opts Options) *task.Treeture {
	return task.Spawn(nil, func() error {
		size := a.Size()
		b := newLike(size)
		x, y := a, b
		strides := stridesFor(size)
		total := size.Total()

		var prev []*task.Treeture // nil entries mean "already satisfied"
		offsets := neighborOffsets(len(size), opts.radius())

		var last *task.Treeture
		for t := int64(0); t < steps; t++ {
			t := t
			read, write := x, y // per-iteration snapshot: immune to the x,y swap below
			cur := make([]*task.Treeture, total)
			for linear := int64(0); linear < total; linear++ {
				linear := linear
				p := unflatten(linear, size, strides)
				deps := neighborDeps(p, size, strides, offsets, prev)
				cur[linear] = task.Spawn(deps, func() error {
					write.Set(p, f(t, p, read))
					return nil
				})
			}
			prev = cur
			last = task.Join(cur...)
			x, y = y, x
		}
		if last != nil {
			if err := last.Wait(); err != nil {
				return err
			}
		}
		finishDoubleBuffer(a, b, steps)
		return nil
	})
}

// neighborOffsets enumerates every integer vector in {-r..r}^dims.
func neighborOffsets(dims int, r int64) []Coord {
	if dims == 0 {
		return []Coord{{}}
	}
	var out []Coord
	var rec func(prefix Coord)
	rec = func(prefix Coord) {
		if len(prefix) == dims {
			out = append(out, prefix.Clone())
			return
		}
		for d := -r; d <= r; d++ {
			rec(append(prefix, d))
		}
	}
	rec(Coord{})
	return out
}

func neighborDeps(p Coord, size Size, strides []int64, offsets []Coord, prev []*task.Treeture) []*task.Treeture {
	if prev == nil {
		return nil
	}
	seen := make(map[int64]bool, len(offsets))
	deps := make([]*task.Treeture, 0, len(offsets))
	for _, off := range offsets {
		linear := int64(0)
		for d := range p {
			v := (p[d] + off[d]) % size[d]
			if v < 0 {
				v += size[d]
			}
			linear += v * strides[d]
		}
		if seen[linear] {
			continue
		}
		seen[linear] = true
		if prev[linear] != nil {
			deps = append(deps, prev[linear])
		}
	}
	return deps
}

// finishDoubleBuffer copies b's contents back into a when steps is odd,
// which is exactly when the last write landed in b rather than a (the loop
// starts with x=a,y=b and swaps every step, so after an odd number of
// steps the most recently written buffer is b).
func finishDoubleBuffer[T any](a, b Container[T], steps int64) {
	if steps%2 != 0 {
		copyInto(a, b)
	}
}
