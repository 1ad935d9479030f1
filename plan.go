package stencil

import "github.com/sbl8/stencil/internal/task"

// Layer is one time-contiguous slab of the plan: a hyper-cube of 2^N root
// zoids indexed by an N-bit mask.
type Layer struct {
	Zoids []Zoid
}

// ExecutionPlan is an ordered sequence of layers covering [0, steps).
type ExecutionPlan struct {
	Layers []Layer
	Dims   int
}

// CreatePlan builds the plan for sweeping base across [0, steps) time steps.
func CreatePlan(base Base, steps int64) ExecutionPlan {
	dims := base.Dims()
	extent := base.Extent()
	width := base.MinWidth()

	height := width / 2
	if height < 1 {
		height = 1
	}

	type splitPoint struct {
		left, right Range
	}
	splits := make([]splitPoint, dims)
	for i := 0; i < dims; i++ {
		curWidth := extent[i]
		mid := curWidth - (curWidth-width)/2
		splits[i] = splitPoint{
			left:  Range{Begin: 0, End: mid},
			right: Range{Begin: mid, End: curWidth},
		}
	}

	numZoids := 1 << dims
	var layers []Layer
	for t0 := int64(0); t0 < steps; t0 += height {
		t1 := t0 + height
		if t1 > steps {
			t1 = steps
		}

		zoids := make([]Zoid, numZoids)
		for m := 0; m < numZoids; m++ {
			bounds := make([]Range, dims)
			slopes := make(Slopes, dims)
			for j := 0; j < dims; j++ {
				if m&(1<<j) != 0 {
					slopes[j] = -1
					bounds[j] = splits[j].right
				} else {
					slopes[j] = 1
					bounds[j] = splits[j].left
				}
			}
			zoids[m] = Zoid{Base: Base{Bounds: bounds}, Slopes: slopes, TBegin: t0, TEnd: t1}
		}
		layers = append(layers, Layer{Zoids: zoids})
	}

	return ExecutionPlan{Layers: layers, Dims: dims}
}

// RunSequential runs every layer's zoids, in popcount-ascending order within
// each layer, in construction order across layers.
func (p ExecutionPlan) RunSequential(even, odd CellFunc, limits Size) {
	if p.Dims == 0 {
		return
	}
	order := popcountOrder(p.Dims)
	for _, layer := range p.Layers {
		for _, idx := range order {
			layer.Zoids[idx].ForEach(even, odd, limits)
		}
	}
}

// RunParallel issues every layer's zoids through ForEachParallel, wiring
// dependencies from the subset lattice (task m depends on every mask
// obtained by clearing one of its set bits) plus a link from task 0 of each
// layer to the last task of the previous one. It returns the treeture for
// the very last task, which completes once the whole plan has run.
func (p ExecutionPlan) RunParallel(even, odd CellFunc, limits Size) *task.Treeture {
	if p.Dims == 0 || len(p.Layers) == 0 {
		return task.Done()
	}
	order := popcountOrder(p.Dims)
	numTasks := 1 << p.Dims

	last := task.Done()
	for _, layer := range p.Layers {
		jobs := make([]*task.Treeture, numTasks)
		for _, idx := range order {
			var deps []*task.Treeture
			if idx == 0 {
				deps = task.After(nil, last)
			} else {
				preds := predecessorsOf(idx)
				deps = make([]*task.Treeture, len(preds))
				for i, pr := range preds {
					deps[i] = jobs[pr]
				}
			}
			jobs[idx] = layer.Zoids[idx].ForEachParallel(deps, even, odd, limits)
		}
		last = jobs[numTasks-1]
	}
	return last
}
