package stencil

import (
	"unsafe"

	"github.com/sbl8/stencil/core"
)

// Grid is the reference N-dimensional Container implementation. Its
// innermost row stride is padded to a cache line multiple (via
// core.AlignedSize) so that concurrent writers in the coarse- and
// fine-grained strategies, operating on different rows, never false-share a
// cache line.
type Grid[T any] struct {
	size        Size
	rowElems    int64 // padded stride, in elements, of the innermost dimension
	outerStride []int64
	data        []T
}

// NewGrid allocates a zero-valued grid of the given size. Once instantiated
// it satisfies Allocator[T] as is, e.g. stencil.Allocator[T](stencil.NewGrid[T]).
func NewGrid[T any](size Size) Container[T] {
	g := &Grid[T]{size: size.Clone()}
	dims := len(size)
	if dims == 0 {
		return g
	}

	var elemSize uintptr
	var zero T
	elemSize = unsafe.Sizeof(zero)
	if elemSize == 0 {
		elemSize = 1
	}

	innerWidth := size[dims-1]
	alignedBytes := int64(core.AlignedSize(uintptr(innerWidth) * elemSize))
	rowElems := alignedBytes / int64(elemSize)
	if rowElems < innerWidth {
		rowElems = innerWidth
	}
	g.rowElems = rowElems

	g.outerStride = make([]int64, dims)
	stride := rowElems
	for d := dims - 2; d >= 0; d-- {
		g.outerStride[d] = stride
		stride *= size[d]
	}
	if dims >= 1 {
		g.outerStride[dims-1] = 1
	}

	total := rowElems
	for d := 0; d < dims-1; d++ {
		total *= size[d]
	}
	g.data = make([]T, total)
	return g
}

func (g *Grid[T]) Size() Size {
	return g.size.Clone()
}

func (g *Grid[T]) index(p Coord) int64 {
	idx := int64(0)
	for d, v := range p {
		idx += v * g.outerStride[d]
	}
	return idx
}

func (g *Grid[T]) At(p Coord) T {
	return g.data[g.index(p)]
}

func (g *Grid[T]) Set(p Coord, v T) {
	g.data[g.index(p)] = v
}
