// Package core holds memory-layout helpers shared by the grid containers.
package core

const (
	// CacheLineSize is a common cache line size, typically 64 bytes.
	CacheLineSize = 64
)

// AlignedSize rounds size up to the nearest cache line multiple. Grid row
// strides are padded to this so that two adjacent rows never share a cache
// line, which matters once rows are touched by different goroutines in the
// coarse- and fine-grained parallel strategies.
func AlignedSize(size uintptr) uintptr {
	return (size + uintptr(CacheLineSize-1)) &^ uintptr(CacheLineSize-1)
}
