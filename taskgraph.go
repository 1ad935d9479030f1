package stencil

import "math/bits"

// popcountOrder returns all 2^dims bitmask indices in ascending popcount
// order: all of popcount 0 first, then popcount 1, and so on. Order within a
// popcount class is plain ascending index order, which only affects
// diagnostics (the tasks in a class are mutually independent).
func popcountOrder(dims int) []int {
	n := 1 << dims
	order := make([]int, 0, n)
	for pc := 0; pc <= dims; pc++ {
		for i := 0; i < n; i++ {
			if bits.OnesCount(uint(i)) == pc {
				order = append(order, i)
			}
		}
	}
	return order
}

// predecessorsOf returns, for bitmask idx, the indices obtained by clearing
// exactly one of its set bits: its immediate subsets in the hyper-cube
// lattice.
func predecessorsOf(idx int) []int {
	var preds []int
	for bit := 0; idx>>bit != 0; bit++ {
		mask := 1 << bit
		if idx&mask != 0 {
			preds = append(preds, idx&^mask)
		}
	}
	return preds
}
