package lbvh

import (
	"sync/atomic"

	"github.com/achilleasa/lbvh/accel/morton"
	"github.com/achilleasa/lbvh/types"
)

// WorldBounds accumulates the union of leaf bounds from concurrent work
// items. Extents are stored as order-preserving integers (see
// morton.EncodeFloat) so they can be reduced with atomic integer min/max.
type WorldBounds struct {
	words [6]int32
}

// Create an empty world bounds accumulator.
func NewWorldBounds() *WorldBounds {
	w := &WorldBounds{}
	w.Reset()
	return w
}

// Create an accumulator initialized to box.
func NewWorldBoundsFrom(box types.AABB) *WorldBounds {
	w := &WorldBounds{}
	w.words = morton.EncodeAABB(box)
	return w
}

// Reset to the empty AABB.
func (w *WorldBounds) Reset() {
	for i, v := range morton.EncodeAABB(types.EmptyAABB()) {
		atomic.StoreInt32(&w.words[i], v)
	}
}

// Extend the bounds to include box. Safe for concurrent use.
func (w *WorldBounds) Extend(box types.AABB) {
	for axis := 0; axis < 3; axis++ {
		atomicMin(&w.words[axis], morton.EncodeFloat(box.Min[axis]))
		atomicMax(&w.words[axis+3], morton.EncodeFloat(box.Max[axis]))
	}
}

// Get the raw encoded word at index i (min xyz, max xyz).
func (w *WorldBounds) Word(i int) uint32 {
	return uint32(atomic.LoadInt32(&w.words[i]))
}

// Decode the accumulated bounds.
func (w *WorldBounds) Load() types.AABB {
	return types.AABB{
		Min: types.Vec3{morton.LoadMinMaxFloat(w.Word(0)), morton.LoadMinMaxFloat(w.Word(1)), morton.LoadMinMaxFloat(w.Word(2))},
		Max: types.Vec3{morton.LoadMinMaxFloat(w.Word(3)), morton.LoadMinMaxFloat(w.Word(4)), morton.LoadMinMaxFloat(w.Word(5))},
	}
}

func atomicMin(addr *int32, v int32) {
	for {
		cur := atomic.LoadInt32(addr)
		if v >= cur || atomic.CompareAndSwapInt32(addr, cur, v) {
			return
		}
	}
}

func atomicMax(addr *int32, v int32) {
	for {
		cur := atomic.LoadInt32(addr)
		if v <= cur || atomic.CompareAndSwapInt32(addr, cur, v) {
			return
		}
	}
}
