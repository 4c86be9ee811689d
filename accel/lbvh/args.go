package lbvh

import (
	"github.com/achilleasa/lbvh/accel/layout"
)

// A sort record pairing a Morton key with a packed node ID.
type KeyIDPair struct {
	Key uint32
	ID  layout.NodeID
}

// The high bit of a flat fill count requests the header stamp.
const fillHeaderFlag uint32 = 0x80000000

// Encode a level child count and the finalize flag into a single word for
// dispatch interfaces that only accept flat arguments.
func PackFillCount(count uint32, finalize bool) uint32 {
	fill := count &^ fillHeaderFlag
	if finalize {
		fill |= fillHeaderFlag
	}
	return fill
}

// Decode a flat fill count into the level child count and finalize flag.
func UnpackFillCount(fill uint32) (count uint32, finalize bool) {
	return fill &^ fillHeaderFlag, fill&fillHeaderFlag != 0
}

// Arguments for the world bounds reduction kernel.
type BoundsArgs struct {
	BVH    *layout.Buffer
	IDs    []KeyIDPair
	Bounds *WorldBounds

	// Resolves the bounds of a leaf; defaults to layout.NodeBounds.
	NodeBounds layout.BoundsFunc
}

// Arguments for the Morton keying kernel.
type MortonArgs struct {
	BVH    *layout.Buffer
	Bounds *WorldBounds
	IDs    []KeyIDPair

	// Resolves the bounds of a leaf; defaults to layout.NodeBounds.
	NodeBounds layout.BoundsFunc
}

// Arguments for the internal node packing kernel. One work item packs the
// children Src[4*gid : 4*gid+4] into the node at DstOffset + gid*Box32NodeSize
// and writes the node ID to Dst[gid].
type InternalArgs struct {
	BVH *layout.Buffer
	Src []KeyIDPair
	Dst []KeyIDPair

	// Offset of the first node of this level.
	DstOffset uint32

	// Number of children in this level.
	Count uint32

	// Stamp the root and world bounds into the header. Only valid for the
	// level that produces a single node.
	Finalize bool

	// Resolves the bounds of a child node; defaults to layout.NodeBounds.
	NodeBounds layout.BoundsFunc
}

// Get the flat fill count for these arguments.
func (a InternalArgs) FillCount() uint32 {
	return PackFillCount(a.Count, a.Finalize)
}

// Set Count and Finalize from a flat fill count.
func (a *InternalArgs) SetFillCount(fill uint32) {
	a.Count, a.Finalize = UnpackFillCount(fill)
}

// Get the number of work items (parent nodes) for this level.
func (a InternalArgs) Groups() uint32 {
	return groupCount(a.Count)
}

func groupCount(children uint32) uint32 {
	return (children + layout.Box32Children - 1) / layout.Box32Children
}

func boundsFunc(fn layout.BoundsFunc) layout.BoundsFunc {
	if fn == nil {
		return layout.NodeBounds
	}
	return fn
}
