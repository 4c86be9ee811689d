package lbvh

import (
	"github.com/achilleasa/lbvh/accel/layout"
	"github.com/achilleasa/lbvh/accel/morton"
	"github.com/achilleasa/lbvh/types"
)

// Extend the world bounds with the bounds of leaf IDs[globalID].
func BoundsKernel(args BoundsArgs, globalID uint32) {
	nodeBounds := boundsFunc(args.NodeBounds)
	args.Bounds.Extend(nodeBounds(args.BVH, args.IDs[globalID].ID))
}

// Compute the Morton key of leaf IDs[globalID] and store it in place.
func MortonKernel(args MortonArgs, globalID uint32) {
	pair := &args.IDs[globalID]

	nodeBounds := boundsFunc(args.NodeBounds)
	bounds := nodeBounds(args.BVH, pair.ID)

	var world types.AABB
	for axis := 0; axis < 3; axis++ {
		world.Min[axis] = morton.LoadMinMaxFloat(args.Bounds.Word(axis))
		world.Max[axis] = morton.LoadMinMaxFloat(args.Bounds.Word(axis + 3))
	}

	pair.Key = morton.Key(world, bounds)
}

// Pack one group of up to four children into the internal node at
// dstOffset and return the node ID together with the union of the child
// bounds.
//
// The group covers src[4*groupIndex:], clamped to srcCount children. Used
// slots receive the child ID and bounds in input order; unused slots get a
// zero ID and NaN bounds and do not contribute to the returned AABB.
func PackGroup(buf *layout.Buffer, src []KeyIDPair, dstOffset, groupIndex, srcCount uint32, nodeBounds layout.BoundsFunc) (layout.NodeID, types.AABB) {
	nodeBounds = boundsFunc(nodeBounds)

	srcIndex := groupIndex * layout.Box32Children
	childCount := srcCount - srcIndex
	if childCount > layout.Box32Children {
		childCount = layout.Box32Children
	}

	node := buf.Box32Node(dstOffset)
	total := types.EmptyAABB()
	for i := uint32(0); i < layout.Box32Children; i++ {
		bounds := types.NaNAABB()
		var childID layout.NodeID

		if i < childCount {
			childID = src[srcIndex+i].ID
			bounds = nodeBounds(buf, childID)
			total = total.Union(bounds)
		}

		node.SetChild(int(i), childID)
		node.SetChildBounds(int(i), bounds)
	}

	return layout.PackNodeID(dstOffset, layout.Internal), total
}

// Pack the children of group globalID into an internal node, record the
// node in Dst[globalID] and, for the final level, stamp the header.
//
// The parent record inherits the key of its first child so the parent
// sequence stays in key order for the next level.
func InternalKernel(args InternalArgs, globalID uint32) {
	dstOffset := args.DstOffset + globalID*layout.Box32NodeSize
	nodeID, total := PackGroup(args.BVH, args.Src, dstOffset, globalID, args.Count, args.NodeBounds)

	args.Dst[globalID] = KeyIDPair{
		Key: args.Src[globalID*layout.Box32Children].Key,
		ID:  nodeID,
	}

	if args.Finalize {
		args.BVH.Header().Stamp(nodeID, total)
	}
}
