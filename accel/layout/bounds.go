package layout

import "github.com/achilleasa/lbvh/types"

// BoundsFunc returns the AABB of the node referenced by id.
type BoundsFunc func(buf *Buffer, id NodeID) types.AABB

// Calculate the bounds of a triangle leaf, AABB leaf or internal node.
// Unknown node types yield the empty AABB.
func NodeBounds(buf *Buffer, id NodeID) types.AABB {
	offset := id.Offset()
	switch id.Type() {
	case Triangle:
		v0, v1, v2 := buf.TriangleLeaf(offset)
		return types.AABB{
			Min: types.MinVec3(types.MinVec3(v0, v1), v2),
			Max: types.MaxVec3(types.MaxVec3(v0, v1), v2),
		}
	case AABBLeaf:
		return buf.AABB(offset)
	case Internal:
		return buf.Box32Node(offset).Bounds()
	}
	return types.EmptyAABB()
}
