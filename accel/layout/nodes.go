package layout

import "github.com/achilleasa/lbvh/types"

// Size of an encoded AABB (f32[2][3]).
const AABBSize = 24

// Internal (box32) nodes store four child IDs followed by the four child
// bounding boxes:
//
//	[  0, 16) children [4]u32
//	[ 16,112) coords   [4][2][3]f32
//	[112,128) reserved
//
// Nodes are 32-byte aligned.
const (
	Box32NodeSize      = 128
	Box32NodeAlignment = 32
	Box32Children      = 4

	box32ChildrenOffset = 0
	box32CoordsOffset   = 16
)

// Leaf records. Both leaf kinds take 64 bytes.
//
// Triangle leaf:
//
//	[ 0,36) coords      [3][3]f32
//	[48,52) triangle_id u32
//	[52,56) geometry_id u32
//
// AABB leaf:
//
//	[ 0,24) aabb         [2][3]f32
//	[24,28) primitive_id u32
//	[28,32) geometry_id  u32
const (
	LeafNodeSize = 64

	triangleIDOffset         = 48
	triangleGeometryIDOffset = 52

	aabbPrimitiveIDOffset = 24
	aabbGeometryIDOffset  = 28
)

// A view over an internal node stored in a Buffer.
type Box32Node struct {
	buf    *Buffer
	offset uint32
}

// Get a view of the internal node at offset.
func (b *Buffer) Box32Node(offset uint32) Box32Node {
	return Box32Node{buf: b, offset: offset}
}

// Get the node offset.
func (n Box32Node) Offset() uint32 {
	return n.offset
}

// Get the ID of child slot i.
func (n Box32Node) Child(i int) NodeID {
	return NodeID(n.buf.Uint32(n.offset + box32ChildrenOffset + uint32(i)*4))
}

// Set the ID of child slot i.
func (n Box32Node) SetChild(i int, id NodeID) {
	n.buf.PutUint32(n.offset+box32ChildrenOffset+uint32(i)*4, uint32(id))
}

// Get the bounds of child slot i.
func (n Box32Node) ChildBounds(i int) types.AABB {
	return n.buf.AABB(n.offset + box32CoordsOffset + uint32(i)*AABBSize)
}

// Set the bounds of child slot i.
func (n Box32Node) SetChildBounds(i int, box types.AABB) {
	n.buf.PutAABB(n.offset+box32CoordsOffset+uint32(i)*AABBSize, box)
}

// Get the number of used child slots. Unused slots carry NaN bounds.
func (n Box32Node) ChildCount() int {
	count := 0
	for i := 0; i < Box32Children; i++ {
		if !n.ChildBounds(i).IsNaN() {
			count++
		}
	}
	return count
}

// Get the union of the used child bounds.
func (n Box32Node) Bounds() types.AABB {
	total := types.EmptyAABB()
	for i := 0; i < Box32Children; i++ {
		box := n.ChildBounds(i)
		if box.IsNaN() {
			continue
		}
		total = total.Union(box)
	}
	return total
}

// Write a triangle leaf at offset.
func (b *Buffer) PutTriangleLeaf(offset uint32, v0, v1, v2 types.Vec3, triangleID, geometryID uint32) {
	b.PutVec3(offset, v0)
	b.PutVec3(offset+12, v1)
	b.PutVec3(offset+24, v2)
	b.PutUint32(offset+triangleIDOffset, triangleID)
	b.PutUint32(offset+triangleGeometryIDOffset, geometryID)
}

// Read the vertices of the triangle leaf at offset.
func (b *Buffer) TriangleLeaf(offset uint32) (v0, v1, v2 types.Vec3) {
	return b.Vec3(offset), b.Vec3(offset + 12), b.Vec3(offset + 24)
}

// Get the triangle and geometry IDs of the triangle leaf at offset.
func (b *Buffer) TriangleLeafIDs(offset uint32) (triangleID, geometryID uint32) {
	return b.Uint32(offset + triangleIDOffset), b.Uint32(offset + triangleGeometryIDOffset)
}

// Write an AABB leaf at offset.
func (b *Buffer) PutAABBLeaf(offset uint32, box types.AABB, primitiveID, geometryID uint32) {
	b.PutAABB(offset, box)
	b.PutUint32(offset+aabbPrimitiveIDOffset, primitiveID)
	b.PutUint32(offset+aabbGeometryIDOffset, geometryID)
}

// Get the primitive and geometry IDs of the AABB leaf at offset.
func (b *Buffer) AABBLeafIDs(offset uint32) (primitiveID, geometryID uint32) {
	return b.Uint32(offset + aabbPrimitiveIDOffset), b.Uint32(offset + aabbGeometryIDOffset)
}
