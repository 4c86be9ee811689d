package layout

import "fmt"

// The type of a node stored in the acceleration structure buffer.
type NodeType uint32

// Node type tags. Only Internal nodes are produced by the builder; the
// remaining tags are shared with leaf encoders and traversal code.
const (
	Triangle NodeType = 0
	Box16    NodeType = 4
	Internal NodeType = 5
	Instance NodeType = 6
	AABBLeaf NodeType = 7
)

const (
	// Number of low bits of a node ID that hold the node type.
	NodeTypeBits = 3

	nodeTypeMask = 1<<NodeTypeBits - 1

	// The largest byte offset that can be packed into a node ID.
	MaxNodeOffset = 1<<(32-NodeTypeBits) - 1
)

// Implements Stringer.
func (t NodeType) String() string {
	switch t {
	case Triangle:
		return "triangle"
	case Box16:
		return "box16"
	case Internal:
		return "box32"
	case Instance:
		return "instance"
	case AABBLeaf:
		return "aabb"
	default:
		return fmt.Sprintf("NodeType(%d)", uint32(t))
	}
}

// A 32-bit node handle: (byte offset << NodeTypeBits) | node type.
type NodeID uint32

// Pack a buffer offset and a node type into a node ID.
func PackNodeID(offset uint32, nodeType NodeType) NodeID {
	return NodeID(offset<<NodeTypeBits | uint32(nodeType)&nodeTypeMask)
}

// Get the byte offset of the node from the start of the buffer.
func (id NodeID) Offset() uint32 {
	return uint32(id) >> NodeTypeBits
}

// Get the node type.
func (id NodeID) Type() NodeType {
	return NodeType(uint32(id) & nodeTypeMask)
}

// Implements Stringer.
func (id NodeID) String() string {
	return fmt.Sprintf("%s@%d", id.Type(), id.Offset())
}
