package layout

import "github.com/achilleasa/lbvh/types"

// The acceleration structure header lives at offset 0:
//
//	[ 0, 4) root_node_offset    u32 (packed ID of the root node)
//	[ 4, 8) reserved
//	[ 8,32) aabb                f32[2][3]
//	[32,36) internal_node_count u32
//	[36,40) leaf_count          u32
//	[40,48) size                u64
//	[48,52) build_flags         u32
//	[52,64) reserved
const (
	HeaderSize = 64

	headerRootOffset          = 0
	headerAABBOffset          = 8
	headerInternalCountOffset = 32
	headerLeafCountOffset     = 36
	headerSizeOffset          = 40
	headerBuildFlagsOffset    = 48
)

// A view over the header of a Buffer.
type Header struct {
	buf *Buffer
}

// Get a view of the buffer header.
func (b *Buffer) Header() Header {
	return Header{buf: b}
}

// Get the packed ID of the root node.
func (h Header) Root() NodeID {
	return NodeID(h.buf.Uint32(headerRootOffset))
}

// Get the world bounds of the tree.
func (h Header) AABB() types.AABB {
	return h.buf.AABB(headerAABBOffset)
}

// Record the root node and world bounds. This is performed once per build,
// by the work item that produces the root.
func (h Header) Stamp(root NodeID, bounds types.AABB) {
	h.buf.PutUint32(headerRootOffset, uint32(root))
	h.buf.PutAABB(headerAABBOffset, bounds)
}

// Returns true if a root has been recorded.
func (h Header) IsStamped() bool {
	return h.Root() != 0
}

func (h Header) InternalNodeCount() uint32 {
	return h.buf.Uint32(headerInternalCountOffset)
}

func (h Header) LeafCount() uint32 {
	return h.buf.Uint32(headerLeafCountOffset)
}

// Get the total size of the acceleration structure in bytes.
func (h Header) Size() uint64 {
	return h.buf.Uint64(headerSizeOffset)
}

func (h Header) BuildFlags() uint32 {
	return h.buf.Uint32(headerBuildFlagsOffset)
}

// Record the build bookkeeping fields.
func (h Header) SetCounts(internalNodes, leaves uint32, size uint64, buildFlags uint32) {
	h.buf.PutUint32(headerInternalCountOffset, internalNodes)
	h.buf.PutUint32(headerLeafCountOffset, leaves)
	h.buf.PutUint64(headerSizeOffset, size)
	h.buf.PutUint32(headerBuildFlagsOffset, buildFlags)
}
