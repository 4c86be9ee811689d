package layout

import (
	"errors"
	"testing"

	"github.com/achilleasa/lbvh/types"
	"github.com/stretchr/testify/require"
)

func TestPackNodeID(t *testing.T) {
	type spec struct {
		offset uint32
		typ    NodeType
		exp    NodeID
	}
	specs := []spec{
		{0, Triangle, 0},
		{64, Triangle, 512},
		{128, Internal, 128<<3 | 5},
		{MaxNodeOffset, AABBLeaf, 0xFFFFFFFF},
	}

	for index, s := range specs {
		id := PackNodeID(s.offset, s.typ)
		if id != s.exp {
			t.Fatalf("[spec %d] expected packed id to be 0x%08x; got 0x%08x", index, uint32(s.exp), uint32(id))
		}
		if id.Offset() != s.offset {
			t.Fatalf("[spec %d] expected offset to be %d; got %d", index, s.offset, id.Offset())
		}
		if id.Type() != s.typ {
			t.Fatalf("[spec %d] expected type to be %s; got %s", index, s.typ, id.Type())
		}
	}
}

func TestBufferRoundTrip(t *testing.T) {
	buf := NewBuffer(128)

	buf.PutUint32(4, 0xDEADBEEF)
	require.Equal(t, uint32(0xDEADBEEF), buf.Uint32(4))
	require.Equal(t, []byte{0xEF, 0xBE, 0xAD, 0xDE}, buf.Slice(4, 4), "fields must be little-endian")

	buf.PutUint64(8, 1<<40|7)
	require.Equal(t, uint64(1<<40|7), buf.Uint64(8))

	box := types.NewAABB(types.XYZ(-1, -2, -3), types.XYZ(4, 5, 6))
	buf.PutAABB(32, box)
	require.True(t, buf.AABB(32).Equal(box))

	require.NoError(t, buf.CheckRange(64, 64))
	require.Error(t, buf.CheckRange(65, 64))
}

func TestBox32Node(t *testing.T) {
	buf := NewBuffer(HeaderSize + Box32NodeSize)
	node := buf.Box32Node(HeaderSize)

	a := types.NewAABB(types.XYZ(0, 0, 0), types.XYZ(1, 1, 1))
	b := types.NewAABB(types.XYZ(-1, 2, 0), types.XYZ(0, 3, 0.5))
	node.SetChild(0, PackNodeID(256, Triangle))
	node.SetChildBounds(0, a)
	node.SetChild(1, PackNodeID(320, Triangle))
	node.SetChildBounds(1, b)
	node.SetChildBounds(2, types.NaNAABB())
	node.SetChildBounds(3, types.NaNAABB())

	require.Equal(t, 2, node.ChildCount())
	require.Equal(t, PackNodeID(320, Triangle), node.Child(1))
	require.True(t, node.Bounds().Equal(a.Union(b)))
	require.True(t, NodeBounds(buf, PackNodeID(HeaderSize, Internal)).Equal(a.Union(b)))
}

func TestLeafBounds(t *testing.T) {
	buf := NewBuffer(HeaderSize + 2*LeafNodeSize)

	buf.PutTriangleLeaf(HeaderSize, types.XYZ(0, 1, 2), types.XYZ(3, -1, 0), types.XYZ(1, 1, 5), 7, 2)
	got := NodeBounds(buf, PackNodeID(HeaderSize, Triangle))
	require.True(t, got.Equal(types.NewAABB(types.XYZ(0, -1, 0), types.XYZ(3, 1, 5))), "got %v", got)

	triID, geomID := buf.TriangleLeafIDs(HeaderSize)
	require.Equal(t, uint32(7), triID)
	require.Equal(t, uint32(2), geomID)

	box := types.NewAABB(types.XYZ(-5, -5, -5), types.XYZ(-4, -3, -2))
	buf.PutAABBLeaf(HeaderSize+LeafNodeSize, box, 11, 3)
	require.True(t, NodeBounds(buf, PackNodeID(HeaderSize+LeafNodeSize, AABBLeaf)).Equal(box))

	primID, geomID := buf.AABBLeafIDs(HeaderSize + LeafNodeSize)
	require.Equal(t, uint32(11), primID)
	require.Equal(t, uint32(3), geomID)

	require.True(t, NodeBounds(buf, PackNodeID(HeaderSize, Instance)).IsEmpty())
}

func TestHeader(t *testing.T) {
	buf := NewBuffer(HeaderSize)
	hdr := buf.Header()
	require.False(t, hdr.IsStamped())

	root := PackNodeID(512, Internal)
	box := types.NewAABB(types.XYZ(0, 0, 0), types.XYZ(1, 2, 3))
	hdr.Stamp(root, box)
	hdr.SetCounts(3, 9, 4096, 1)

	require.True(t, hdr.IsStamped())
	require.Equal(t, root, hdr.Root())
	require.True(t, hdr.AABB().Equal(box))
	require.Equal(t, uint32(3), hdr.InternalNodeCount())
	require.Equal(t, uint32(9), hdr.LeafCount())
	require.Equal(t, uint64(4096), hdr.Size())
	require.Equal(t, uint32(1), hdr.BuildFlags())
}

func TestPlan(t *testing.T) {
	type spec struct {
		leaves    uint32
		expWidths []uint32
	}
	specs := []spec{
		{1, []uint32{1}},
		{4, []uint32{1}},
		{5, []uint32{2, 1}},
		{16, []uint32{4, 1}},
		{64, []uint32{16, 4, 1}},
		{65, []uint32{17, 5, 2, 1}},
	}

	for index, s := range specs {
		p, err := NewPlan(s.leaves)
		require.NoError(t, err, "spec %d", index)
		require.Equal(t, s.expWidths, p.LevelWidths, "spec %d", index)

		var total uint32
		for _, w := range s.expWidths {
			total += w
		}
		require.Equal(t, total, p.InternalNodeCount, "spec %d", index)
		require.Zero(t, p.InternalOffset%Box32NodeAlignment, "spec %d", index)
		require.GreaterOrEqual(t, p.InternalOffset, p.LeafNodeOffset(s.leaves-1)+LeafNodeSize, "spec %d", index)
		require.Equal(t, p.InternalOffset+total*Box32NodeSize, p.Size, "spec %d", index)
	}

	_, err := NewPlan(0)
	require.Error(t, err)
}

func TestAllocator(t *testing.T) {
	alloc := NewAllocator(70, 512)

	offset, err := alloc.Alloc(Box32NodeSize, Box32NodeAlignment)
	require.NoError(t, err)
	require.Equal(t, uint32(96), offset)

	offset, err = alloc.Alloc(2*Box32NodeSize, Box32NodeAlignment)
	require.NoError(t, err)
	require.Equal(t, uint32(224), offset)
	require.Equal(t, uint32(480), alloc.Next())

	_, err = alloc.Alloc(Box32NodeSize, Box32NodeAlignment)
	require.True(t, errors.Is(err, ErrOutOfSpace))
}
