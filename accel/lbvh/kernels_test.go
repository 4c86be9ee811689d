package lbvh

import (
	"testing"

	"github.com/achilleasa/lbvh/accel/layout"
	"github.com/achilleasa/lbvh/accel/morton"
	"github.com/achilleasa/lbvh/types"
	"github.com/stretchr/testify/require"
)

func TestMortonKernelKeysIncreaseAlongX(t *testing.T) {
	var boxes []types.AABB
	for _, x := range []float32{0.1, 0.4, 0.6, 0.9} {
		boxes = append(boxes, unitBox(types.Vec3{x, 0.5, 0.5}, 0.005))
	}

	buf, _, ids, err := NewAABBBuffer(boxes, 0)
	require.NoError(t, err)

	pairs := make([]KeyIDPair, len(ids))
	world := NewWorldBounds()
	for i, id := range ids {
		pairs[i].ID = id
		BoundsKernel(BoundsArgs{BVH: buf, IDs: pairs, Bounds: world}, uint32(i))
	}

	args := MortonArgs{BVH: buf, Bounds: world, IDs: pairs}
	for i := range pairs {
		MortonKernel(args, uint32(i))
	}

	for i, pair := range pairs {
		if pair.ID != ids[i] {
			t.Fatalf("[%d] expected kernel to keep id %s; got %s", i, ids[i], pair.ID)
		}
		if pair.Key&morton.KeyTagMask != 0 {
			t.Fatalf("[%d] expected low key bits to be zero; got %#x", i, pair.Key)
		}
		if i > 0 && pair.Key <= pairs[i-1].Key {
			t.Fatalf("[%d] expected key %#x to be greater than %#x", i, pair.Key, pairs[i-1].Key)
		}
	}
}

func TestBoundsKernelUnion(t *testing.T) {
	boxes := randomBoxes(42, 50)
	buf, _, ids, err := NewAABBBuffer(boxes, 0)
	require.NoError(t, err)

	pairs := make([]KeyIDPair, len(ids))
	for i, id := range ids {
		pairs[i].ID = id
	}

	world := NewWorldBounds()
	args := BoundsArgs{BVH: buf, IDs: pairs, Bounds: world}
	exp := types.EmptyAABB()
	for i, box := range boxes {
		BoundsKernel(args, uint32(i))
		exp = exp.Union(box)
	}

	if got := world.Load(); !got.Equal(exp) {
		t.Fatalf("expected world bounds %v; got %v", exp, got)
	}
}

func TestPackGroup(t *testing.T) {
	boxes := randomBoxes(8, 6)
	buf, plan, ids, err := NewAABBBuffer(boxes, 0)
	require.NoError(t, err)

	src := make([]KeyIDPair, len(ids))
	for i, id := range ids {
		src[i].ID = id
	}

	specs := []struct {
		group       uint32
		expChildren int
	}{
		{0, 4},
		{1, 2},
	}

	for _, spec := range specs {
		dstOffset := plan.InternalOffset + spec.group*layout.Box32NodeSize
		nodeID, total := PackGroup(buf, src, dstOffset, spec.group, uint32(len(src)), nil)

		if exp := layout.PackNodeID(dstOffset, layout.Internal); nodeID != exp {
			t.Fatalf("[group %d] expected node id %s; got %s", spec.group, exp, nodeID)
		}

		node := buf.Box32Node(dstOffset)
		expTotal := types.EmptyAABB()
		for slot := 0; slot < layout.Box32Children; slot++ {
			if slot >= spec.expChildren {
				require.Equal(t, layout.NodeID(0), node.Child(slot))
				require.True(t, node.ChildBounds(slot).IsNaN())
				continue
			}

			leaf := int(spec.group)*layout.Box32Children + slot
			require.Equal(t, ids[leaf], node.Child(slot))
			require.True(t, node.ChildBounds(slot).Equal(boxes[leaf]))
			expTotal = expTotal.Union(boxes[leaf])
		}

		if !total.Equal(expTotal) {
			t.Fatalf("[group %d] expected node bounds %v; got %v", spec.group, expTotal, total)
		}
		if !node.Bounds().Equal(expTotal) {
			t.Fatalf("[group %d] expected stored bounds %v; got %v", spec.group, expTotal, node.Bounds())
		}
	}
}

func TestPackGroupCustomBounds(t *testing.T) {
	buf := layout.NewBuffer(layout.HeaderSize + layout.Box32NodeSize)
	src := []KeyIDPair{
		{ID: layout.PackNodeID(1000, layout.Instance)},
		{ID: layout.PackNodeID(2000, layout.Instance)},
	}

	// Instance nodes are not stored in buf; resolve them through the callback.
	instanceBounds := func(_ *layout.Buffer, id layout.NodeID) types.AABB {
		o := float32(id.Offset())
		return types.NewAABB(types.Splat(o), types.Splat(o+1))
	}

	_, total := PackGroup(buf, src, layout.HeaderSize, 0, 2, instanceBounds)
	require.True(t, total.Equal(types.NewAABB(types.Splat(1000), types.Splat(2001))))
}

func TestInternalKernelCarriesFirstChildKey(t *testing.T) {
	buf, plan, ids, err := NewAABBBuffer(randomBoxes(3, 9), 0)
	require.NoError(t, err)

	src := make([]KeyIDPair, len(ids))
	for i, id := range ids {
		src[i] = KeyIDPair{Key: uint32(100+i) << 8, ID: id}
	}
	dst := make([]KeyIDPair, 3)

	args := InternalArgs{BVH: buf, Src: src, Dst: dst, DstOffset: plan.InternalOffset, Count: 9}
	for gid := uint32(0); gid < args.Groups(); gid++ {
		InternalKernel(args, gid)
	}

	for gid, pair := range dst {
		if exp := src[gid*4].Key; pair.Key != exp {
			t.Fatalf("[group %d] expected key %#x; got %#x", gid, exp, pair.Key)
		}
	}
	require.False(t, buf.Header().IsStamped())
}

func TestFillCount(t *testing.T) {
	specs := []struct {
		count    uint32
		finalize bool
		exp      uint32
	}{
		{0, false, 0},
		{5, false, 5},
		{1, true, 0x80000001},
		{0x7FFFFFFF, true, 0xFFFFFFFF},
	}

	for _, spec := range specs {
		fill := PackFillCount(spec.count, spec.finalize)
		if fill != spec.exp {
			t.Errorf("expected PackFillCount(%d, %t) to be %#x; got %#x", spec.count, spec.finalize, spec.exp, fill)
		}

		count, finalize := UnpackFillCount(fill)
		if count != spec.count || finalize != spec.finalize {
			t.Errorf("expected UnpackFillCount(%#x) to be (%d, %t); got (%d, %t)", fill, spec.count, spec.finalize, count, finalize)
		}

		var args InternalArgs
		args.SetFillCount(fill)
		require.Equal(t, spec.count, args.Count)
		require.Equal(t, spec.finalize, args.Finalize)
		require.Equal(t, fill, args.FillCount())
	}
}

func TestInternalArgsGroups(t *testing.T) {
	for count, exp := range map[uint32]uint32{1: 1, 4: 1, 5: 2, 8: 2, 9: 3, 64: 16, 65: 17} {
		if got := (InternalArgs{Count: count}).Groups(); got != exp {
			t.Errorf("expected %d children to form %d groups; got %d", count, exp, got)
		}
	}
}

func TestKernelTypeNames(t *testing.T) {
	seen := make(map[string]bool)
	for kt := kernelType(0); kt < numKernels; kt++ {
		name := kt.String()
		if seen[name] {
			t.Fatalf("duplicate kernel name %q", name)
		}
		seen[name] = true
	}

	require.Panics(t, func() { _ = numKernels.String() })
}
