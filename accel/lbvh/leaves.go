package lbvh

import (
	"context"

	"github.com/achilleasa/lbvh/accel/layout"
	"github.com/achilleasa/lbvh/types"
)

// A triangle primitive.
type Triangle [3]types.Vec3

// Allocate a buffer for len(tris) triangle leaves and write the leaf records.
// Leaf i stores triangle id i.
func NewTriangleBuffer(tris []Triangle, geometryID uint32) (*layout.Buffer, layout.Plan, []layout.NodeID, error) {
	if len(tris) == 0 {
		return nil, layout.Plan{}, nil, ErrNoLeaves
	}

	plan, err := layout.NewPlan(uint32(len(tris)))
	if err != nil {
		return nil, layout.Plan{}, nil, err
	}

	buf := layout.NewBuffer(int(plan.Size))
	ids := make([]layout.NodeID, len(tris))
	for i, tri := range tris {
		offset := plan.LeafNodeOffset(uint32(i))
		buf.PutTriangleLeaf(offset, tri[0], tri[1], tri[2], uint32(i), geometryID)
		ids[i] = layout.PackNodeID(offset, layout.Triangle)
	}

	return buf, plan, ids, nil
}

// Allocate a buffer for len(boxes) AABB leaves and write the leaf records.
// Leaf i stores primitive id i.
func NewAABBBuffer(boxes []types.AABB, geometryID uint32) (*layout.Buffer, layout.Plan, []layout.NodeID, error) {
	if len(boxes) == 0 {
		return nil, layout.Plan{}, nil, ErrNoLeaves
	}

	plan, err := layout.NewPlan(uint32(len(boxes)))
	if err != nil {
		return nil, layout.Plan{}, nil, err
	}

	buf := layout.NewBuffer(int(plan.Size))
	ids := make([]layout.NodeID, len(boxes))
	for i, box := range boxes {
		offset := plan.LeafNodeOffset(uint32(i))
		buf.PutAABBLeaf(offset, box, uint32(i), geometryID)
		ids[i] = layout.PackNodeID(offset, layout.AABBLeaf)
	}

	return buf, plan, ids, nil
}

// Build a tree over a triangle soup.
func (b *Builder) BuildTriangles(ctx context.Context, tris []Triangle, geometryID uint32) (*layout.Buffer, *Stats, error) {
	buf, plan, ids, err := NewTriangleBuffer(tris, geometryID)
	if err != nil {
		return nil, nil, err
	}

	stats, err := b.Build(ctx, buf, plan, ids)
	if err != nil {
		return nil, nil, err
	}
	return buf, stats, nil
}

// Build a tree over a set of procedural AABB primitives.
func (b *Builder) BuildAABBs(ctx context.Context, boxes []types.AABB, geometryID uint32) (*layout.Buffer, *Stats, error) {
	buf, plan, ids, err := NewAABBBuffer(boxes, geometryID)
	if err != nil {
		return nil, nil, err
	}

	stats, err := b.Build(ctx, buf, plan, ids)
	if err != nil {
		return nil, nil, err
	}
	return buf, stats, nil
}
