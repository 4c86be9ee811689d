// Package mesh loads triangle geometry for acceleration structure builds.
package mesh

import (
	"github.com/achilleasa/lbvh/accel/lbvh"
	"github.com/achilleasa/lbvh/types"
)

// A named group of triangles.
type Mesh struct {
	Name      string
	Triangles []lbvh.Triangle
}

// Get the AABB enclosing all mesh triangles.
func (m *Mesh) Bounds() types.AABB {
	bounds := types.EmptyAABB()
	for _, tri := range m.Triangles {
		for _, v := range tri {
			bounds.Min = types.MinVec3(bounds.Min, v)
			bounds.Max = types.MaxVec3(bounds.Max, v)
		}
	}
	return bounds
}

// The geometry loaded from a source file.
type Geometry struct {
	Meshes []*Mesh
}

// Get the total number of triangles across all meshes.
func (g *Geometry) TriangleCount() int {
	count := 0
	for _, m := range g.Meshes {
		count += len(m.Triangles)
	}
	return count
}

// Concatenate the triangles of all meshes in mesh order.
func (g *Geometry) Triangles() []lbvh.Triangle {
	tris := make([]lbvh.Triangle, 0, g.TriangleCount())
	for _, m := range g.Meshes {
		tris = append(tris, m.Triangles...)
	}
	return tris
}

// Get one AABB per mesh. Used to build procedural (aabb leaf) trees over
// whole meshes.
func (g *Geometry) MeshBounds() []types.AABB {
	boxes := make([]types.AABB, len(g.Meshes))
	for i, m := range g.Meshes {
		boxes[i] = m.Bounds()
	}
	return boxes
}

// Get one AABB per triangle.
func (g *Geometry) TriangleBounds() []types.AABB {
	boxes := make([]types.AABB, 0, g.TriangleCount())
	for _, m := range g.Meshes {
		for _, tri := range m.Triangles {
			boxes = append(boxes, types.AABB{
				Min: types.MinVec3(types.MinVec3(tri[0], tri[1]), tri[2]),
				Max: types.MaxVec3(types.MaxVec3(tri[0], tri[1]), tri[2]),
			})
		}
	}
	return boxes
}
