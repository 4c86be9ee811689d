package mesh

import (
	"fmt"

	"github.com/achilleasa/lbvh/accel/lbvh"
	"github.com/achilleasa/lbvh/types"
)

// Grid describes a synthetic uniform lattice of primitives.
type Grid struct {
	// Cells along each axis.
	Dims [3]int

	// Distance between neighbouring cell origins.
	Spacing float32

	// Edge length of the primitive placed in each cell.
	Size float32
}

// Check the grid dimensions.
func (g Grid) Validate() error {
	for axis, n := range g.Dims {
		if n <= 0 {
			return fmt.Errorf("grid: dimension %d must be positive; got %d", axis, n)
		}
	}
	if g.Spacing <= 0 || g.Size <= 0 {
		return fmt.Errorf("grid: spacing and size must be positive; got %v, %v", g.Spacing, g.Size)
	}
	return nil
}

// Get the number of cells.
func (g Grid) Cells() int {
	return g.Dims[0] * g.Dims[1] * g.Dims[2]
}

func (g Grid) cellOrigin(x, y, z int) types.Vec3 {
	return types.Vec3{float32(x) * g.Spacing, float32(y) * g.Spacing, float32(z) * g.Spacing}
}

// Generate one cube-shaped AABB per cell, x varying fastest.
func (g Grid) Boxes() []types.AABB {
	boxes := make([]types.AABB, 0, g.Cells())
	for z := 0; z < g.Dims[2]; z++ {
		for y := 0; y < g.Dims[1]; y++ {
			for x := 0; x < g.Dims[0]; x++ {
				min := g.cellOrigin(x, y, z)
				boxes = append(boxes, types.NewAABB(min, min.Add(types.Splat(g.Size))))
			}
		}
	}
	return boxes
}

// Generate one triangle per cell spanning the cell's cube diagonally, x
// varying fastest.
func (g Grid) Triangles() []lbvh.Triangle {
	tris := make([]lbvh.Triangle, 0, g.Cells())
	for z := 0; z < g.Dims[2]; z++ {
		for y := 0; y < g.Dims[1]; y++ {
			for x := 0; x < g.Dims[0]; x++ {
				o := g.cellOrigin(x, y, z)
				tris = append(tris, lbvh.Triangle{
					o,
					o.Add(types.Vec3{g.Size, 0, g.Size}),
					o.Add(types.Vec3{0, g.Size, 0}),
				})
			}
		}
	}
	return tris
}
