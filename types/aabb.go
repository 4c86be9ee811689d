package types

import "github.com/chewxy/math32"

// An axis-aligned bounding box.
type AABB struct {
	Min Vec3
	Max Vec3
}

// Create an AABB from its min and max extents.
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Returns the empty AABB (min = +Inf, max = -Inf). Extending an empty AABB
// with any box yields that box.
func EmptyAABB() AABB {
	return AABB{
		Min: Splat(math32.Inf(1)),
		Max: Splat(math32.Inf(-1)),
	}
}

// Returns the sentinel AABB used for unused child slots of internal nodes.
// All components are NaN so that any comparison against it fails.
func NaNAABB() AABB {
	nan := math32.NaN()
	return AABB{Min: Splat(nan), Max: Splat(nan)}
}

// Returns true if min > max along any axis.
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Returns true if any of the box extents is NaN.
func (b AABB) IsNaN() bool {
	return b.Min.HasNaN() || b.Max.HasNaN()
}

// Get the box center.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Get the box side lengths.
func (b AABB) Extent() Vec3 {
	return b.Max.Sub(b.Min)
}

// Returns the componentwise union of two boxes.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: MinVec3(b.Min, o.Min),
		Max: MaxVec3(b.Max, o.Max),
	}
}

// Returns true if o lies entirely within b.
func (b AABB) Contains(o AABB) bool {
	for axis := 0; axis < 3; axis++ {
		if o.Min[axis] < b.Min[axis] || o.Max[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// Returns true if the extents of b and o are bitwise equal. NaN
// components compare equal to each other.
func (b AABB) Equal(o AABB) bool {
	for axis := 0; axis < 3; axis++ {
		if math32.Float32bits(b.Min[axis]) != math32.Float32bits(o.Min[axis]) ||
			math32.Float32bits(b.Max[axis]) != math32.Float32bits(o.Max[axis]) {
			return false
		}
	}
	return true
}
