package morton

import (
	"math"

	"github.com/achilleasa/lbvh/types"
	"github.com/chewxy/math32"
)

// World bounds are reduced with atomic integer min/max operations. To make
// that work for floats, each value is stored as an int32 whose signed order
// matches the float order: non-negative floats keep their bit pattern while
// negative floats (sign-magnitude) are mirrored into the negative int range.
// The mapping is its own inverse.

// Encode a float into its order-preserving int32 representation.
func EncodeFloat(f float32) int32 {
	bits := int32(math32.Float32bits(f))
	if bits < 0 {
		return math.MinInt32 - bits
	}
	return bits
}

// Decode an order-preserving int32 back into the original float.
func DecodeFloat(bits int32) float32 {
	if bits < 0 {
		bits = math.MinInt32 - bits
	}
	return math32.Float32frombits(uint32(bits))
}

// Load a float that was stored via EncodeFloat, typically the result of an
// atomic min/max reduction.
func LoadMinMaxFloat(word uint32) float32 {
	return DecodeFloat(int32(word))
}

// The encoded representation of an AABB: min xyz followed by max xyz.
type EncodedAABB [6]int32

// Encode an AABB.
func EncodeAABB(b types.AABB) EncodedAABB {
	return EncodedAABB{
		EncodeFloat(b.Min[0]), EncodeFloat(b.Min[1]), EncodeFloat(b.Min[2]),
		EncodeFloat(b.Max[0]), EncodeFloat(b.Max[1]), EncodeFloat(b.Max[2]),
	}
}

// Decode an AABB.
func (e EncodedAABB) Decode() types.AABB {
	return types.AABB{
		Min: types.Vec3{DecodeFloat(e[0]), DecodeFloat(e[1]), DecodeFloat(e[2])},
		Max: types.Vec3{DecodeFloat(e[3]), DecodeFloat(e[4]), DecodeFloat(e[5])},
	}
}
