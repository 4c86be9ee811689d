// Package morton implements the spatial keying step of the LBVH builder.
//
// Every primitive is keyed by the Morton code of its centroid, normalized
// against the world bounds and quantized to 8 bits per axis. The resulting
// 24-bit code occupies the upper 24 bits of a 32-bit sort key; the low 8
// bits are reserved for callers that need a disambiguating tag.
package morton

import (
	"math"

	"github.com/achilleasa/lbvh/types"
	"github.com/chewxy/math32"
)

const (
	// Number of bits in a quantized axis coordinate.
	AxisBits = 8

	// The largest quantized axis coordinate.
	AxisMax = 1<<AxisBits - 1

	// Number of bits occupied by a 3-axis Morton code.
	CodeBits = 3 * AxisBits

	// Shift applied to a Morton code to form a sort key.
	KeyShift = 32 - CodeBits

	// Mask covering the reserved low bits of a sort key.
	KeyTagMask uint32 = 1<<KeyShift - 1
)

// Spread the 8 bits of x so that bit i lands at position 3i.
func Component(x uint8) uint32 {
	v := uint32(x)
	v = (v * 0x00000101) & 0x0F00F00F
	v = (v * 0x00000011) & 0xC30C30C3
	v = (v * 0x00000005) & 0x49249249
	return v
}

// Interleave three 8-bit coordinates into a 24-bit Morton code. Bit i of x,
// y and z ends up at positions 3i+2, 3i+1 and 3i respectively.
func Code(x, y, z uint8) uint32 {
	return (Component(x) << 2) | (Component(y) << 1) | Component(z)
}

// Quantize a normalized coordinate in the [0, 1] range to [0, 255].
//
// Values are truncated towards zero. The conversion never traps: NaN and
// negative values yield 0 and values past the uint32 range saturate before
// being narrowed (and wrapped) to 8 bits.
func Quantize(t float32) uint8 {
	v := t * AxisMax
	switch {
	case math32.IsNaN(v), v <= 0:
		return 0
	case v >= math.MaxUint32:
		return AxisMax
	}
	return uint8(uint32(v))
}

// Calculate the sort key for a primitive with bounds child inside the
// world bounds bvh. The low KeyShift bits of the returned key are zero.
//
// A degenerate world AABB (zero extent along an axis) does not trap but
// yields an unspecified key.
func Key(bvh, child types.AABB) uint32 {
	center := child.Center()
	t := center.Sub(bvh.Min).Div(bvh.Max.Sub(bvh.Min))
	return Code(Quantize(t[0]), Quantize(t[1]), Quantize(t[2])) << KeyShift
}

// Split a key into its Morton code and reserved tag bits.
func SplitKey(key uint32) (code uint32, tag uint8) {
	return key >> KeyShift, uint8(key & KeyTagMask)
}
