package layout

import (
	"encoding/binary"
	"fmt"

	"github.com/achilleasa/lbvh/types"
	"github.com/chewxy/math32"
)

// Buffer is the byte store backing an acceleration structure. All numeric
// fields are little-endian and naturally aligned.
//
// Concurrent writers are allowed as long as they target disjoint byte
// ranges; Buffer itself performs no locking.
type Buffer struct {
	data []byte
}

// Allocate a zeroed buffer of the given size.
func NewBuffer(size int) *Buffer {
	return &Buffer{data: make([]byte, size)}
}

// Wrap an existing byte slice. The buffer aliases data.
func WrapBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Get buffer size.
func (b *Buffer) Size() int {
	return len(b.data)
}

// Get the underlying bytes.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Get a slice aliasing size bytes starting at offset.
func (b *Buffer) Slice(offset uint32, size int) []byte {
	return b.data[offset : int(offset)+size]
}

// Ensure that size bytes starting at offset lie within the buffer.
func (b *Buffer) CheckRange(offset uint32, size int) error {
	if int(offset)+size > len(b.data) {
		return fmt.Errorf("layout: range [%d, %d) exceeds buffer size %d", offset, int(offset)+size, len(b.data))
	}
	return nil
}

func (b *Buffer) Uint32(offset uint32) uint32 {
	return binary.LittleEndian.Uint32(b.data[offset:])
}

func (b *Buffer) PutUint32(offset uint32, v uint32) {
	binary.LittleEndian.PutUint32(b.data[offset:], v)
}

func (b *Buffer) Uint64(offset uint32) uint64 {
	return binary.LittleEndian.Uint64(b.data[offset:])
}

func (b *Buffer) PutUint64(offset uint32, v uint64) {
	binary.LittleEndian.PutUint64(b.data[offset:], v)
}

func (b *Buffer) Float32(offset uint32) float32 {
	return math32.Float32frombits(b.Uint32(offset))
}

func (b *Buffer) PutFloat32(offset uint32, v float32) {
	b.PutUint32(offset, math32.Float32bits(v))
}

// Read three consecutive floats.
func (b *Buffer) Vec3(offset uint32) types.Vec3 {
	return types.Vec3{b.Float32(offset), b.Float32(offset + 4), b.Float32(offset + 8)}
}

// Write three consecutive floats.
func (b *Buffer) PutVec3(offset uint32, v types.Vec3) {
	b.PutFloat32(offset, v[0])
	b.PutFloat32(offset+4, v[1])
	b.PutFloat32(offset+8, v[2])
}

// Read an AABB stored as f32[2][3] (min xyz, max xyz).
func (b *Buffer) AABB(offset uint32) types.AABB {
	return types.AABB{Min: b.Vec3(offset), Max: b.Vec3(offset + 12)}
}

// Write an AABB as f32[2][3] (min xyz, max xyz).
func (b *Buffer) PutAABB(offset uint32, box types.AABB) {
	b.PutVec3(offset, box.Min)
	b.PutVec3(offset+12, box.Max)
}
