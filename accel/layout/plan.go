package layout

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfSpace = errors.New("layout: allocator out of space")
)

// Plan describes the placement of header, leaves and internal nodes for a
// tree over a given number of leaves:
//
//	[header][leaves][internal level 1][internal level 2]...[root]
type Plan struct {
	LeafCount uint32

	// Byte offset of the first leaf record.
	LeafOffset uint32

	// Byte offset of the first internal node.
	InternalOffset uint32

	// Number of internal nodes per level, leaves first.
	LevelWidths []uint32

	// Total number of internal nodes.
	InternalNodeCount uint32

	// Total buffer size in bytes.
	Size uint32
}

// Calculate the buffer plan for leafCount leaves. Each packing level turns
// N children into ceil(N/4) parents; a single leaf still gets one parent.
func NewPlan(leafCount uint32) (Plan, error) {
	if leafCount == 0 {
		return Plan{}, errors.New("layout: cannot plan a tree without leaves")
	}

	p := Plan{
		LeafCount:  leafCount,
		LeafOffset: HeaderSize,
	}

	leafBytes := uint64(leafCount) * LeafNodeSize
	p.InternalOffset = uint32(alignUp(uint64(p.LeafOffset)+leafBytes, Box32NodeAlignment))

	for n := leafCount; ; {
		g := (n + Box32Children - 1) / Box32Children
		p.LevelWidths = append(p.LevelWidths, g)
		p.InternalNodeCount += g
		if g == 1 {
			break
		}
		n = g
	}

	size := uint64(p.InternalOffset) + uint64(p.InternalNodeCount)*Box32NodeSize
	if size > MaxNodeOffset {
		return Plan{}, fmt.Errorf("layout: %d leaves require %d bytes; node IDs can address at most %d", leafCount, size, MaxNodeOffset)
	}
	p.Size = uint32(size)

	return p, nil
}

// Get the byte offset of leaf i.
func (p Plan) LeafNodeOffset(i uint32) uint32 {
	return p.LeafOffset + i*LeafNodeSize
}

// Get the number of packing levels.
func (p Plan) Levels() int {
	return len(p.LevelWidths)
}

// A bump allocator for node storage within a Buffer.
type Allocator struct {
	next  uint32
	limit uint32
}

// Create an allocator handing out the byte range [start, limit).
func NewAllocator(start, limit uint32) *Allocator {
	return &Allocator{next: start, limit: limit}
}

// Reserve size bytes aligned to alignment (a power of two) and return the
// offset of the reservation.
func (a *Allocator) Alloc(size, alignment uint32) (uint32, error) {
	offset := uint32(alignUp(uint64(a.next), uint64(alignment)))
	end := uint64(offset) + uint64(size)
	if end > uint64(a.limit) {
		return 0, fmt.Errorf("%w: requested %d bytes at offset %d; limit %d", ErrOutOfSpace, size, offset, a.limit)
	}
	a.next = uint32(end)
	return offset, nil
}

// Get the offset of the next allocation.
func (a *Allocator) Next() uint32 {
	return a.next
}

func alignUp(v, alignment uint64) uint64 {
	return (v + alignment - 1) &^ (alignment - 1)
}
