package lbvh

import (
	"errors"
	"fmt"

	"github.com/achilleasa/lbvh/accel/layout"
	"github.com/achilleasa/lbvh/types"
)

// Trees deeper than this are assumed to contain a cycle.
const maxTreeDepth = 32

var (
	ErrNotBuilt = errors.New("lbvh: header does not reference a root node")
)

// A callback invoked for every node reached by Walk. bounds is the AABB
// recorded for the node by its parent (or the header for the root).
type WalkFunc func(id layout.NodeID, bounds types.AABB, depth int) error

// Visit every node reachable from the header root in depth-first order.
// Child slots with NaN bounds are skipped.
func Walk(buf *layout.Buffer, fn WalkFunc) error {
	hdr := buf.Header()
	if !hdr.IsStamped() {
		return ErrNotBuilt
	}
	return walk(buf, hdr.Root(), hdr.AABB(), 0, fn)
}

func walk(buf *layout.Buffer, id layout.NodeID, bounds types.AABB, depth int, fn WalkFunc) error {
	if depth > maxTreeDepth {
		return fmt.Errorf("lbvh: tree depth exceeds %d at node %s", maxTreeDepth, id)
	}

	size := layout.LeafNodeSize
	if id.Type() == layout.Internal {
		size = layout.Box32NodeSize
	}
	if id.Offset() < layout.HeaderSize {
		return fmt.Errorf("lbvh: node %s overlaps the header", id)
	}
	if err := buf.CheckRange(id.Offset(), size); err != nil {
		return fmt.Errorf("lbvh: node %s: %w", id, err)
	}

	if err := fn(id, bounds, depth); err != nil {
		return err
	}

	if id.Type() != layout.Internal {
		return nil
	}

	node := buf.Box32Node(id.Offset())
	for i := 0; i < layout.Box32Children; i++ {
		childBounds := node.ChildBounds(i)
		if childBounds.IsNaN() {
			continue
		}
		if err := walk(buf, node.Child(i), childBounds, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Verification results.
type VerifyStats struct {
	Leaves        uint32
	InternalNodes uint32
	Depth         int
	Bounds        types.AABB
}

// Check the structural invariants of a built tree:
//   - every node is reachable exactly once and lies within the buffer;
//   - every recorded child AABB equals the bounds of the child node;
//   - every used child slot precedes the unused (NaN) slots;
//   - the header AABB equals the union of all leaf bounds.
func Verify(buf *layout.Buffer, nodeBounds layout.BoundsFunc) (VerifyStats, error) {
	nodeBounds = boundsFunc(nodeBounds)

	var stats VerifyStats
	leafUnion := types.EmptyAABB()
	visited := make(map[layout.NodeID]struct{})

	err := Walk(buf, func(id layout.NodeID, bounds types.AABB, depth int) error {
		if _, seen := visited[id]; seen {
			return fmt.Errorf("lbvh: node %s reachable more than once", id)
		}
		visited[id] = struct{}{}

		if depth > stats.Depth {
			stats.Depth = depth
		}

		actual := nodeBounds(buf, id)
		if !actual.Equal(bounds) {
			return fmt.Errorf("lbvh: node %s has bounds %v; parent records %v", id, actual, bounds)
		}

		if id.Type() != layout.Internal {
			stats.Leaves++
			leafUnion = leafUnion.Union(actual)
			return nil
		}

		stats.InternalNodes++
		node := buf.Box32Node(id.Offset())
		padding := false
		for i := 0; i < layout.Box32Children; i++ {
			isPad := node.ChildBounds(i).IsNaN()
			if !isPad && padding {
				return fmt.Errorf("lbvh: node %s has a used slot %d after an unused one", id, i)
			}
			padding = padding || isPad
		}
		if node.ChildCount() == 0 {
			return fmt.Errorf("lbvh: node %s has no children", id)
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	stats.Bounds = buf.Header().AABB()
	if !stats.Bounds.Equal(leafUnion) {
		return stats, fmt.Errorf("lbvh: header bounds %v differ from leaf union %v", stats.Bounds, leafUnion)
	}

	return stats, nil
}
