// Package lbvh builds linear bounding volume hierarchies.
//
// A build runs in bulk-parallel phases separated by barriers:
//
//  1. reduce the world bounds over all leaves;
//  2. compute a Morton key per leaf;
//  3. sort the (key, id) records;
//  4. repeatedly pack runs of four consecutive children into box32 internal
//     nodes until a single root remains, stamping the root and world
//     bounds into the header on the final level.
package lbvh

import (
	"context"
	"fmt"
	"time"

	"github.com/achilleasa/lbvh/accel/layout"
	"github.com/achilleasa/lbvh/device"
	"github.com/achilleasa/lbvh/log"
	"github.com/achilleasa/lbvh/types"
	"github.com/chewxy/math32"
	"github.com/google/uuid"
)

// Builder options.
type Options struct {
	// The key sorting strategy. Defaults to a RadixSorter.
	Sorter Sorter

	// Resolves the bounds of leaves and internal nodes. Defaults to
	// layout.NodeBounds.
	NodeBounds layout.BoundsFunc

	// Work group size for kernel dispatches; 0 lets the device decide.
	LocalWorkSize int

	// Opaque flags recorded in the header.
	BuildFlags uint32

	// Precomputed world bounds. If nil the builder reduces them from the
	// leaves.
	WorldBounds *types.AABB
}

// An LBVH builder that dispatches its kernels on a compute device. A Builder
// may run concurrent builds over distinct buffers provided its Sorter is
// safe for concurrent use (both bundled sorters are).
type Builder struct {
	logger log.Logger
	device *device.Device
	opts   Options
}

// Create a new builder.
func NewBuilder(dev *device.Device, opts Options) *Builder {
	if opts.Sorter == nil {
		opts.Sorter = &RadixSorter{}
	}
	if opts.NodeBounds == nil {
		opts.NodeBounds = layout.NodeBounds
	}

	return &Builder{
		logger: log.New("lbvh builder"),
		device: dev,
		opts:   opts,
	}
}

// Build a tree over the leaves referenced by leafIDs. The leaf records must
// already be stored in buf according to plan; internal nodes are written
// to the plan's internal node region and the header at offset 0.
//
// The context is checked at every barrier between phases and levels. A
// cancelled build leaves buf in an undefined state.
func (b *Builder) Build(ctx context.Context, buf *layout.Buffer, plan layout.Plan, leafIDs []layout.NodeID) (*Stats, error) {
	stats, err := b.build(ctx, buf, plan, leafIDs)
	if err != nil {
		instrumentBuildError(err)
		return nil, err
	}

	instrumentBuild(stats)
	return stats, nil
}

func (b *Builder) build(ctx context.Context, buf *layout.Buffer, plan layout.Plan, leafIDs []layout.NodeID) (*Stats, error) {
	start := time.Now()

	if len(leafIDs) == 0 {
		return nil, ErrNoLeaves
	}
	if uint32(len(leafIDs)) != plan.LeafCount {
		return nil, fmt.Errorf("%w: got %d leaves; plan expects %d", ErrLeafCountMismatch, len(leafIDs), plan.LeafCount)
	}
	if buf.Size() < int(plan.Size) {
		return nil, fmt.Errorf("%w: size %d; plan requires %d", ErrBufferTooSmall, buf.Size(), plan.Size)
	}

	stats := &Stats{
		BuildID:       uuid.New(),
		Leaves:        plan.LeafCount,
		InternalNodes: plan.InternalNodeCount,
		Size:          plan.Size,
	}

	count := uint32(len(leafIDs))
	src := make([]KeyIDPair, count)
	for i, id := range leafIDs {
		src[i].ID = id
	}
	dst := make([]KeyIDPair, groupCount(count))

	// Reduce world bounds
	world := NewWorldBounds()
	if b.opts.WorldBounds != nil {
		world = NewWorldBoundsFrom(*b.opts.WorldBounds)
	} else {
		boundsArgs := BoundsArgs{BVH: buf, IDs: src, Bounds: world, NodeBounds: b.opts.NodeBounds}
		elapsed, err := b.dispatch(worldBounds, count, func(gid uint32) { BoundsKernel(boundsArgs, gid) })
		if err != nil {
			return nil, err
		}
		stats.BoundsTime = elapsed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keyBounds, err := keyingBounds(world.Load())
	if err != nil {
		return nil, err
	}

	// Calculate morton keys
	mortonArgs := MortonArgs{BVH: buf, Bounds: NewWorldBoundsFrom(keyBounds), IDs: src, NodeBounds: b.opts.NodeBounds}
	stats.KeyTime, err = b.dispatch(mortonKeys, count, func(gid uint32) { MortonKernel(mortonArgs, gid) })
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tick := time.Now()
	b.opts.Sorter.Sort(src)
	stats.SortTime = time.Since(tick)

	// Pack internal nodes level by level until we get a single root
	alloc := layout.NewAllocator(plan.InternalOffset, plan.Size)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		groups := groupCount(count)
		dstOffset, err := alloc.Alloc(groups*layout.Box32NodeSize, layout.Box32NodeAlignment)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrBufferTooSmall, err)
		}

		level, err := b.PackLevel(buf, src, dst, dstOffset, count, groups == 1)
		if err != nil {
			return nil, err
		}
		stats.Levels = append(stats.Levels, level)

		src, dst = dst, src
		count = groups
		if groups == 1 {
			break
		}
	}

	hdr := buf.Header()
	hdr.SetCounts(plan.InternalNodeCount, plan.LeafCount, uint64(plan.Size), b.opts.BuildFlags)
	stats.Root = hdr.Root()
	stats.Bounds = hdr.AABB()
	stats.TotalTime = time.Since(start)

	b.logger.Debugf(
		"LBVH build %s time: %d ms, leaves: %d, levels: %d, nodes: %d\n",
		stats.BuildID,
		stats.TotalTime.Nanoseconds()/1e6,
		stats.Leaves, len(stats.Levels), stats.InternalNodes,
	)
	return stats, nil
}

// Pack one level: the first count records of src become ceil(count/4)
// internal nodes stored contiguously from dstOffset, whose IDs are written
// to dst. If finalize is set the level must produce a single node, which
// is stamped into the header as the root.
func (b *Builder) PackLevel(buf *layout.Buffer, src, dst []KeyIDPair, dstOffset, count uint32, finalize bool) (LevelStats, error) {
	if count == 0 {
		return LevelStats{}, ErrNoLeaves
	}

	groups := groupCount(count)
	switch {
	case uint32(len(src)) < count:
		return LevelStats{}, fmt.Errorf("%w: src holds %d records; level has %d children", ErrScratchTooSmall, len(src), count)
	case uint32(len(dst)) < groups:
		return LevelStats{}, fmt.Errorf("%w: dst holds %d records; level has %d parents", ErrScratchTooSmall, len(dst), groups)
	case finalize && groups != 1:
		return LevelStats{}, fmt.Errorf("lbvh: cannot finalize a level with %d parents", groups)
	case dstOffset%layout.Box32NodeAlignment != 0:
		return LevelStats{}, fmt.Errorf("%w: offset %d", ErrMisalignedOffset, dstOffset)
	}
	if err := buf.CheckRange(dstOffset, int(groups)*layout.Box32NodeSize); err != nil {
		return LevelStats{}, fmt.Errorf("%w: %s", ErrBufferTooSmall, err)
	}

	args := InternalArgs{
		BVH:        buf,
		Src:        src,
		Dst:        dst,
		DstOffset:  dstOffset,
		Count:      count,
		Finalize:   finalize,
		NodeBounds: b.opts.NodeBounds,
	}
	elapsed, err := b.dispatch(packInternal, groups, func(gid uint32) { InternalKernel(args, gid) })
	if err != nil {
		return LevelStats{}, err
	}

	b.logger.Debugf("packed %d children into %d nodes at offset %d", count, groups, dstOffset)
	return LevelStats{
		Children:  count,
		Parents:   groups,
		DstOffset: dstOffset,
		Finalize:  finalize,
		Time:      elapsed,
	}, nil
}

// Run a kernel over items work items and block until it completes.
func (b *Builder) dispatch(kt kernelType, items uint32, fn device.KernelFunc) (time.Duration, error) {
	kernel := b.device.Kernel(kt.String(), fn)
	elapsed, err := kernel.Exec1D(0, int(items), b.opts.LocalWorkSize)
	if err != nil {
		return elapsed, err
	}

	instrumentKernel(kt, elapsed)
	return elapsed, nil
}

// Prepare the world bounds used for keying. Non-finite or inverted bounds
// are rejected. Flat axes are widened so that the normalization step never
// divides by zero; every primitive then quantizes to 0 along them.
func keyingBounds(box types.AABB) (types.AABB, error) {
	extent := box.Extent()
	for axis := 0; axis < 3; axis++ {
		lo, hi := box.Min[axis], box.Max[axis]
		if math32.IsNaN(lo) || math32.IsNaN(hi) || math32.IsInf(lo, 0) || math32.IsInf(hi, 0) || hi < lo {
			return box, fmt.Errorf("%w: min %v max %v", ErrDegenerateBounds, box.Min, box.Max)
		}
	}
	for axis := 0; axis < 3; axis++ {
		if extent[axis] == 0 {
			lo := box.Min[axis]
			box.Max[axis] = lo + math32.Max(extent.MaxComponent(), math32.Max(1, math32.Abs(lo)))
		}
	}
	return box, nil
}
