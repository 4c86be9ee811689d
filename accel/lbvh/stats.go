package lbvh

import (
	"bytes"
	"fmt"
	"time"

	"github.com/achilleasa/lbvh/accel/layout"
	"github.com/achilleasa/lbvh/types"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
)

// Statistics for a single packing level.
type LevelStats struct {
	// Number of children consumed and parents produced.
	Children uint32
	Parents  uint32

	// Offset of the first parent node.
	DstOffset uint32

	// True if this level stamped the header.
	Finalize bool

	Time time.Duration
}

// Build statistics.
type Stats struct {
	// A unique id for the build.
	BuildID uuid.UUID

	Leaves        uint32
	InternalNodes uint32
	Size          uint32

	Root   layout.NodeID
	Bounds types.AABB

	// Per phase timings.
	BoundsTime time.Duration
	KeyTime    time.Duration
	SortTime   time.Duration
	TotalTime  time.Duration

	Levels []LevelStats
}

// Generate a printable table with build statistics.
func (s *Stats) String() string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("build %s: %d leaves, %d internal nodes, %d bytes, root %s\n", s.BuildID, s.Leaves, s.InternalNodes, s.Size, s.Root))
	buf.WriteString(fmt.Sprintf("bounds min %v max %v\n", s.Bounds.Min, s.Bounds.Max))

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Phase", "Children", "Parents", "Offset", "Time"})
	table.Append([]string{"bounds", fmt.Sprint(s.Leaves), "-", "-", s.BoundsTime.String()})
	table.Append([]string{"keys", fmt.Sprint(s.Leaves), "-", "-", s.KeyTime.String()})
	table.Append([]string{"sort", fmt.Sprint(s.Leaves), "-", "-", s.SortTime.String()})
	for index, level := range s.Levels {
		name := fmt.Sprintf("level %d", index+1)
		if level.Finalize {
			name += " (root)"
		}
		table.Append([]string{
			name,
			fmt.Sprint(level.Children),
			fmt.Sprint(level.Parents),
			fmt.Sprint(level.DstOffset),
			level.Time.String(),
		})
	}
	table.SetFooter([]string{"", "", "", "total", s.TotalTime.String()})
	table.Render()

	return buf.String()
}
