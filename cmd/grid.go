package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/achilleasa/lbvh/asset/archive"
	"github.com/achilleasa/lbvh/asset/mesh"
	"github.com/achilleasa/lbvh/config"
	"github.com/urfave/cli"
)

// Build an acceleration structure over a synthetic grid of primitives.
func BuildGrid(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	dims := ctx.IntSlice("dims")
	if len(dims) == 0 {
		dims = []int{16, 16, 16}
	}
	if len(dims) != 3 {
		return errors.New("expected 3 grid dimensions")
	}

	grid := mesh.Grid{
		Dims:    [3]int{dims[0], dims[1], dims[2]},
		Spacing: float32(ctx.Float64("spacing")),
		Size:    float32(ctx.Float64("size")),
	}
	if err = grid.Validate(); err != nil {
		return err
	}

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	builder, err := newBuilder(cfg)
	if err != nil {
		return err
	}

	logger.Noticef("building grid with %d cells", grid.Cells())
	var a archive.Archive
	switch cfg.LeafType {
	case config.LeafAABB:
		a.Buffer, a.Stats, err = builder.BuildAABBs(runCtx, grid.Boxes(), cfg.GeometryID)
	default:
		a.Buffer, a.Stats, err = builder.BuildTriangles(runCtx, grid.Triangles(), cfg.GeometryID)
	}
	if err != nil {
		return err
	}
	if err = verify(a.Buffer); err != nil {
		return err
	}

	logger.Noticef("build information:\n%s", a.Stats)

	if out := ctx.String("out"); out != "" {
		return archive.WriteFile(out, &a)
	}
	return nil
}
