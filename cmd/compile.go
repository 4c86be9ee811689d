package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/achilleasa/lbvh/accel/layout"
	"github.com/achilleasa/lbvh/accel/lbvh"
	"github.com/achilleasa/lbvh/asset/archive"
	"github.com/achilleasa/lbvh/asset/mesh"
	"github.com/achilleasa/lbvh/config"
	"github.com/achilleasa/lbvh/device"
	"github.com/urfave/cli"
)

// Compile OBJ meshes into acceleration structure archives.
func CompileMesh(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	if ctx.NArg() == 0 {
		return errors.New("missing mesh file argument")
	}

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	builder, err := newBuilder(cfg)
	if err != nil {
		return err
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		meshFile := ctx.Args().Get(idx)
		if !strings.HasSuffix(strings.ToLower(meshFile), ".obj") {
			logger.Warningf("skipping unsupported file %s", meshFile)
			continue
		}

		geom, err := mesh.ReadFile(runCtx, meshFile)
		if err != nil {
			return err
		}

		buf, stats, err := buildGeometry(runCtx, builder, cfg, geom)
		if err != nil {
			return fmt.Errorf("%s: %w", meshFile, err)
		}
		if err = verify(buf); err != nil {
			return fmt.Errorf("%s: %w", meshFile, err)
		}

		logger.Noticef("build information:\n%s", stats)

		zipFile := meshFile[:len(meshFile)-len(".obj")] + ".zip"
		if out := ctx.String("out"); out != "" && ctx.NArg() == 1 {
			zipFile = out
		}
		if err = archive.WriteFile(zipFile, &archive.Archive{Buffer: buf, Stats: stats}); err != nil {
			return err
		}
	}

	return nil
}

func newBuilder(cfg config.Build) (*lbvh.Builder, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	dev := device.NewDevice("cpu", cfg.Workers)
	logger.Infof("using device %q with %d workers", dev.Name, dev.Workers())
	return lbvh.NewBuilder(dev, opts), nil
}

func buildGeometry(ctx context.Context, builder *lbvh.Builder, cfg config.Build, geom *mesh.Geometry) (*layout.Buffer, *lbvh.Stats, error) {
	switch cfg.LeafType {
	case config.LeafAABB:
		return builder.BuildAABBs(ctx, geom.TriangleBounds(), cfg.GeometryID)
	default:
		return builder.BuildTriangles(ctx, geom.Triangles(), cfg.GeometryID)
	}
}

func verify(buf *layout.Buffer) error {
	vs, err := lbvh.Verify(buf, nil)
	if err != nil {
		return err
	}
	logger.Infof("verified tree: %d leaves, %d internal nodes, depth %d", vs.Leaves, vs.InternalNodes, vs.Depth)
	return nil
}
