package main

import (
	"os"

	"github.com/achilleasa/lbvh/cmd"
	"github.com/achilleasa/lbvh/log"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	leafTypeFlag := cli.StringFlag{
		Name:  "leaf-type, l",
		Usage: "leaf record type (triangle|aabb); overrides the config file",
	}
	outFlag := cli.StringFlag{
		Name:  "out, o",
		Usage: "archive filename for the built acceleration structure",
	}

	app := cli.NewApp()
	app.Name = "lbvh"
	app.Usage = "build linear bounding volume hierarchies"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load build options from a YAML file",
		},
		cli.IntFlag{
			Name:  "workers, w",
			Usage: "number of concurrent workers; 0 uses one per CPU",
		},
		cli.StringFlag{
			Name:  "sorter",
			Usage: "key sorting strategy (radix|stable)",
		},
		cli.BoolFlag{
			Name:  "metrics",
			Usage: "print builder metrics before exiting",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile wavefront obj meshes into acceleration structure archives",
			Description: `
Parse the geometry of one or more wavefront obj files, build an LBVH over
their triangles and write the acceleration structure buffer together with
the build statistics to a zip archive next to each input file.`,
			ArgsUsage: "mesh_file1.obj mesh_file2.obj ...",
			Flags:     []cli.Flag{leafTypeFlag, outFlag},
			Action:    cmd.CompileMesh,
		},
		{
			Name:  "grid",
			Usage: "build an acceleration structure over a synthetic grid",
			Flags: []cli.Flag{
				cli.IntSliceFlag{
					Name:  "dims, d",
					Value: &cli.IntSlice{},
					Usage: "grid cells along x, y and z (repeat 3 times; default 16 16 16)",
				},
				cli.Float64Flag{
					Name:  "spacing",
					Value: 1.0,
					Usage: "distance between neighbouring cells",
				},
				cli.Float64Flag{
					Name:  "size",
					Value: 0.5,
					Usage: "edge length of each primitive",
				},
				leafTypeFlag,
				outFlag,
			},
			Action: cmd.BuildGrid,
		},
		{
			Name:      "info",
			Usage:     "print information about a compiled acceleration structure",
			ArgsUsage: "archive.zip",
			Action:    cmd.ShowInfo,
		},
		{
			Name:   "list-devices",
			Usage:  "list available compute devices",
			Action: cmd.ListDevices,
		},
	}
	app.After = cmd.DumpMetrics

	if err := app.Run(os.Args); err != nil {
		log.New("lbvh").Error(err)
		os.Exit(1)
	}
}
