package cmd

import (
	"github.com/achilleasa/lbvh/config"
	"github.com/achilleasa/lbvh/log"
	"github.com/urfave/cli"
)

var logger = log.New("lbvh")

// Load the build configuration from the --config file (if any) and apply
// command-line overrides. The logger level is set from the resulting
// configuration; -v and -vv take precedence.
func setup(ctx *cli.Context) (config.Build, error) {
	cfg := config.Default()
	if path := ctx.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	if ctx.GlobalIsSet("workers") {
		cfg.Workers = ctx.GlobalInt("workers")
	}
	if ctx.GlobalIsSet("sorter") {
		cfg.Sorter = ctx.GlobalString("sorter")
	}
	if ctx.IsSet("leaf-type") {
		cfg.LeafType = ctx.String("leaf-type")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	setupLogging(ctx, cfg.Level())
	return cfg, nil
}

func setupLogging(ctx *cli.Context, level log.Level) {
	log.SetLevel(level)

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
