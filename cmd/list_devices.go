package cmd

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/achilleasa/lbvh/device"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the compute device that builds will run on.
func ListDevices(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	dev := device.NewDevice("cpu", cfg.Workers)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Device", "Workers", "CPUs", "Arch"})
	table.Append([]string{
		dev.Name,
		fmt.Sprint(dev.Workers()),
		fmt.Sprint(runtime.NumCPU()),
		runtime.GOOS + "/" + runtime.GOARCH,
	})
	table.Render()

	logger.Noticef("available devices:\n%s", buf.String())
	return nil
}
