package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/achilleasa/lbvh/accel/layout"
	"github.com/achilleasa/lbvh/accel/lbvh"
	"github.com/achilleasa/lbvh/asset/archive"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Display information about a compiled acceleration structure.
func ShowInfo(ctx *cli.Context) error {
	if _, err := setup(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing compiled archive argument")
	}

	archiveFile := ctx.Args().First()
	if !strings.HasSuffix(archiveFile, ".zip") {
		return errors.New("only compiled archives with a .zip extension are supported")
	}

	a, err := archive.ReadFile(archiveFile)
	if err != nil {
		return err
	}

	vs, err := lbvh.Verify(a.Buffer, nil)
	if err != nil {
		return err
	}

	logger.Noticef("acceleration structure information:\n%s", headerTable(a.Buffer, vs))
	if a.Stats != nil {
		logger.Noticef("build information:\n%s", a.Stats)
	}
	return nil
}

func headerTable(buf *layout.Buffer, vs lbvh.VerifyStats) string {
	var out bytes.Buffer
	hdr := buf.Header()
	bounds := hdr.AABB()

	table := tablewriter.NewWriter(&out)
	table.SetHeader([]string{"Field", "Value"})
	table.AppendBulk([][]string{
		{"root", hdr.Root().String()},
		{"bounds min", fmt.Sprint(bounds.Min)},
		{"bounds max", fmt.Sprint(bounds.Max)},
		{"leaves", fmt.Sprint(hdr.LeafCount())},
		{"internal nodes", fmt.Sprint(hdr.InternalNodeCount())},
		{"depth", fmt.Sprint(vs.Depth)},
		{"size", fmt.Sprintf("%d bytes", hdr.Size())},
		{"build flags", fmt.Sprintf("%#x", hdr.BuildFlags())},
	})
	table.Render()

	return out.String()
}
