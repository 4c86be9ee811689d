package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"
)

// Print the values of the builder metrics collected by this process if
// --metrics is set.
func DumpMetrics(ctx *cli.Context) error {
	if !ctx.GlobalBool("metrics") {
		return nil
	}

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Metric", "Labels", "Value"})
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "lbvh_") {
			continue
		}

		for _, m := range mf.GetMetric() {
			var labels string
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf("%s=%s ", lp.GetName(), lp.GetValue())
			}

			var value string
			switch {
			case m.GetCounter() != nil:
				value = fmt.Sprint(m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				value = fmt.Sprintf("%d samples, %.6fs total", h.GetSampleCount(), h.GetSampleSum())
			default:
				continue
			}
			table.Append([]string{mf.GetName(), labels, value})
		}
	}
	table.Render()

	logger.Noticef("metrics:\n%s", buf.String())
	return nil
}
