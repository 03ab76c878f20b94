package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crypto-chart-analyzer/internal/app"
)

func newChartCmd(a *App) *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:     "chart",
		Short:   "Render the candlestick chart only and print the data summary",
		Example: `  hintctl chart -s SOL/USDT -t 1h -l 300`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(a.Config)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc := app.NewService(ctx, a.Config)
			chart, err := svc.RenderChart(ctx, req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, chart.Summary)
			fmt.Fprintf(out, "Chart written to %s\n", chart.Path)
			return nil
		},
	}
	flags.register(cmd, false)
	return cmd
}
