package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"crypto-chart-analyzer/internal/app"
	"crypto-chart-analyzer/internal/store"
)

// App carries what every subcommand needs once the root command has loaded it.
type App struct {
	ConfigPath string
	Config     *store.Config
}

func newRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "hintctl",
		Short: "Render a crypto candlestick chart and ask a vision model for a trading hint",
		Long: `hintctl runs the same pipeline as the desktop analyzer without a window:
fetch KuCoin candles, render the chart image, send it with the analysis prompt
to the configured inference service and print the reply.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.InitializeSystem(); err != nil {
				return err
			}
			cfg, err := app.LoadConfig(cmd.Context(), a.ConfigPath)
			if err != nil {
				return err
			}
			a.Config = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Shutdown(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.ConfigPath, "config", "", "config file (default $CONFIG_PATH or config.yaml)")

	root.AddCommand(newAnalyzeCmd(a))
	root.AddCommand(newChartCmd(a))
	root.AddCommand(newConfigCmd(a))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&App{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
