package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"crypto-chart-analyzer/internal/app"
	"crypto-chart-analyzer/internal/store"
	"crypto-chart-analyzer/internal/types"
	"crypto-chart-analyzer/internal/workflow"
)

// requestFlags are shared by analyze and chart. Empty values fall back to config.
type requestFlags struct {
	symbol    string
	timeframe string
	limit     string
	prompt    string
}

func (f *requestFlags) register(cmd *cobra.Command, withPrompt bool) {
	cmd.Flags().StringVarP(&f.symbol, "symbol", "s", "", "Trading pair, e.g. BTC/USDT (default: first configured symbol)")
	cmd.Flags().StringVarP(&f.timeframe, "timeframe", "t", "", "Candle timeframe, e.g. 1h (default: first configured timeframe)")
	cmd.Flags().StringVarP(&f.limit, "limit", "l", "", "Number of candles (default: default_limit from config)")
	if withPrompt {
		cmd.Flags().StringVarP(&f.prompt, "prompt", "p", "", "Extra instructions for the model (default: default_prompt from config)")
	}
}

func (f *requestFlags) form(cfg *store.Config) workflow.Form {
	form := workflow.Form{Symbol: f.symbol, Timeframe: f.timeframe, Limit: f.limit, Prompt: f.prompt}
	if form.Symbol == "" {
		form.Symbol = cfg.Symbols[0]
	}
	if form.Timeframe == "" {
		form.Timeframe = cfg.Timeframes[0]
	}
	if form.Limit == "" {
		form.Limit = strconv.Itoa(cfg.DefaultLimit)
	}
	if form.Prompt == "" {
		form.Prompt = cfg.DefaultPrompt
	}
	return form
}

func (f *requestFlags) request(cfg *store.Config) (types.Request, error) {
	req, err := workflow.ParseRequest(f.form(cfg), workflow.CatalogFrom(cfg))
	if err != nil {
		return types.Request{}, errors.New(workflow.UserMessage(err).Text)
	}
	return req, nil
}

func newAnalyzeCmd(a *App) *cobra.Command {
	var flags requestFlags
	var asJSON, withSummary bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Render the chart and print the model's trading hint",
		Example: `  hintctl analyze --symbol BTC/USDT --timeframe 4h --limit 200
  hintctl analyze -s ETH/USDT -t 1d -p "focus on the weekly range" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(a.Config)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc := app.NewService(ctx, a.Config)
			progress := cmd.ErrOrStderr()
			res, err := svc.Run(ctx, req, func(e workflow.Event) {
				if e.Kind == workflow.EventStatus {
					fmt.Fprintln(progress, e.Status)
				}
			})
			if err != nil {
				fmt.Fprintln(progress, workflow.StatusFailed)
				return errors.New(workflow.UserMessage(err).Text)
			}
			fmt.Fprintln(progress, workflow.StatusComplete)

			return writeResult(cmd.OutOrStdout(), res, asJSON, withSummary)
		},
	}
	flags.register(cmd, true)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON including the parsed signal")
	cmd.Flags().BoolVar(&withSummary, "summary", false, "Print the chart data summary before the hint")
	return cmd
}

func writeResult(w io.Writer, res types.Result, asJSON, withSummary bool) error {
	if !withSummary {
		res.Summary = ""
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	if withSummary {
		fmt.Fprintln(w, res.Summary)
	}
	_, err := fmt.Fprintln(w, res.Hint)
	return err
}
