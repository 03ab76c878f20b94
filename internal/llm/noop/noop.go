package noop

import (
	"context"

	"crypto-chart-analyzer/internal/logger"
	"crypto-chart-analyzer/internal/types"
)

// Reply is what the noop analyzer always answers.
const Reply = "Position Side: None\n" +
	"Current Price:\n" +
	"StopLoss:\n" +
	"StopLoss (Percentage):\n" +
	"TakeProfit:\n" +
	"TakeProfit (Percentage):\n" +
	"\n\n" +
	"No inference service configured (llm.provider is NOOP)."

// Analyzer stands in for the inference service when none is configured.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

func (a *Analyzer) Analyze(ctx context.Context, in types.AnalysisInput) (string, error) {
	logger.Debug(ctx, "Noop analyzer called - always returns no position", "symbol", in.Symbol)
	return Reply, nil
}
