package llmobs

import (
	"context"

	"crypto-chart-analyzer/internal/interfaces"
	"crypto-chart-analyzer/internal/logger"
	"crypto-chart-analyzer/internal/trace"
	"crypto-chart-analyzer/internal/types"
)

// observableAnalyzer wraps an Analyzer with observability (logging & tracing)
type observableAnalyzer struct {
	analyzer interfaces.Analyzer
}

// Compile-time interface check
var _ interfaces.Analyzer = (*observableAnalyzer)(nil)

// Wrap wraps an analyzer with observability middleware
func Wrap(analyzer interfaces.Analyzer) interfaces.Analyzer {
	return &observableAnalyzer{analyzer: analyzer}
}

// Analyze requests a trading hint with observability
func (oa *observableAnalyzer) Analyze(ctx context.Context, in types.AnalysisInput) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Analyze")
	defer span.End()

	// Skip one frame so the log points at the caller, not this wrapper
	logger.DebugSkip(ctx, 1, "Requesting trading hint",
		"symbol", in.Symbol,
		"timeframe", in.Timeframe,
		"prompt_len", len(in.Prompt),
	)

	hint, err := oa.analyzer.Analyze(ctx, in)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to get trading hint", err,
			"symbol", in.Symbol,
			"timeframe", in.Timeframe,
		)
		return "", err
	}

	sig := types.ParseSignal(hint)
	logger.InfoSkip(ctx, 1, "Trading hint received",
		"symbol", in.Symbol,
		"side", sig.PositionSide,
		"stoploss", sig.StopLoss,
		"takeprofit", sig.TakeProfit,
	)
	return hint, nil
}
