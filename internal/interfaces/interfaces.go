package interfaces

import (
	"context"

	"crypto-chart-analyzer/internal/types"
)

// MarketData returns the most recent limit candles for symbol, oldest first.
type MarketData interface {
	Candles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error)
}

// ChartRenderer draws a candlestick chart to spec.Path and summarizes the data behind it.
type ChartRenderer interface {
	Render(ctx context.Context, spec types.ChartSpec) (types.Chart, error)
}

// Analyzer sends a chart image and prompt to the inference service and returns its reply verbatim.
type Analyzer interface {
	Analyze(ctx context.Context, in types.AnalysisInput) (string, error)
}
