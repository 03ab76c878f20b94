package marketobs

import (
	"context"

	"crypto-chart-analyzer/internal/interfaces"
	"crypto-chart-analyzer/internal/logger"
	"crypto-chart-analyzer/internal/trace"
	"crypto-chart-analyzer/internal/types"
)

// observableMarket wraps MarketData with logging & tracing
type observableMarket struct {
	market interfaces.MarketData
}

// Compile-time interface check
var _ interfaces.MarketData = (*observableMarket)(nil)

// Wrap wraps a market data source with observability middleware
func Wrap(market interfaces.MarketData) interfaces.MarketData {
	return &observableMarket{market: market}
}

// Candles fetches candles with observability
func (om *observableMarket) Candles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "market.Candles")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching candles", "symbol", symbol, "timeframe", timeframe, "limit", limit)

	candles, err := om.market.Candles(ctx, symbol, timeframe, limit)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch candles", err, "symbol", symbol, "timeframe", timeframe)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Candles fetched successfully", "symbol", symbol, "count", len(candles))
	return candles, nil
}
