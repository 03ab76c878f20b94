package chartobs

import (
	"context"
	"time"

	"crypto-chart-analyzer/internal/interfaces"
	"crypto-chart-analyzer/internal/logger"
	"crypto-chart-analyzer/internal/trace"
	"crypto-chart-analyzer/internal/types"
)

type observableRenderer struct {
	renderer interfaces.ChartRenderer
}

var _ interfaces.ChartRenderer = (*observableRenderer)(nil)

func Wrap(renderer interfaces.ChartRenderer) interfaces.ChartRenderer {
	return &observableRenderer{renderer: renderer}
}

func (ro *observableRenderer) Render(ctx context.Context, spec types.ChartSpec) (types.Chart, error) {
	ctx, span := trace.StartSpan(ctx, "chart.Render")
	defer span.End()

	start := time.Now()
	logger.InfoSkip(ctx, 1, "Rendering chart",
		"symbol", spec.Symbol,
		"timeframe", spec.Timeframe,
		"exchange", spec.Exchange,
		"limit", spec.Limit,
	)

	out, err := ro.renderer.Render(ctx, spec)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Chart rendering failed", err,
			"symbol", spec.Symbol,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return types.Chart{}, err
	}

	logger.InfoSkip(ctx, 1, "Chart rendered",
		"symbol", spec.Symbol,
		"path", out.Path,
		"candles", out.Candles,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	logger.DebugSkip(ctx, 1, "Chart data summary", "summary", out.Summary)
	return out, nil
}
