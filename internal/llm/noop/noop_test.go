package noop

import (
	"context"
	"testing"

	"crypto-chart-analyzer/internal/types"
)

func TestNoopReplyParsesAsNone(t *testing.T) {
	hint, err := NewAnalyzer().Analyze(context.Background(), types.AnalysisInput{Symbol: "BTC/USDT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig := types.ParseSignal(hint); sig.PositionSide != "None" {
		t.Errorf("Expected side None, got %q", sig.PositionSide)
	}
}
