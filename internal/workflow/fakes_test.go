package workflow

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"crypto-chart-analyzer/internal/store"
	"crypto-chart-analyzer/internal/types"
)

type fakeRenderer struct {
	mu        sync.Mutex
	specs     []types.ChartSpec
	skipWrite bool
	err       error
}

func (f *fakeRenderer) Render(ctx context.Context, spec types.ChartSpec) (types.Chart, error) {
	f.mu.Lock()
	f.specs = append(f.specs, spec)
	f.mu.Unlock()
	if f.err != nil {
		return types.Chart{}, f.err
	}
	if !f.skipWrite {
		img := image.NewRGBA(image.Rect(0, 0, 40, 20))
		img.Set(1, 1, color.RGBA{R: 255, A: 255})
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return types.Chart{}, err
		}
		if err := os.WriteFile(spec.Path, buf.Bytes(), 0o644); err != nil {
			return types.Chart{}, err
		}
	}
	return types.Chart{Path: spec.Path, Summary: "KUCOIN " + spec.Symbol, Candles: spec.Limit}, nil
}

func (f *fakeRenderer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.specs)
}

type fakeAnalyzer struct {
	mu     sync.Mutex
	inputs []types.AnalysisInput
	reply  string
	err    error
	crash  bool
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, in types.AnalysisInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	if f.crash {
		var hits map[string]int
		hits[in.Symbol]++
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeAnalyzer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

var errBoom = errors.New("boom")

func testConfig(t *testing.T) *store.Config {
	t.Helper()
	cfg := store.Default()
	cfg.Chart.Path = filepath.Join(t.TempDir(), "chart.png")
	return cfg
}

func testRequest() types.Request {
	return types.Request{Symbol: "BTC/USDT", Timeframe: "1h", Limit: 100, Prompt: "look for wedges"}
}
