package chart

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"crypto-chart-analyzer/internal/types"
)

type fakeMarket struct {
	candles []types.Candle
	err     error
	limit   int
}

func (f *fakeMarket) Candles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	f.limit = limit
	return f.candles, f.err
}

func sampleCandles(n int) []types.Candle {
	t0 := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	out := make([]types.Candle, n)
	price := 100.0
	for i := range out {
		open := price
		if i%3 == 0 {
			price -= 1.5
		} else {
			price += 2
		}
		out[i] = types.Candle{
			Time:  t0.Add(time.Duration(i) * time.Hour),
			Open:  open,
			Close: price,
			High:  max(open, price) + 0.75,
			Low:   min(open, price) - 0.75,
			Vol:   float64(10 + i),
		}
	}
	return out
}

func testSpec(dir string) types.ChartSpec {
	return types.ChartSpec{
		Symbol:    "BTC/USDT",
		Timeframe: "1h",
		Exchange:  "kucoin",
		Limit:     60,
		Path:      filepath.Join(dir, "nested", "chart.png"),
		Width:     800,
		Height:    480,
	}
}

func TestRenderWritesPNGAndSummary(t *testing.T) {
	market := &fakeMarket{candles: sampleCandles(60)}
	r := NewRenderer(market, Options{Exchange: "kucoin", SMAWindows: []int{20, 50}})
	spec := testSpec(t.TempDir())

	out, err := r.Render(context.Background(), spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if market.limit != 60 {
		t.Errorf("Expected limit 60 passed through, got %d", market.limit)
	}
	if out.Path != spec.Path || out.Candles != 60 {
		t.Errorf("Unexpected chart result: %+v", out)
	}

	b, err := os.ReadFile(spec.Path)
	if err != nil {
		t.Fatalf("chart file missing: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("chart is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 480 {
		t.Errorf("Expected 800x480 image, got %v", img.Bounds())
	}

	if !strings.Contains(out.Summary, "KUCOIN BTC/USDT 1h: 60 candles") {
		t.Errorf("Summary header missing: %s", out.Summary)
	}
	if !strings.Contains(out.Summary, "SMA20=") || !strings.Contains(out.Summary, "RSI14=") {
		t.Errorf("Summary indicators missing: %s", out.Summary)
	}
}

func TestRenderRemovesStaleChartOnFailure(t *testing.T) {
	spec := testSpec(t.TempDir())
	os.MkdirAll(filepath.Dir(spec.Path), 0o755)
	if err := os.WriteFile(spec.Path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	wantErr := errors.New("exchange down")
	r := NewRenderer(&fakeMarket{err: wantErr}, Options{Exchange: "kucoin"})
	if _, err := r.Render(context.Background(), spec); !errors.Is(err, wantErr) {
		t.Fatalf("Expected market error, got %v", err)
	}
	if _, err := os.Stat(spec.Path); !os.IsNotExist(err) {
		t.Errorf("Expected stale chart to be removed, stat err=%v", err)
	}
}

func TestRenderRejectsOtherExchange(t *testing.T) {
	market := &fakeMarket{candles: sampleCandles(5)}
	spec := testSpec(t.TempDir())
	spec.Exchange = "binance"
	if _, err := NewRenderer(market, Options{Exchange: "kucoin"}).Render(context.Background(), spec); err == nil {
		t.Fatal("Expected exchange error")
	}
	if market.limit != 0 {
		t.Error("Expected no market call for unsupported exchange")
	}
}

func TestDrawNoCandles(t *testing.T) {
	if _, err := NewRenderer(&fakeMarket{}, Options{}).Draw(testSpec(t.TempDir()), nil); err == nil {
		t.Fatal("Expected error for empty candles")
	}
}

func TestSummarizeShortSeries(t *testing.T) {
	s := Summarize(testSpec(""), sampleCandles(3), []int{20}, 10)
	if !strings.Contains(s, "SMA20=n/a") || !strings.Contains(s, "RSI14=n/a") {
		t.Errorf("Expected n/a indicators for short series: %s", s)
	}
	if strings.Count(s, "2026-09-01") < 3 {
		t.Errorf("Expected all three rows listed: %s", s)
	}
}

func TestFormatPrice(t *testing.T) {
	cases := map[float64]string{
		64123.554: "64123.55",
		1.5:       "1.50000",
		0.0023:    "0.00230000",
		0:         "0.00",
	}
	for in, want := range cases {
		if got := FormatPrice(in); got != want {
			t.Errorf("FormatPrice(%v) = %q, want %q", in, got, want)
		}
	}
}
