package chart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"crypto-chart-analyzer/internal/interfaces"
	"crypto-chart-analyzer/internal/ta"
	"crypto-chart-analyzer/internal/types"
)

var smaColors = []drawing.Color{
	drawing.ColorFromHex("1e88e5"),
	drawing.ColorFromHex("fb8c00"),
	drawing.ColorFromHex("8e24aa"),
}

type Options struct {
	Exchange   string
	SMAWindows []int
	// SummaryRows is how many of the latest candles the text summary lists.
	SummaryRows int
}

// Renderer fetches candles and writes a candlestick PNG plus a text summary.
type Renderer struct {
	market interfaces.MarketData
	opts   Options
}

var _ interfaces.ChartRenderer = (*Renderer)(nil)

func NewRenderer(market interfaces.MarketData, opts Options) *Renderer {
	if opts.SummaryRows <= 0 {
		opts.SummaryRows = 10
	}
	return &Renderer{market: market, opts: opts}
}

// Render removes any previous image at spec.Path before fetching candles. A
// failed render leaves no file at spec.Path.
func (r *Renderer) Render(ctx context.Context, spec types.ChartSpec) (types.Chart, error) {
	if r.opts.Exchange != "" && !strings.EqualFold(spec.Exchange, r.opts.Exchange) {
		return types.Chart{}, fmt.Errorf("exchange %q is not supported, want %q", spec.Exchange, r.opts.Exchange)
	}
	if spec.Path == "" {
		return types.Chart{}, errors.New("chart path is empty")
	}
	if err := os.Remove(spec.Path); err != nil && !os.IsNotExist(err) {
		return types.Chart{}, fmt.Errorf("remove previous chart: %w", err)
	}

	candles, err := r.market.Candles(ctx, spec.Symbol, spec.Timeframe, spec.Limit)
	if err != nil {
		return types.Chart{}, err
	}

	png, err := r.Draw(spec, candles)
	if err != nil {
		return types.Chart{}, err
	}
	if dir := filepath.Dir(spec.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return types.Chart{}, fmt.Errorf("create chart dir: %w", err)
		}
	}
	if err := os.WriteFile(spec.Path, png, 0o644); err != nil {
		return types.Chart{}, fmt.Errorf("write chart: %w", err)
	}

	return types.Chart{
		Path:    spec.Path,
		Summary: Summarize(spec, candles, r.opts.SMAWindows, r.opts.SummaryRows),
		Candles: len(candles),
	}, nil
}

// Draw renders candles as a PNG of spec.Width x spec.Height.
func (r *Renderer) Draw(spec types.ChartSpec, candles []types.Candle) ([]byte, error) {
	if len(candles) == 0 {
		return nil, errors.New("no candles to draw")
	}

	xs := make([]float64, len(candles))
	closes := make([]float64, len(candles))
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for i, c := range candles {
		xs[i] = chart.TimeToFloat64(c.Time)
		closes[i] = c.Close
		lo = math.Min(lo, c.Low)
		hi = math.Max(hi, c.High)
	}

	series := []chart.Series{&candlestickSeries{
		name:    spec.Symbol,
		candles: candles,
		style:   chart.Style{StrokeColor: upColor, FillColor: upColor},
	}}
	for i, w := range r.opts.SMAWindows {
		if len(closes) < w {
			continue
		}
		sma := ta.SMASeries(closes, w)
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("SMA%d", w),
			XValues: xs[w-1:],
			YValues: sma[w-1:],
			Style: chart.Style{
				StrokeColor: smaColors[i%len(smaColors)],
				StrokeWidth: 1.5,
			},
		})
	}

	step := candleStep(candles)
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.01, 1e-8)
	}

	ch := chart.Chart{
		Title:  fmt.Sprintf("%s  %s  (%s)", spec.Symbol, spec.Timeframe, strings.ToUpper(spec.Exchange)),
		Width:  spec.Width,
		Height: spec.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat(timeLayout(step)),
			Range: &chart.ContinuousRange{
				Min: xs[0] - float64(step),
				Max: xs[len(xs)-1] + float64(step),
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return FormatPrice(f)
				}
				return ""
			},
			Range: &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Series: series,
	}
	if len(series) > 1 {
		ch.Elements = []chart.Renderable{chart.LegendLeft(&ch)}
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// candleStep is the smallest gap between consecutive candles, or one hour for a single candle.
func candleStep(candles []types.Candle) time.Duration {
	step := time.Duration(0)
	for i := 1; i < len(candles); i++ {
		d := candles[i].Time.Sub(candles[i-1].Time)
		if d > 0 && (step == 0 || d < step) {
			step = d
		}
	}
	if step == 0 {
		step = time.Hour
	}
	return step
}

func timeLayout(step time.Duration) string {
	switch {
	case step >= 24*time.Hour:
		return "2006-01-02"
	case step >= time.Hour:
		return "01-02 15:04"
	default:
		return "15:04"
	}
}

// FormatPrice keeps about six significant digits so sub-cent coins stay readable.
func FormatPrice(v float64) string {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.NewFromFloat(0).StringFixed(2)
	}
	places := int32(6 - int(math.Floor(math.Log10(math.Abs(v)))) - 1)
	if places < 2 {
		places = 2
	}
	if places > 10 {
		places = 10
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}
