package chart

import (
	"errors"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"crypto-chart-analyzer/internal/types"
)

var (
	upColor   = drawing.ColorFromHex("26a69a")
	downColor = drawing.ColorFromHex("ef5350")
)

// candlestickSeries draws one wick and one body per candle. It implements
// chart.Series and chart.BoundedValuesProvider so the y range covers every wick.
type candlestickSeries struct {
	name    string
	candles []types.Candle
	style   chart.Style
}

var (
	_ chart.Series                = (*candlestickSeries)(nil)
	_ chart.BoundedValuesProvider = (*candlestickSeries)(nil)
)

func (cs *candlestickSeries) GetName() string { return cs.name }
func (cs *candlestickSeries) GetStyle() chart.Style { return cs.style }
func (cs *candlestickSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (cs *candlestickSeries) Len() int { return len(cs.candles) }

func (cs *candlestickSeries) GetBoundedValues(index int) (x, y1, y2 float64) {
	c := cs.candles[index]
	return chart.TimeToFloat64(c.Time), c.Low, c.High
}

func (cs *candlestickSeries) Validate() error {
	if len(cs.candles) == 0 {
		return errors.New("candlestick series: no candles")
	}
	return nil
}

func (cs *candlestickSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	n := len(cs.candles)
	if n == 0 {
		return
	}
	half := int(math.Floor(float64(canvasBox.Width()) / float64(n+2) * 0.35))
	if half < 1 {
		half = 1
	}

	for _, c := range cs.candles {
		col := upColor
		if c.Close < c.Open {
			col = downColor
		}
		x := canvasBox.Left + xrange.Translate(chart.TimeToFloat64(c.Time))
		yHigh := canvasBox.Bottom - yrange.Translate(c.High)
		yLow := canvasBox.Bottom - yrange.Translate(c.Low)
		yOpen := canvasBox.Bottom - yrange.Translate(c.Open)
		yClose := canvasBox.Bottom - yrange.Translate(c.Close)

		r.SetStrokeColor(col)
		r.SetStrokeWidth(1)
		r.MoveTo(x, yHigh)
		r.LineTo(x, yLow)
		r.Stroke()

		top, bottom := yOpen, yClose
		if top > bottom {
			top, bottom = bottom, top
		}
		if bottom-top < 1 {
			bottom = top + 1
		}
		r.SetFillColor(col)
		r.SetStrokeColor(col)
		r.MoveTo(x-half, top)
		r.LineTo(x+half, top)
		r.LineTo(x+half, bottom)
		r.LineTo(x-half, bottom)
		r.LineTo(x-half, top)
		r.Close()
		r.FillStroke()
	}
}
