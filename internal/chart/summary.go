package chart

import (
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"crypto-chart-analyzer/internal/ta"
	"crypto-chart-analyzer/internal/types"
)

// Summarize describes the candles behind a chart: a header, the latest rows
// and an indicator block. Indicators without enough data are reported as n/a.
func Summarize(spec types.ChartSpec, candles []types.Candle, smaWindows []int, rows int) string {
	if len(candles) == 0 {
		return fmt.Sprintf("%s %s %s: no data", strings.ToUpper(spec.Exchange), spec.Symbol, spec.Timeframe)
	}

	first, last := candles[0], candles[len(candles)-1]
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s: %d candles from %s to %s\n",
		strings.ToUpper(spec.Exchange), spec.Symbol, spec.Timeframe, len(candles),
		first.Time.Format("2006-01-02 15:04"), last.Time.Format("2006-01-02 15:04"))

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "time\topen\thigh\tlow\tclose\tvolume\t")
	start := len(candles) - rows
	if start < 0 {
		start = 0
	}
	for _, c := range candles[start:] {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.4f\t\n",
			c.Time.Format("2006-01-02 15:04"),
			FormatPrice(c.Open), FormatPrice(c.High), FormatPrice(c.Low), FormatPrice(c.Close), c.Vol)
	}
	tw.Flush()

	closes := ta.Closes(candles)

	parts := make([]string, 0, len(smaWindows)+4)
	for _, w := range smaWindows {
		parts = append(parts, fmt.Sprintf("SMA%d=%s", w, indicator(ta.SMA(closes, w))))
	}
	parts = append(parts, fmt.Sprintf("RSI14=%s", number(ta.RSI(closes, 14))))
	bb := ta.Bollinger(closes, 20, 2)
	parts = append(parts, fmt.Sprintf("BB20=[%s %s %s]", indicator(bb.Lower), indicator(bb.Mid), indicator(bb.Upper)))
	parts = append(parts, fmt.Sprintf("ATR14=%s", indicator(ta.ATR(candles, 14))))
	fmt.Fprintf(&b, "Indicators: %s\n", strings.Join(parts, " "))

	if first.Open != 0 {
		fmt.Fprintf(&b, "Change: %+.2f%% (range %s - %s)\n",
			(last.Close-first.Open)/first.Open*100, FormatPrice(minLow(candles)), FormatPrice(maxHigh(candles)))
	}
	return b.String()
}

func indicator(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return FormatPrice(v)
}

func number(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

func minLow(candles []types.Candle) float64 {
	m := math.MaxFloat64
	for _, c := range candles {
		m = math.Min(m, c.Low)
	}
	return m
}

func maxHigh(candles []types.Candle) float64 {
	m := -math.MaxFloat64
	for _, c := range candles {
		m = math.Max(m, c.High)
	}
	return m
}
