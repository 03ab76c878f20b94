// Package ta computes the indicators printed in the chart summary and drawn
// as overlays. Every function returns NaN when the input is too short.
package ta

import (
	"math"

	"crypto-chart-analyzer/internal/types"
)

// Closes extracts close prices, oldest first.
func Closes(candles []types.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// SMA is the simple average of the last n values.
func SMA(vals []float64, n int) float64 {
	if n <= 0 || len(vals) < n {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals[len(vals)-n:] {
		sum += v
	}
	return sum / float64(n)
}

// SMASeries returns the n-period simple moving average for every index.
// Indices before the first full window are NaN.
func SMASeries(vals []float64, n int) []float64 {
	out := make([]float64, len(vals))
	sum := 0.0
	for i, v := range vals {
		sum += v
		if n > 0 && i >= n {
			sum -= vals[i-n]
		}
		if n <= 0 || i < n-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// RSI uses Wilder smoothing over the whole series.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return math.NaN()
	}
	var gain, loss float64
	for i := 1; i <= period; i++ {
		gain, loss = addMove(gain, loss, closes[i]-closes[i-1])
	}
	avgGain, avgLoss := gain/float64(period), loss/float64(period)
	for i := period + 1; i < len(closes); i++ {
		g, l := addMove(0, 0, closes[i]-closes[i-1])
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
	}
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

func addMove(gain, loss, d float64) (float64, float64) {
	if d > 0 {
		return gain + d, loss
	}
	return gain, loss - d
}

// StdDev is the population standard deviation of the last n values.
func StdDev(vals []float64, n int) float64 {
	m := SMA(vals, n)
	if math.IsNaN(m) {
		return m
	}
	s := 0.0
	for _, v := range vals[len(vals)-n:] {
		s += (v - m) * (v - m)
	}
	return math.Sqrt(s / float64(n))
}

type Band struct {
	Lower, Mid, Upper float64
}

// Bollinger returns the n-period band k standard deviations wide.
func Bollinger(closes []float64, n int, k float64) Band {
	mid := SMA(closes, n)
	sd := StdDev(closes, n)
	return Band{Lower: mid - k*sd, Mid: mid, Upper: mid + k*sd}
}

// ATR is the Wilder-smoothed average true range.
func ATR(candles []types.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return math.NaN()
	}
	tr := func(i int) float64 {
		c, prev := candles[i], candles[i-1].Close
		return math.Max(c.High-c.Low, math.Max(math.Abs(c.High-prev), math.Abs(c.Low-prev)))
	}
	atr := 0.0
	for i := 1; i <= period; i++ {
		atr += tr(i)
	}
	atr /= float64(period)
	for i := period + 1; i < len(candles); i++ {
		atr = (atr*float64(period-1) + tr(i)) / float64(period)
	}
	return atr
}
