package market

import (
	"fmt"
	"strings"
	"time"
)

type interval struct {
	kind string
	step time.Duration
}

// intervals maps the form's timeframe labels to KuCoin kline types.
var intervals = map[string]interval{
	"1m":  {"1min", time.Minute},
	"5m":  {"5min", 5 * time.Minute},
	"15m": {"15min", 15 * time.Minute},
	"30m": {"30min", 30 * time.Minute},
	"1h":  {"1hour", time.Hour},
	"2h":  {"2hour", 2 * time.Hour},
	"4h":  {"4hour", 4 * time.Hour},
	"6h":  {"6hour", 6 * time.Hour},
	"8h":  {"8hour", 8 * time.Hour},
	"12h": {"12hour", 12 * time.Hour},
	"1d":  {"1day", 24 * time.Hour},
	"1w":  {"1week", 7 * 24 * time.Hour},
}

// Interval returns the KuCoin kline type and candle duration for timeframe.
func Interval(timeframe string) (string, time.Duration, error) {
	iv, ok := intervals[timeframe]
	if !ok {
		return "", 0, fmt.Errorf("unsupported timeframe %q", timeframe)
	}
	return iv.kind, iv.step, nil
}

// Pair converts "BTC/USDT" to KuCoin's "BTC-USDT".
func Pair(symbol string) (string, error) {
	base, quote, ok := strings.Cut(strings.ToUpper(strings.TrimSpace(symbol)), "/")
	if !ok || base == "" || quote == "" {
		return "", fmt.Errorf("invalid symbol %q: want BASE/QUOTE", symbol)
	}
	return base + "-" + quote, nil
}
