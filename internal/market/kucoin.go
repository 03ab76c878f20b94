package market

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"crypto-chart-analyzer/internal/api"
	"crypto-chart-analyzer/internal/interfaces"
	"crypto-chart-analyzer/internal/types"
)

const (
	candlesPath = "/api/v1/market/candles"
	codeSuccess = "200000"
	// KuCoin returns at most this many candles per request
	maxPerPage = 1500
)

var ErrNoCandles = errors.New("no candles returned")

type Params struct {
	BaseURL string
	Timeout time.Duration
}

// KuCoin reads public klines from the KuCoin spot market.
type KuCoin struct {
	client *api.Client
	now    func() time.Time
}

var _ interfaces.MarketData = (*KuCoin)(nil)

func NewKuCoin(p Params, opts ...api.ClientOption) *KuCoin {
	base := []api.ClientOption{
		api.WithBaseURL(p.BaseURL),
		api.WithTimeout(p.Timeout),
		api.WithLogging(true),
	}
	for k, v := range api.JSONHeaders() {
		base = append(base, api.WithHeader(k, v))
	}
	return &KuCoin{
		client: api.NewClient(append(base, opts...)...),
		now:    time.Now,
	}
}

// candlesResponse rows are [time, open, close, high, low, volume, turnover], newest first.
type candlesResponse struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data [][]string `json:"data"`
}

// Candles fetches the latest limit candles, paging backwards when limit exceeds one page.
func (k *KuCoin) Candles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	pair, err := Pair(symbol)
	if err != nil {
		return nil, err
	}
	kind, step, err := Interval(timeframe)
	if err != nil {
		return nil, err
	}

	byTime := make(map[int64]types.Candle, limit)
	end := k.now().Unix()
	for len(byTime) < limit {
		want := limit - len(byTime)
		if want > maxPerPage {
			want = maxPerPage
		}
		// One extra step so the still-open candle does not eat into the window
		start := end - int64(want+1)*int64(step/time.Second)

		page, err := k.page(ctx, pair, kind, start, end)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		oldest := end
		for _, c := range page {
			ts := c.Time.Unix()
			byTime[ts] = c
			if ts < oldest {
				oldest = ts
			}
		}
		if oldest >= end {
			break
		}
		end = oldest - 1
	}

	if len(byTime) == 0 {
		return nil, fmt.Errorf("%s %s: %w", pair, kind, ErrNoCandles)
	}

	out := make([]types.Candle, 0, len(byTime))
	for _, c := range byTime {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (k *KuCoin) page(ctx context.Context, pair, kind string, start, end int64) ([]types.Candle, error) {
	q := url.Values{}
	q.Set("symbol", pair)
	q.Set("type", kind)
	q.Set("startAt", strconv.FormatInt(start, 10))
	q.Set("endAt", strconv.FormatInt(end, 10))

	resp, err := k.client.GET(ctx, candlesPath, q)
	if err != nil {
		return nil, fmt.Errorf("kucoin candles: %w", err)
	}

	var body candlesResponse
	if err := resp.ParseJSON(&body); err != nil {
		return nil, fmt.Errorf("kucoin candles: %w", err)
	}
	if body.Code != codeSuccess {
		return nil, fmt.Errorf("kucoin candles: code %s: %s", body.Code, body.Msg)
	}

	out := make([]types.Candle, 0, len(body.Data))
	for i, row := range body.Data {
		c, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("kucoin candles row %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func parseRow(row []string) (types.Candle, error) {
	if len(row) < 6 {
		return types.Candle{}, fmt.Errorf("want at least 6 fields, got %d", len(row))
	}
	ts, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return types.Candle{}, fmt.Errorf("time %q: %w", row[0], err)
	}
	vals := make([]float64, 5)
	for i, s := range row[1:6] {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return types.Candle{}, fmt.Errorf("field %d %q: %w", i+1, s, err)
		}
		vals[i] = d.InexactFloat64()
	}
	return types.Candle{
		Time:  time.Unix(ts, 0).UTC(),
		Open:  vals[0],
		Close: vals[1],
		High:  vals[2],
		Low:   vals[3],
		Vol:   vals[4],
	}, nil
}
