package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"crypto-chart-analyzer/internal/types"
)

// fakeKuCoin serves hourly candles up to the current hour for any symbol.
func fakeKuCoin(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		start, _ := strconv.ParseInt(r.URL.Query().Get("startAt"), 10, 64)
		end, _ := strconv.ParseInt(r.URL.Query().Get("endAt"), 10, 64)
		last := time.Now().Truncate(time.Hour).Unix()

		rows := [][]string{}
		for ts, i := last, 0; ts >= start && i < 1500; ts, i = ts-3600, i+1 {
			if ts >= end {
				continue
			}
			base := 100 + float64(ts/3600%17)
			rows = append(rows, []string{
				strconv.FormatInt(ts, 10),
				fmt.Sprintf("%.2f", base),
				fmt.Sprintf("%.2f", base+1.5),
				fmt.Sprintf("%.2f", base+2.25),
				fmt.Sprintf("%.2f", base-1),
				"10.5", "1000",
			})
		}
		json.NewEncoder(w).Encode(map[string]any{"code": "200000", "data": rows})
	}))
}

func writeTestConfig(t *testing.T, marketURL string) (cfgPath, chartPath string) {
	t.Helper()
	dir := t.TempDir()
	chartPath = filepath.Join(dir, "out", "chart.png")
	cfgPath = filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("market:\n  base_url: %s\nchart:\n  path: %s\nllm:\n  provider: NOOP\n", marketURL, chartPath)
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath, chartPath
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "ERROR")
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&App{})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestAnalyzeJSON(t *testing.T) {
	var calls atomic.Int32
	srv := fakeKuCoin(t, &calls)
	defer srv.Close()
	cfgPath, chartPath := writeTestConfig(t, srv.URL)

	out, progress, err := run(t, "--config", cfgPath, "analyze", "-s", "BTC/USDT", "-t", "1h", "-l", "40", "--json", "--summary")
	if err != nil {
		t.Fatalf("unexpected error: %v (stderr %s)", err, progress)
	}

	var res types.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if res.Limit != 40 || res.Symbol != "BTC/USDT" {
		t.Errorf("unexpected result header %+v", res)
	}
	if res.Signal.PositionSide != "None" {
		t.Errorf("Expected noop side None, got %q", res.Signal.PositionSide)
	}
	if !strings.Contains(res.Summary, "BTC/USDT 1h: 40 candles") {
		t.Errorf("unexpected summary %q", res.Summary)
	}
	if _, err := os.Stat(chartPath); err != nil {
		t.Errorf("Expected chart at %s: %v", chartPath, err)
	}
	for _, want := range []string{"Generating chart...", "Chart displayed.", "Encoding image for API...", "Analysis complete."} {
		if !strings.Contains(progress, want) {
			t.Errorf("Expected progress to contain %q, got %q", want, progress)
		}
	}
}

func TestAnalyzeRejectsBadLimitBeforeFetching(t *testing.T) {
	var calls atomic.Int32
	srv := fakeKuCoin(t, &calls)
	defer srv.Close()
	cfgPath, _ := writeTestConfig(t, srv.URL)

	for _, limit := range []string{"-5", "abc", "0"} {
		_, _, err := run(t, "--config", cfgPath, "analyze", "-l", limit)
		if err == nil || !strings.Contains(err.Error(), "Please enter a valid positive integer for Limit.") {
			t.Errorf("limit %q: expected validation error, got %v", limit, err)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("Expected no market requests, got %d", calls.Load())
	}
}

func TestChartCommand(t *testing.T) {
	var calls atomic.Int32
	srv := fakeKuCoin(t, &calls)
	defer srv.Close()
	cfgPath, chartPath := writeTestConfig(t, srv.URL)

	out, _, err := run(t, "--config", cfgPath, "chart", "-s", "ETH/USDT", "-t", "1h", "-l", "25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Chart written to "+chartPath) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestConfigCommand(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "http://127.0.0.1:1")
	out, _, err := run(t, "--config", cfgPath, "config")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "exchange: kucoin") || !strings.Contains(out, "provider: NOOP") {
		t.Errorf("unexpected config output:\n%s", out)
	}
}
