package workflow

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-chart-analyzer/internal/imaging"
	"crypto-chart-analyzer/internal/logger"
)

func TestRunIssuesOneInferenceRequest(t *testing.T) {
	cfg := testConfig(t)
	r := &fakeRenderer{}
	a := &fakeAnalyzer{reply: "Position Side: Long\nStopLoss: 90"}
	svc := NewService(cfg, r, a)

	var events []Event
	res, err := svc.Run(context.Background(), testRequest(), func(e Event) { events = append(events, e) })
	require.NoError(t, err)

	require.Equal(t, 1, r.calls())
	assert.Equal(t, 100, r.specs[0].Limit)
	assert.Equal(t, "kucoin", r.specs[0].Exchange)
	assert.Equal(t, cfg.Chart.Path, r.specs[0].Path)

	require.Equal(t, 1, a.calls())
	in := a.inputs[0]
	raw, err := os.ReadFile(cfg.Chart.Path)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(raw), in.ImageBase64)
	assert.Equal(t, "image/png", in.MimeType)
	assert.Contains(t, in.Prompt, "look for wedges")
	assert.Contains(t, in.Prompt, "Position Side:")

	assert.Equal(t, "Long", res.Signal.PositionSide)
	assert.Equal(t, "90", res.Signal.StopLoss)
	assert.Equal(t, "Position Side: Long\nStopLoss: 90", res.Hint)
	assert.Equal(t, "KUCOIN BTC/USDT", res.Summary)

	var statuses []string
	var chart image.Image
	for _, e := range events {
		switch e.Kind {
		case EventStatus:
			statuses = append(statuses, e.Status)
		case EventChart:
			chart = e.Image
		}
		assert.False(t, e.Terminal(), "Run must not emit terminal events")
	}
	assert.Equal(t, []string{StatusGenerating, StatusChartShown, StatusEncoding, StatusCalling("AvalAI")}, statuses)
	require.NotNil(t, chart)
	assert.Equal(t, cfg.Chart.DisplayWidth, chart.Bounds().Dx())
	assert.Equal(t, cfg.Chart.DisplayHeight, chart.Bounds().Dy())
}

func TestRunMissingImageStopsBeforeEncoding(t *testing.T) {
	encoded := false
	a := &fakeAnalyzer{}
	svc := NewService(testConfig(t), &fakeRenderer{skipWrite: true}, a,
		WithEncoder(func(string) (string, string, error) {
			encoded = true
			return "", "", nil
		}))

	_, err := svc.Run(context.Background(), testRequest(), nil)
	require.Error(t, err)
	assert.Equal(t, KindRendering, KindOf(err))
	assert.True(t, errors.Is(err, imaging.ErrImageNotFound))
	assert.False(t, encoded)
	assert.Equal(t, 0, a.calls())
	assert.True(t, strings.HasPrefix(UserMessage(err).Text, "Failed to generate chart."))
}

func TestRunRendererError(t *testing.T) {
	a := &fakeAnalyzer{}
	svc := NewService(testConfig(t), &fakeRenderer{err: errBoom}, a)

	_, err := svc.Run(context.Background(), testRequest(), nil)
	assert.Equal(t, KindRendering, KindOf(err))
	assert.True(t, errors.Is(err, errBoom))
	assert.Equal(t, 0, a.calls())
}

func TestRunEncodingFailureStopsBeforeInference(t *testing.T) {
	a := &fakeAnalyzer{}
	svc := NewService(testConfig(t), &fakeRenderer{}, a,
		WithEncoder(func(string) (string, string, error) { return "", "", errBoom }))

	_, err := svc.Run(context.Background(), testRequest(), nil)
	assert.Equal(t, KindEncoding, KindOf(err))
	assert.Equal(t, 0, a.calls())
}

func TestRunDisplayFailureIsRendering(t *testing.T) {
	a := &fakeAnalyzer{}
	svc := NewService(testConfig(t), &fakeRenderer{}, a,
		WithImageLoader(func(string, int, int) (image.Image, error) { return nil, errBoom }))

	_, err := svc.Run(context.Background(), testRequest(), nil)
	assert.Equal(t, KindRendering, KindOf(err))
	assert.Equal(t, 0, a.calls())
}

func TestRunInferenceFailure(t *testing.T) {
	a := &fakeAnalyzer{err: errBoom}
	svc := NewService(testConfig(t), &fakeRenderer{}, a)

	_, err := svc.Run(context.Background(), testRequest(), nil)
	assert.Equal(t, KindInference, KindOf(err))
	assert.Equal(t, 1, a.calls())
	assert.Equal(t, "boom", UserMessage(err).Detail)
}

func drain(ch <-chan Event) []Event {
	var out []Event
	for e := range ch {
		out = append(out, e)
	}
	return out
}

func countTerminal(events []Event) int {
	n := 0
	for _, e := range events {
		if e.Terminal() {
			n++
		}
	}
	return n
}

func TestStartEndsWithOneTerminalEvent(t *testing.T) {
	t.Run("done", func(t *testing.T) {
		svc := NewService(testConfig(t), &fakeRenderer{}, &fakeAnalyzer{reply: "Position Side: None"})
		events := drain(svc.Start(context.Background(), testRequest()))
		require.NotEmpty(t, events)
		assert.Equal(t, 1, countTerminal(events))
		last := events[len(events)-1]
		assert.Equal(t, EventDone, last.Kind)
		assert.Equal(t, "None", last.Result.Signal.PositionSide)
	})

	t.Run("failed", func(t *testing.T) {
		svc := NewService(testConfig(t), &fakeRenderer{skipWrite: true}, &fakeAnalyzer{})
		events := drain(svc.Start(context.Background(), testRequest()))
		require.NotEmpty(t, events)
		assert.Equal(t, 1, countTerminal(events))
		last := events[len(events)-1]
		assert.Equal(t, EventFailed, last.Kind)
		assert.Equal(t, KindRendering, KindOf(last.Err))
	})

	t.Run("analyzer panics", func(t *testing.T) {
		svc := NewService(testConfig(t), &fakeRenderer{}, &fakeAnalyzer{crash: true})
		events := drain(svc.Start(context.Background(), testRequest()))
		require.NotEmpty(t, events)
		assert.Equal(t, 1, countTerminal(events))
		last := events[len(events)-1]
		assert.Equal(t, EventFailed, last.Kind)
		assert.Equal(t, KindUnknown, KindOf(last.Err))
		assert.Contains(t, last.Err.Error(), "nil map")
		msg := UserMessage(last.Err)
		assert.Contains(t, msg.Text, "An unexpected error occurred during analysis")
	})
}

func TestRunLogsChartSummaryAtInfo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, logger.Configure(logger.Options{Level: "INFO", Output: &buf}))
	t.Cleanup(func() { logger.Configure(logger.Options{Output: io.Discard}) })

	svc := NewService(testConfig(t), &fakeRenderer{}, &fakeAnalyzer{reply: "Position Side: None"})
	_, err := svc.Run(context.Background(), testRequest(), nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Chart data summary")
	assert.Contains(t, out, "KUCOIN BTC/USDT")
}
