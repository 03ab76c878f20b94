// Package workflow turns a validated request into a trading hint: render the
// chart, encode it, ask the inference service and parse the reply. It has no
// UI dependency; progress is reported through events.
package workflow

import (
	"context"
	"fmt"
	"image"

	"crypto-chart-analyzer/internal/imaging"
	"crypto-chart-analyzer/internal/interfaces"
	"crypto-chart-analyzer/internal/logger"
	"crypto-chart-analyzer/internal/store"
	"crypto-chart-analyzer/internal/types"
)

const (
	StatusGenerating  = "Generating chart..."
	StatusChartShown  = "Chart displayed."
	StatusChartFailed = "Chart generation failed."
	StatusEncoding    = "Encoding image for API..."
	StatusEncodeFail  = "Image encoding failed."
	StatusComplete    = "Analysis complete."
	StatusFailed      = "Analysis failed."
)

// StatusCalling is the status shown while the inference service is working.
func StatusCalling(label string) string {
	return fmt.Sprintf("Calling %s API for hint...", label)
}

type EventKind int

const (
	EventStatus EventKind = iota
	EventChart
	EventDone
	EventFailed
)

// Event is one progress notification. Done and Failed are terminal.
type Event struct {
	Kind   EventKind
	Status string
	Image  image.Image
	Result types.Result
	Err    error
}

func (e Event) Terminal() bool {
	return e.Kind == EventDone || e.Kind == EventFailed
}

type (
	EncodeFunc func(path string) (b64, mime string, err error)
	LoadFunc   func(path string, w, h int) (image.Image, error)
)

type Option func(*Service)

// WithEncoder replaces the image encoder.
func WithEncoder(fn EncodeFunc) Option {
	return func(s *Service) { s.encode = fn }
}

// WithImageLoader replaces the loader that produces the display image.
func WithImageLoader(fn LoadFunc) Option {
	return func(s *Service) { s.load = fn }
}

type Service struct {
	cfg      *store.Config
	renderer interfaces.ChartRenderer
	analyzer interfaces.Analyzer
	encode   EncodeFunc
	load     LoadFunc
}

func NewService(cfg *store.Config, renderer interfaces.ChartRenderer, analyzer interfaces.Analyzer, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		renderer: renderer,
		analyzer: analyzer,
		encode:   imaging.EncodeFileBase64,
		load:     imaging.LoadResized,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) spec(req types.Request) types.ChartSpec {
	return types.ChartSpec{
		Symbol:    req.Symbol,
		Timeframe: req.Timeframe,
		Exchange:  s.cfg.Exchange,
		Limit:     req.Limit,
		Path:      s.cfg.Chart.Path,
		Width:     s.cfg.Chart.Width,
		Height:    s.cfg.Chart.Height,
	}
}

// RenderChart renders the chart for req and checks that the image file exists.
func (s *Service) RenderChart(ctx context.Context, req types.Request) (types.Chart, error) {
	logger.Stage(ctx, req.Symbol, "render", "timeframe", req.Timeframe, "limit", req.Limit)
	chart, err := s.renderer.Render(ctx, s.spec(req))
	if err != nil {
		return types.Chart{}, fail(KindRendering, "render chart", err)
	}
	if chart.Path == "" {
		chart.Path = s.cfg.Chart.Path
	}
	if !imaging.Exists(chart.Path) {
		return types.Chart{}, fail(KindRendering, "render chart",
			fmt.Errorf("%w: image file '%s'", imaging.ErrImageNotFound, chart.Path))
	}
	logger.Info(ctx, "Chart data summary", "symbol", req.Symbol, "summary", chart.Summary)
	return chart, nil
}

// Run executes one analysis. notify, when not nil, receives status and chart
// events in order; terminal events are left to the caller.
func (s *Service) Run(ctx context.Context, req types.Request, notify func(Event)) (types.Result, error) {
	if notify == nil {
		notify = func(Event) {}
	}
	status := func(msg string) { notify(Event{Kind: EventStatus, Status: msg}) }

	op := logger.StartOperation(ctx, "analysis", "symbol", req.Symbol, "timeframe", req.Timeframe, "limit", req.Limit)
	ctx = op.GetContext()

	status(StatusGenerating)
	chart, err := s.RenderChart(ctx, req)
	if err != nil {
		op.EndWithError(err, "stage", "render")
		return types.Result{}, err
	}

	img, err := s.load(chart.Path, s.cfg.Chart.DisplayWidth, s.cfg.Chart.DisplayHeight)
	if err != nil {
		err = fail(KindRendering, "load chart image", err)
		op.EndWithError(err, "stage", "display")
		return types.Result{}, err
	}
	notify(Event{Kind: EventChart, Image: img})
	status(StatusChartShown)

	logger.Stage(ctx, req.Symbol, "encode", "path", chart.Path)
	status(StatusEncoding)
	b64, mime, err := s.encode(chart.Path)
	if err != nil {
		err = fail(KindEncoding, "encode chart image", err)
		op.EndWithError(err, "stage", "encode")
		return types.Result{}, err
	}

	logger.Stage(ctx, req.Symbol, "infer", "provider", s.cfg.LLM.Provider, "model", s.cfg.LLM.Model)
	status(StatusCalling(s.cfg.LLM.Label))
	hint, err := s.analyzer.Analyze(ctx, types.AnalysisInput{
		Symbol:      req.Symbol,
		Timeframe:   req.Timeframe,
		Prompt:      ComposePrompt(req.Prompt),
		ImageBase64: b64,
		MimeType:    mime,
	})
	if err != nil {
		err = fail(KindInference, "request hint", err)
		op.EndWithError(err, "stage", "infer")
		return types.Result{}, err
	}

	res := types.Result{
		Symbol:    req.Symbol,
		Timeframe: req.Timeframe,
		Limit:     req.Limit,
		ChartPath: chart.Path,
		Summary:   chart.Summary,
		Hint:      hint,
		Signal:    types.ParseSignal(hint),
	}
	logger.Hint(ctx, req.Symbol, req.Timeframe, res.Signal.PositionSide,
		"stoploss", res.Signal.StopLoss, "takeprofit", res.Signal.TakeProfit)
	op.End("side", res.Signal.PositionSide)
	return res, nil
}

// Start runs the analysis on its own goroutine. The returned channel carries
// every event Run emits followed by exactly one Done or Failed, then closes.
// A panic in a collaborator is reported as Failed.
func (s *Service) Start(ctx context.Context, req types.Request) <-chan Event {
	events := make(chan Event, 8)
	go func() {
		defer close(events)
		defer func() {
			if p := recover(); p != nil {
				err := fail(KindUnknown, "analysis", fmt.Errorf("panic: %v", p))
				logger.ErrorWithErr(ctx, "Analysis panicked", err, "symbol", req.Symbol)
				events <- Event{Kind: EventFailed, Err: err}
			}
		}()
		res, err := s.Run(ctx, req, func(e Event) { events <- e })
		if err != nil {
			events <- Event{Kind: EventFailed, Err: err}
			return
		}
		events <- Event{Kind: EventDone, Result: res}
	}()
	return events
}
