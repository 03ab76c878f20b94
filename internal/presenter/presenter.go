// Package presenter holds the window's behavior without depending on a GUI
// toolkit. The toolkit implements View and supplies a post function that runs
// a callback on its UI thread.
package presenter

import (
	"context"
	"image"
	"strings"

	"crypto-chart-analyzer/internal/logger"
	"crypto-chart-analyzer/internal/types"
	"crypto-chart-analyzer/internal/workflow"
)

const (
	InitialText = "Click 'Generate Chart & Get Hint' to see the analysis."
	BusyText    = "Generating chart and fetching hint... Please wait."
)

type View interface {
	SetBusy(busy bool)
	// ShowStatus replaces the result area with text.
	ShowStatus(text string)
	AppendStatus(text string)
	ShowChart(img image.Image)
	ShowHint(text string)
	ShowError(title, text string)
}

type Starter interface {
	Start(ctx context.Context, req types.Request) <-chan workflow.Event
}

type Presenter struct {
	ctx     context.Context
	view    View
	svc     Starter
	catalog workflow.Catalog
	post    func(func())

	busy bool
	text string
}

func New(ctx context.Context, view View, svc Starter, catalog workflow.Catalog, post func(func())) *Presenter {
	return &Presenter{
		ctx:     ctx,
		view:    view,
		svc:     svc,
		catalog: catalog,
		post:    post,
		text:    InitialText,
	}
}

// Busy reports whether an analysis is in flight.
func (p *Presenter) Busy() bool { return p.busy }

// Submit validates the form and starts an analysis. It must be called on the
// UI thread. The returned channel closes once the terminal event has been
// applied; ok is false when nothing was started.
func (p *Presenter) Submit(f workflow.Form) (done <-chan struct{}, ok bool) {
	if p.busy {
		logger.Debug(p.ctx, "Submit ignored, analysis in progress")
		return nil, false
	}
	req, err := workflow.ParseRequest(f, p.catalog)
	if err != nil {
		logger.Warn(p.ctx, "Invalid form input", "error", err)
		msg := workflow.UserMessage(err)
		p.view.ShowError(msg.Title, msg.Text)
		return nil, false
	}

	p.busy = true
	p.view.SetBusy(true)
	p.replace(BusyText + "\n")

	events := p.svc.Start(p.ctx, req)
	finished := make(chan struct{})
	go func() {
		for e := range events {
			p.post(func() { p.apply(e, finished) })
		}
	}()
	return finished, true
}

func (p *Presenter) apply(e workflow.Event, finished chan struct{}) {
	switch e.Kind {
	case workflow.EventStatus:
		p.status(e.Status)
	case workflow.EventChart:
		p.view.ShowChart(e.Image)
	case workflow.EventDone:
		p.text = e.Result.Hint
		p.view.ShowHint(e.Result.Hint)
		p.status(workflow.StatusComplete)
		p.finish(finished)
	case workflow.EventFailed:
		msg := workflow.UserMessage(e.Err)
		p.view.ShowError(msg.Title, msg.Text)
		p.replace("Error: " + msg.Detail + "\n")
		p.status(failureStatus(e.Err))
		p.finish(finished)
	}
}

func (p *Presenter) finish(finished chan struct{}) {
	p.busy = false
	p.view.SetBusy(false)
	close(finished)
}

func (p *Presenter) replace(text string) {
	p.text = text
	p.view.ShowStatus(text)
}

// status replaces a previous status line and appends after anything else.
func (p *Presenter) status(msg string) {
	if isStatusText(p.text) {
		p.replace(msg + "\n")
		return
	}
	line := msg + "\n"
	if p.text != "" && !strings.HasSuffix(p.text, "\n") {
		line = "\n" + line
	}
	p.text += line
	p.view.AppendStatus(line)
}

func isStatusText(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" ||
		strings.Contains(s, InitialText) ||
		strings.HasPrefix(s, "Generating chart") ||
		strings.HasPrefix(s, "Encoding image") ||
		strings.HasPrefix(s, "Calling ")
}

func failureStatus(err error) string {
	switch workflow.KindOf(err) {
	case workflow.KindRendering:
		return workflow.StatusChartFailed
	case workflow.KindEncoding:
		return workflow.StatusEncodeFail
	default:
		return workflow.StatusFailed
	}
}
