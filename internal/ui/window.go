// Package ui is the fyne desktop window. All behavior lives in presenter;
// this package only builds widgets and implements presenter.View.
package ui

import (
	"context"
	"image"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"crypto-chart-analyzer/internal/presenter"
	"crypto-chart-analyzer/internal/store"
	"crypto-chart-analyzer/internal/workflow"
)

const (
	Title       = "Crypto Chart Analyzer"
	ButtonLabel = "Generate Chart & Get Hint"

	LabelSymbol    = "Cryptocurrency:"
	LabelTimeframe = "Timeframe:"
	LabelLimit     = "Limit (Data Points):"
	LabelPrompt    = "Custom Prompt:"
)

type Window struct {
	win  fyne.Window
	form *widget.Form

	symbol    *widget.Select
	timeframe *widget.Select
	limit     *widget.Entry
	prompt    *widget.Entry
	button    *widget.Button
	chart     *canvas.Image
	hint      *widget.Label

	presenter *presenter.Presenter
}

var _ presenter.View = (*Window)(nil)

func New(ctx context.Context, a fyne.App, cfg *store.Config, svc presenter.Starter) *Window {
	w := &Window{win: a.NewWindow(Title)}
	w.win.Resize(fyne.NewSize(1000, 800))

	w.symbol = widget.NewSelect(cfg.Symbols, nil)
	w.symbol.SetSelected(cfg.Symbols[0])
	w.timeframe = widget.NewSelect(cfg.Timeframes, nil)
	w.timeframe.SetSelected(cfg.Timeframes[0])
	w.limit = widget.NewEntry()
	w.limit.SetText(strconv.Itoa(cfg.DefaultLimit))
	w.prompt = widget.NewMultiLineEntry()
	w.prompt.Wrapping = fyne.TextWrapWord
	w.prompt.SetMinRowsVisible(3)
	w.prompt.SetText(cfg.DefaultPrompt)
	w.button = widget.NewButton(ButtonLabel, w.submit)
	w.button.Importance = widget.HighImportance

	w.form = widget.NewForm(
		widget.NewFormItem(LabelSymbol, w.symbol),
		widget.NewFormItem(LabelTimeframe, w.timeframe),
		widget.NewFormItem(LabelLimit, w.limit),
		widget.NewFormItem(LabelPrompt, w.prompt),
	)
	params := widget.NewCard("Chart Parameters", "", container.NewVBox(w.form, w.button))

	w.chart = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, cfg.Chart.DisplayWidth, cfg.Chart.DisplayHeight)))
	w.chart.FillMode = canvas.ImageFillContain
	w.chart.SetMinSize(fyne.NewSize(float32(cfg.Chart.DisplayWidth), float32(cfg.Chart.DisplayHeight)))
	chartCard := widget.NewCard("Candlestick Chart", "", container.NewCenter(w.chart))

	w.hint = widget.NewLabel(presenter.InitialText)
	w.hint.Wrapping = fyne.TextWrapWord
	hintCard := widget.NewCard("Trading Hint", "", container.NewVScroll(w.hint))

	body := container.NewHSplit(chartCard, hintCard)
	body.Offset = 0.55
	w.win.SetContent(container.NewBorder(params, nil, nil, nil, body))

	w.presenter = presenter.New(ctx, w, svc, workflow.CatalogFrom(cfg), fyne.Do)
	return w
}

func (w *Window) ShowAndRun() { w.win.ShowAndRun() }

func (w *Window) submit() {
	w.presenter.Submit(workflow.Form{
		Symbol:    w.symbol.Selected,
		Timeframe: w.timeframe.Selected,
		Limit:     w.limit.Text,
		Prompt:    w.prompt.Text,
	})
}

func (w *Window) SetBusy(busy bool) {
	if busy {
		w.button.Disable()
		return
	}
	w.button.Enable()
}

func (w *Window) ShowStatus(text string) { w.hint.SetText(text) }

func (w *Window) AppendStatus(text string) { w.hint.SetText(w.hint.Text + text) }

func (w *Window) ShowChart(img image.Image) {
	w.chart.Image = img
	w.chart.Refresh()
}

func (w *Window) ShowHint(text string) { w.hint.SetText(text) }

func (w *Window) ShowError(title, text string) {
	msg := widget.NewLabel(text)
	msg.Wrapping = fyne.TextWrapWord
	d := dialog.NewCustom(title, "OK", msg, w.win)
	d.Resize(fyne.NewSize(420, 160))
	d.Show()
}
