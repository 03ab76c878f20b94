package types

import "time"

type Candle struct {
	Time                        time.Time
	Open, High, Low, Close, Vol float64
}

// Request is one validated analysis request collected from the form.
type Request struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	Limit     int    `json:"limit"`
	Prompt    string `json:"prompt"`
}

// ChartSpec tells a renderer what to draw and where to write the image.
type ChartSpec struct {
	Symbol    string
	Timeframe string
	Exchange  string
	Limit     int
	Path      string
	Width     int
	Height    int
}

// Chart is the renderer's output: an image file on disk plus a text summary of the data.
type Chart struct {
	Path    string
	Summary string
	Candles int
}

// AnalysisInput is what the inference service receives.
type AnalysisInput struct {
	Symbol      string
	Timeframe   string
	Prompt      string
	ImageBase64 string
	MimeType    string
}

type Result struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	Limit     int    `json:"limit"`
	ChartPath string `json:"chart_path"`
	Summary   string `json:"summary,omitempty"`
	Hint      string `json:"hint"`
	Signal    Signal `json:"signal"`
}
