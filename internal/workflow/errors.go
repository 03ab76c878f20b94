package workflow

import (
	"errors"
	"fmt"

	"crypto-chart-analyzer/internal/imaging"
)

// Kind classifies a workflow failure so the presentation layer can pick a message.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindRendering
	KindEncoding
	KindInference
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRendering:
		return "rendering"
	case KindEncoding:
		return "encoding"
	case KindInference:
		return "inference"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidLimit     = errors.New("limit must be a positive integer")
	ErrUnknownSymbol    = errors.New("unsupported symbol")
	ErrUnknownTimeframe = errors.New("unsupported timeframe")
)

// Error is the only error type Run and ParseRequest return.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func fail(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return KindUnknown
}

// Message is what a user sees for a failure: a dialog title and text, and the
// detail written into the result area.
type Message struct {
	Title  string
	Text   string
	Detail string
}

func UserMessage(err error) Message {
	if err == nil {
		return Message{}
	}
	detail := err.Error()
	var we *Error
	if errors.As(err, &we) {
		detail = we.Err.Error()
	}

	switch KindOf(err) {
	case KindValidation:
		m := Message{Title: "Invalid Input", Detail: detail}
		switch {
		case errors.Is(err, ErrUnknownSymbol):
			m.Text = "Please select a supported symbol. " + detail
		case errors.Is(err, ErrUnknownTimeframe):
			m.Text = "Please select a supported timeframe. " + detail
		default:
			m.Text = "Please enter a valid positive integer for Limit. " + detail
		}
		return m
	case KindRendering:
		if errors.Is(err, imaging.ErrImageNotFound) {
			return Message{Title: "Error", Text: "Failed to generate chart. " + detail, Detail: detail}
		}
	case KindEncoding:
		return Message{Title: "Error", Text: "Error encoding image: " + detail, Detail: detail}
	}
	return Message{
		Title:  "Error",
		Text:   "An unexpected error occurred during analysis: " + detail,
		Detail: detail,
	}
}
