package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-chart-analyzer/internal/store"
)

func TestParseRequestRejectsBadLimits(t *testing.T) {
	c := CatalogFrom(store.Default())
	for _, limit := range []string{"-5", "abc", "0", "", "1.5", "10x"} {
		t.Run(limit, func(t *testing.T) {
			_, err := ParseRequest(Form{Symbol: "BTC/USDT", Timeframe: "1h", Limit: limit}, c)
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
			assert.True(t, errors.Is(err, ErrInvalidLimit))
		})
	}
}

func TestParseRequestKeepsLimit(t *testing.T) {
	req, err := ParseRequest(Form{Symbol: "ETH/USDT", Timeframe: "4h", Limit: " 100 ", Prompt: "p"}, CatalogFrom(store.Default()))
	require.NoError(t, err)
	assert.Equal(t, 100, req.Limit)
	assert.Equal(t, "ETH/USDT", req.Symbol)
	assert.Equal(t, "4h", req.Timeframe)
	assert.Equal(t, "p", req.Prompt)
}

func TestParseRequestRejectsUnknownChoices(t *testing.T) {
	c := CatalogFrom(store.Default())

	_, err := ParseRequest(Form{Symbol: "FOO/BAR", Timeframe: "1h", Limit: "10"}, c)
	assert.True(t, errors.Is(err, ErrUnknownSymbol))
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = ParseRequest(Form{Symbol: "BTC/USDT", Timeframe: "3h", Limit: "10"}, c)
	assert.True(t, errors.Is(err, ErrUnknownTimeframe))
}

func TestUserMessage(t *testing.T) {
	_, err := ParseRequest(Form{Symbol: "BTC/USDT", Timeframe: "1h", Limit: "-5"}, CatalogFrom(store.Default()))
	m := UserMessage(err)
	assert.Equal(t, "Invalid Input", m.Title)
	assert.Contains(t, m.Text, "Please enter a valid positive integer for Limit.")

	m = UserMessage(fail(KindInference, "request hint", errBoom))
	assert.Equal(t, "Error", m.Title)
	assert.Equal(t, "An unexpected error occurred during analysis: boom", m.Text)
	assert.Equal(t, "boom", m.Detail)

	assert.Equal(t, KindUnknown, KindOf(errBoom))
	assert.Equal(t, Message{}, UserMessage(nil))
}
