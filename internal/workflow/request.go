package workflow

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"crypto-chart-analyzer/internal/store"
	"crypto-chart-analyzer/internal/types"
)

// Form holds the raw values of the parameter form.
type Form struct {
	Symbol    string
	Timeframe string
	Limit     string
	Prompt    string
}

// Catalog is the set of choices the form offers.
type Catalog struct {
	Symbols    []string
	Timeframes []string
}

func CatalogFrom(cfg *store.Config) Catalog {
	return Catalog{Symbols: cfg.Symbols, Timeframes: cfg.Timeframes}
}

// ParseRequest validates a form. It never touches the network or the disk.
func ParseRequest(f Form, c Catalog) (types.Request, error) {
	symbol := strings.TrimSpace(f.Symbol)
	if !slices.Contains(c.Symbols, symbol) {
		return types.Request{}, fail(KindValidation, "parse symbol", fmt.Errorf("%w: %q", ErrUnknownSymbol, f.Symbol))
	}
	timeframe := strings.TrimSpace(f.Timeframe)
	if !slices.Contains(c.Timeframes, timeframe) {
		return types.Request{}, fail(KindValidation, "parse timeframe", fmt.Errorf("%w: %q", ErrUnknownTimeframe, f.Timeframe))
	}

	limit, err := strconv.Atoi(strings.TrimSpace(f.Limit))
	if err != nil {
		return types.Request{}, fail(KindValidation, "parse limit", fmt.Errorf("%w: %q is not an integer", ErrInvalidLimit, f.Limit))
	}
	if limit <= 0 {
		return types.Request{}, fail(KindValidation, "parse limit", fmt.Errorf("%w: got %d", ErrInvalidLimit, limit))
	}

	return types.Request{
		Symbol:    symbol,
		Timeframe: timeframe,
		Limit:     limit,
		Prompt:    f.Prompt,
	}, nil
}
