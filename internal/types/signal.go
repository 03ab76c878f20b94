package types

import (
	"bufio"
	"strings"
)

// Signal holds the fields the analysis prompt asks the model to fill in.
// Fields the model left out stay empty; values are kept as written.
type Signal struct {
	PositionSide  string `json:"position_side"`
	CurrentPrice  string `json:"current_price"`
	StopLoss      string `json:"stop_loss"`
	StopLossPct   string `json:"stop_loss_pct"`
	TakeProfit    string `json:"take_profit"`
	TakeProfitPct string `json:"take_profit_pct"`
	Rationale     string `json:"rationale,omitempty"`
}

// HasSide reports whether the model named a position side.
func (s Signal) HasSide() bool {
	return s.PositionSide != ""
}

// ParseSignal extracts "Key: value" lines from a model response. Lines that are
// not one of the known keys, once at least one key was seen, form the rationale.
func ParseSignal(text string) Signal {
	var s Signal
	var rationale []string
	seen := false

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if ok {
			if dst := s.field(normalizeKey(key)); dst != nil {
				*dst = cleanValue(value)
				seen = true
				continue
			}
		}
		if seen {
			rationale = append(rationale, line)
		}
	}
	s.Rationale = strings.Join(rationale, " ")
	if s.PositionSide != "" {
		s.PositionSide = normalizeSide(s.PositionSide)
	}
	return s
}

func (s *Signal) field(key string) *string {
	switch key {
	case "position side", "position type", "position":
		return &s.PositionSide
	case "current price":
		return &s.CurrentPrice
	case "stoploss", "stop loss":
		return &s.StopLoss
	case "stoploss (percentage)", "stop loss (percentage)":
		return &s.StopLossPct
	case "takeprofit", "take profit":
		return &s.TakeProfit
	case "takeprofit (percentage)", "take profit (percentage)":
		return &s.TakeProfitPct
	}
	return nil
}

func normalizeKey(k string) string {
	k = strings.Trim(k, " *-#\t")
	return strings.ToLower(strings.Join(strings.Fields(k), " "))
}

func cleanValue(v string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(v), "*"))
}

func normalizeSide(v string) string {
	f := strings.Fields(v)
	if len(f) == 0 {
		return v
	}
	switch strings.ToUpper(strings.Trim(f[0], ".,")) {
	case "LONG":
		return "Long"
	case "SHORT":
		return "Short"
	case "NONE":
		return "None"
	}
	return v
}
