package types

import "testing"

func TestParseSignalStructuredResponse(t *testing.T) {
	text := `Position Side: Long
Current Price: 64123.55
StopLoss: 62980.10
StopLoss (Percentage): 1.78%
TakeProfit: 66890.00
TakeProfit (Percentage): 4.31%


Price broke out of a symmetrical triangle on rising volume.
Retest of the upper trendline held.`

	s := ParseSignal(text)
	if s.PositionSide != "Long" {
		t.Errorf("Expected side Long, got %q", s.PositionSide)
	}
	if s.CurrentPrice != "64123.55" {
		t.Errorf("Expected current price 64123.55, got %q", s.CurrentPrice)
	}
	if s.StopLoss != "62980.10" || s.StopLossPct != "1.78%" {
		t.Errorf("Unexpected stop loss fields: %q %q", s.StopLoss, s.StopLossPct)
	}
	if s.TakeProfit != "66890.00" || s.TakeProfitPct != "4.31%" {
		t.Errorf("Unexpected take profit fields: %q %q", s.TakeProfit, s.TakeProfitPct)
	}
	want := "Price broke out of a symmetrical triangle on rising volume. Retest of the upper trendline held."
	if s.Rationale != want {
		t.Errorf("Unexpected rationale: %q", s.Rationale)
	}
}

func TestParseSignalMarkdownAndCase(t *testing.T) {
	s := ParseSignal("**Position Side:** short.\n**Stop Loss:** 0.52\n- Take Profit (Percentage): 8%")
	if s.PositionSide != "Short" {
		t.Errorf("Expected side Short, got %q", s.PositionSide)
	}
	if s.StopLoss != "0.52" {
		t.Errorf("Expected stop loss 0.52, got %q", s.StopLoss)
	}
	if s.TakeProfitPct != "8%" {
		t.Errorf("Expected take profit pct 8%%, got %q", s.TakeProfitPct)
	}
}

func TestParseSignalFreeText(t *testing.T) {
	s := ParseSignal("I cannot see a clear pattern here.")
	if s.HasSide() {
		t.Errorf("Expected no side, got %q", s.PositionSide)
	}
	if s.Rationale != "" {
		t.Errorf("Expected no rationale before any field, got %q", s.Rationale)
	}
}
