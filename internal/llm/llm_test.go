package llm

import (
	"errors"
	"testing"
)

func TestReply(t *testing.T) {
	if _, err := Reply("  \n\t"); !errors.Is(err, ErrEmptyReply) {
		t.Errorf("Expected ErrEmptyReply, got %v", err)
	}
	got, err := Reply("Position Side: Long\n\n\nbecause  \n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Position Side: Long\n\n\nbecause  \n" {
		t.Errorf("unexpected reply %q", got)
	}
}
