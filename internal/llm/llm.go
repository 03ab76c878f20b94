// Package llm holds what the inference service adapters share.
package llm

import (
	"errors"
	"strings"
)

var (
	ErrMissingAPIKey = errors.New("inference API key missing")
	ErrEmptyReply    = errors.New("inference service returned no content")
)

// Reply rejects a blank model reply. Anything else is returned exactly as the
// service sent it.
func Reply(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", ErrEmptyReply
	}
	return s, nil
}
