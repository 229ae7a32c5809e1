// Package tokenizer wraps tiktoken for client-side token estimates.
// Counts are used for /stats reporting and debug logging only, so the
// chars/4 fallback is acceptable when the encoding cannot be loaded.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/webpilot/webpilot/pkg/types"
)

const encodingName = "cl100k_base"

// perTurnOverhead approximates the per-message framing cost of the chat
// completion wire format.
const perTurnOverhead = 4

// Tokenizer counts tokens using the cl100k_base encoding.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// New creates a tokenizer. The first call downloads or loads the encoding
// tables; failure returns an error so callers can fall back to a nil
// tokenizer.
func New() (*Tokenizer, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}
	return &Tokenizer{encoding: encoding}, nil
}

// CountTokens returns the token count for a string. A nil tokenizer uses
// the rough 1 token per 4 characters estimate.
func (t *Tokenizer) CountTokens(text string) int {
	if t == nil || t.encoding == nil {
		return len(text) / 4
	}
	return len(t.encoding.Encode(text, nil, nil))
}

// CountTurnsTokens returns the estimated token count for a turn sequence,
// including per-message overhead.
func (t *Tokenizer) CountTurnsTokens(turns []types.Turn) int {
	total := 0
	for _, turn := range turns {
		total += t.CountTokens(turn.Content) + t.CountTokens(string(turn.Role)) + perTurnOverhead
		for _, call := range turn.ToolCalls {
			total += t.CountTokens(call.Name) + t.CountTokens(string(call.Arguments))
		}
	}
	return total
}
