// internal/tokens/counter.go
package tokens

import (
	"log/slog"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates prompt sizes for agent limits. When no tokenizer can be
// loaded it falls back to a characters/4 estimate.
type Counter struct {
	tokenizer *tiktoken.Tiktoken
}

// New selects the tokenizer for model (e.g. "gpt-4"), falling back to
// cl100k_base for unknown models and to the estimate when neither loads.
func New(model string) *Counter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			slog.Default().With("component", "tokens").Debug("tokenizer unavailable, estimating", "error", err)
			return &Counter{}
		}
	}
	return &Counter{tokenizer: enc}
}

// Estimate returns a Counter that never loads a tokenizer.
func Estimate() *Counter {
	return &Counter{}
}

// Exact reports whether counts come from a real tokenizer.
func (c *Counter) Exact() bool {
	return c != nil && c.tokenizer != nil
}

// Count returns the token count for text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c.Exact() {
		return len(c.tokenizer.Encode(text, nil, nil))
	}
	return (utf8.RuneCountInString(text) + 3) / 4
}

// Over reports the count for text and whether it exceeds limit. A limit
// <= 0 never overflows.
func (c *Counter) Over(text string, limit int) (int, bool) {
	n := c.Count(text)
	return n, limit > 0 && n > limit
}
