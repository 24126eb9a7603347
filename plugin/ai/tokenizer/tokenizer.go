// Package tokenizer provides approximate token counting for prompt budgeting.
// It uses the cl100k_base BPE when available and falls back to a
// character-based heuristic, so estimation never fails a turn.
package tokenizer

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Estimator estimates the token count of a text.
type Estimator interface {
	Estimate(text string) int
}

// Tokenizer estimates token counts via tiktoken with a heuristic fallback.
type Tokenizer struct {
	mu       sync.Mutex
	encoding *tiktoken.Tiktoken
	loaded   bool
}

// New creates a tokenizer. Encoding data is loaded lazily on first use;
// a load failure downgrades to the heuristic permanently.
func New() *Tokenizer {
	return &Tokenizer{}
}

// Estimate returns the approximate token count for text.
func (t *Tokenizer) Estimate(text string) int {
	if text == "" {
		return 0
	}

	if enc := t.encodingOrNil(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return HeuristicEstimate(text)
}

func (t *Tokenizer) encodingOrNil() *tiktoken.Tiktoken {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.loaded {
		t.loaded = true
		enc, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err != nil {
			slog.Warn("failed to load tiktoken encoding, using heuristic estimation", "error", err)
		} else {
			t.encoding = enc
		}
	}
	return t.encoding
}

// HeuristicEstimate approximates the token count without BPE data.
// CJK characters count as ~2 tokens each, ASCII as ~1 token per 4 chars.
func HeuristicEstimate(text string) int {
	if len(text) == 0 {
		return 0
	}

	wideCount := 0
	asciiCount := 0
	for _, r := range text {
		if r < 128 {
			asciiCount++
		} else {
			wideCount++
		}
	}

	tokens := wideCount*2 + asciiCount/4
	if tokens == 0 {
		tokens = 1
	}
	return tokens
}

var _ Estimator = (*Tokenizer)(nil)
