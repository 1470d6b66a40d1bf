// Package tokenizer estimates how many model tokens a piece of text costs.
package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used for estimates.
const DefaultEncoding = "cl100k_base"

// charsPerToken is the fallback ratio when no encoding is loaded.
const charsPerToken = 4

// Tokenizer counts tokens with a tiktoken encoding.
type Tokenizer struct {
	mu  sync.Mutex
	enc *tiktoken.Tiktoken
}

// New loads the default encoding. Loading may need network access the first
// time; callers should fall back to Estimate when it fails.
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(DefaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", DefaultEncoding, err)
	}
	return &Tokenizer{enc: enc}, nil
}

// Count returns the number of tokens in text. A nil Tokenizer estimates.
func (t *Tokenizer) Count(text string) int {
	if t == nil || t.enc == nil {
		return Estimate(text)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.enc.Encode(text, nil, nil))
}

// Truncate cuts text at a line boundary so that it fits in maxTokens.
// It returns the text unchanged and false when it already fits or when
// maxTokens is not positive.
func (t *Tokenizer) Truncate(text string, maxTokens int) (string, bool) {
	if maxTokens <= 0 || t.Count(text) <= maxTokens {
		return text, false
	}

	// binary search on line count
	lines := strings.Split(text, "\n")
	lo, hi := 0, len(lines)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if t.Count(strings.Join(lines[:mid], "\n")) <= maxTokens {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return strings.Join(lines[:lo], "\n"), true
}

// Estimate approximates the token count from the character count.
func Estimate(text string) int {
	n := len([]rune(text))
	if n == 0 {
		return 0
	}
	return (n + charsPerToken - 1) / charsPerToken
}
