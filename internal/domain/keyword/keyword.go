package keyword

import (
	"fmt"
	"strings"
)

// Keyword is an extracted phrase with its relevance and occurrence count (immutable value object).
type Keyword struct {
	text      string
	relevance float64
	frequency int
}

// New validates and creates a Keyword.
// Text must be non-empty, relevance in [0,1], frequency >= 0.
func New(text string, relevance float64, frequency int) (Keyword, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Keyword{}, fmt.Errorf("keyword text is required")
	}
	if relevance < 0 || relevance > 1 {
		return Keyword{}, fmt.Errorf("keyword relevance %v out of range [0,1]", relevance)
	}
	if frequency < 0 {
		return Keyword{}, fmt.Errorf("keyword frequency must be non-negative")
	}
	return Keyword{text: text, relevance: relevance, frequency: frequency}, nil
}

// Reconstruct creates a Keyword without validation (storage hydration).
func Reconstruct(text string, relevance float64, frequency int) Keyword {
	return Keyword{text: text, relevance: relevance, frequency: frequency}
}

// Text returns the keyword phrase.
func (k Keyword) Text() string { return k.text }

// Relevance returns the relevance score in [0,1].
func (k Keyword) Relevance() float64 { return k.relevance }

// Frequency returns how often the phrase occurs in the corpus.
func (k Keyword) Frequency() int { return k.frequency }

// Texts returns the phrases of the given keywords, in order.
func Texts(kws []Keyword) []string {
	out := make([]string, len(kws))
	for i, k := range kws {
		out[i] = k.text
	}
	return out
}
