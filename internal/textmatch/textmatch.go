// Package textmatch finds fixed term sets in text with a single Aho-Corasick pass.
package textmatch

import (
	"sort"
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Set is a lower-cased dictionary of terms matched as substrings.
// Safe for concurrent use.
type Set struct {
	terms []string

	// ahocorasick.Matcher mutates internal counters on Match.
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
}

// NewSet builds a matcher over the given terms. Terms are lower-cased; empty terms are dropped.
func NewSet(terms ...string) *Set {
	clean := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(t)
		if t != "" {
			clean = append(clean, t)
		}
	}
	s := &Set{terms: clean}
	if len(clean) > 0 {
		s.matcher = ahocorasick.NewStringMatcher(clean)
	}
	return s
}

// Terms returns the dictionary in declaration order.
func (s *Set) Terms() []string {
	out := make([]string, len(s.terms))
	copy(out, s.terms)
	return out
}

// Matches returns every dictionary term found in text, in declaration order.
// Matching is case-insensitive.
func (s *Set) Matches(text string) []string {
	if s.matcher == nil || text == "" {
		return nil
	}
	lower := []byte(strings.ToLower(text))

	s.mu.Lock()
	hits := s.matcher.Match(lower)
	s.mu.Unlock()

	if len(hits) == 0 {
		return nil
	}
	sort.Ints(hits)
	out := make([]string, 0, len(hits))
	for _, i := range hits {
		out = append(out, s.terms[i])
	}
	return out
}

// Contains reports whether any dictionary term occurs in text.
func (s *Set) Contains(text string) bool {
	return len(s.Matches(text)) > 0
}

// Count returns how many distinct dictionary terms occur in text.
func (s *Set) Count(text string) int {
	return len(s.Matches(text))
}
