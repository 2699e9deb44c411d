package searchterm

import (
	"fmt"
	"strings"
)

// Search term limits.
const (
	MinLength         = 3
	MaxLength         = 255
	DefaultMaxResults = 10
	MaxMaxResults     = 100
)

// DefaultNicheTerms is the allow-list of niche tokens a term must contain.
var DefaultNicheTerms = []string{"shirt", "tee", "t-shirt", "graphic", "print", "design", "pod", "apparel"}

// SearchTerm is a validated, normalized search phrase (immutable value object).
type SearchTerm struct {
	term       string
	maxResults int
}

// New validates and creates a SearchTerm.
// The raw phrase is trimmed, lower-cased and whitespace-collapsed; the result must be
// 3-255 chars and contain at least one niche token (substring match).
// maxResults must be 1-100; callers substitute DefaultMaxResults when the field is absent.
func New(raw string, maxResults int, nicheTerms []string) (SearchTerm, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return SearchTerm{}, fmt.Errorf("search term is required")
	}
	if len(trimmed) < MinLength {
		return SearchTerm{}, fmt.Errorf("search term too short (min %d chars)", MinLength)
	}
	if len(trimmed) > MaxLength {
		return SearchTerm{}, fmt.Errorf("search term too long (max %d chars)", MaxLength)
	}

	term := Normalize(trimmed)
	if term == "" {
		return SearchTerm{}, fmt.Errorf("search term is empty after normalization")
	}

	if maxResults < 1 || maxResults > MaxMaxResults {
		return SearchTerm{}, fmt.Errorf("max_results must be between 1 and %d", MaxMaxResults)
	}

	if len(nicheTerms) == 0 {
		nicheTerms = DefaultNicheTerms
	}
	if !containsAny(term, nicheTerms) {
		return SearchTerm{}, fmt.Errorf("search term %q is not related to graphic tees", term)
	}

	return SearchTerm{term: term, maxResults: maxResults}, nil
}

// Reconstruct creates a SearchTerm without validation (storage hydration).
func Reconstruct(term string, maxResults int) SearchTerm {
	return SearchTerm{term: term, maxResults: maxResults}
}

// Normalize lower-cases a phrase and collapses internal whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Term returns the normalized phrase.
func (s SearchTerm) Term() string { return s.term }

// MaxResults returns the requested number of organic results.
func (s SearchTerm) MaxResults() int { return s.maxResults }

// String implements fmt.Stringer.
func (s SearchTerm) String() string { return s.term }

func containsAny(term string, tokens []string) bool {
	for _, t := range tokens {
		if t != "" && strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
