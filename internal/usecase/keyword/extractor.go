package keyword

import (
	"regexp"
	"sort"
	"strings"

	domkw "github.com/kailas-cloud/serpintel/internal/domain/keyword"
	"github.com/kailas-cloud/serpintel/internal/domain/serp"
)

// Extraction limits.
const (
	minTokenLen      = 3
	maxNGram         = 3
	maxSecondary     = 10
	secondaryBase    = 0.5
	secondarySpread  = 0.45
	mainKeywordScore = 1.0
)

var (
	tokenRegex = regexp.MustCompile(`[a-z0-9]+`)
	stopWords  = map[string]bool{
		"and": true, "the": true, "for": true, "with": true, "this": true,
		"that": true, "from": true, "have": true, "not": true,
	}
)

// Extractor derives the main and secondary keywords of a SERP from n-gram frequencies.
type Extractor struct{}

// NewExtractor creates a keyword extractor.
func NewExtractor() *Extractor { return &Extractor{} }

// Extract returns the main keyword (the normalized term, relevance 1.0) and up to ten
// secondary keywords ranked by frequency, ties broken by first occurrence.
// Secondary relevance is 0.5 + 0.45*f/maxF, where maxF is the highest n-gram frequency.
func (e *Extractor) Extract(term string, payload serp.Payload) (domkw.Keyword, []domkw.Keyword) {
	segments := make([]string, 0, 1+2*len(payload.Results()))
	segments = append(segments, term)
	for _, r := range payload.Results() {
		segments = append(segments, r.Title(), r.Snippet())
	}

	counts := make(map[string]int)
	var order []string
	for _, seg := range segments {
		for _, g := range nGrams(tokenize(seg)) {
			if counts[g] == 0 {
				order = append(order, g)
			}
			counts[g]++
		}
	}

	mainText := strings.Join(strings.Fields(strings.ToLower(term)), " ")
	mainFreq, ok := counts[mainText]
	if !ok {
		mainFreq = phraseCount(segments, mainText)
	}
	main := domkw.Reconstruct(mainText, mainKeywordScore, mainFreq)

	firstSeen := make(map[string]int, len(order))
	for i, g := range order {
		firstSeen[g] = i
	}
	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		ci, cj := counts[ranked[i]], counts[ranked[j]]
		if ci != cj {
			return ci > cj
		}
		return firstSeen[ranked[i]] < firstSeen[ranked[j]]
	})

	if len(ranked) == 0 {
		return main, nil
	}
	maxFreq := float64(counts[ranked[0]])

	secondary := make([]domkw.Keyword, 0, maxSecondary)
	for _, g := range ranked {
		if len(secondary) == maxSecondary {
			break
		}
		if g == mainText {
			continue
		}
		f := counts[g]
		rel := secondaryBase + secondarySpread*float64(f)/maxFreq
		secondary = append(secondary, domkw.Reconstruct(g, rel, f))
	}
	return main, secondary
}

func tokenize(s string) []string {
	raw := tokenRegex.FindAllString(strings.ToLower(s), -1)
	out := raw[:0]
	for _, t := range raw {
		if len(t) >= minTokenLen {
			out = append(out, t)
		}
	}
	return out
}

// nGrams returns 1..3-grams over tokens, skipping any n-gram that contains a stop word.
func nGrams(tokens []string) []string {
	var out []string
	for i := range tokens {
		for n := 1; n <= maxNGram && i+n <= len(tokens); n++ {
			window := tokens[i : i+n]
			if containsStopWord(window) {
				break
			}
			out = append(out, strings.Join(window, " "))
		}
	}
	return out
}

func containsStopWord(tokens []string) bool {
	for _, t := range tokens {
		if stopWords[t] {
			return true
		}
	}
	return false
}

// phraseCount counts occurrences of a phrase that is not itself a tracked n-gram.
func phraseCount(segments []string, phrase string) int {
	if phrase == "" {
		return 0
	}
	n := 0
	for _, s := range segments {
		n += strings.Count(strings.ToLower(s), phrase)
	}
	return n
}
