package intent

import (
	"fmt"
	"strings"

	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/serp"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
	"github.com/kailas-cloud/serpintel/internal/textmatch"
)

// Scoring constants shared by all strategies.
const (
	baseScore     = 0.5
	maxConfidence = 0.95
	topN          = 5
	textTopN      = 3
)

// Input is what a strategy looks at: the normalized term, the raw SERP and its extracted features.
type Input struct {
	Term     string
	Payload  serp.Payload
	Features []feature.Feature
}

// Verdict is a strategy's classification.
type Verdict struct {
	Type       domintent.Type
	Confidence float64
	Signals    []string
}

type strategyFunc func(in Input) Verdict

// strategies maps each intent to its scoring function.
var strategies = map[domintent.Type]strategyFunc{
	domintent.Transactional: transactional,
	domintent.Informational: informational,
	domintent.Exploratory:   exploratory,
	domintent.Navigational:  navigational,
}

// Analyze runs the strategy registered for t.
func Analyze(t domintent.Type, in Input) (Verdict, error) {
	fn, ok := strategies[t]
	if !ok {
		return Verdict{}, fmt.Errorf("no strategy registered for intent type %q", t)
	}
	return fn(in), nil
}

// scorer accumulates a confidence score and its evidence.
type scorer struct {
	score   float64
	signals []string
}

func newScorer() *scorer { return &scorer{score: baseScore} }

func (s *scorer) add(delta float64, signal string) {
	s.score += delta
	if signal != "" {
		s.signals = append(s.signals, signal)
	}
}

func (s *scorer) note(signal string) { s.signals = append(s.signals, signal) }

func (s *scorer) verdict(t domintent.Type) Verdict {
	return Verdict{Type: t, Confidence: clamp(s.score), Signals: s.signals}
}

func clamp(v float64) float64 {
	return min(max(v, 0), maxConfidence)
}

// textFeatures concatenates the top three results, repeating title and snippet
// (3 - rank) times so higher-ranked results weigh more.
func textFeatures(p serp.Payload) string {
	top := p.Top(textTopN)
	parts := make([]string, 0, 12)
	for i, r := range top {
		for range textTopN - i {
			parts = append(parts, r.Title(), r.Snippet())
		}
	}
	return strings.Join(parts, " ")
}

// resultText joins a result's title and snippet without letting terms span the boundary.
func resultText(r serp.Result) string {
	return strings.ToLower(r.Title()) + "\n" + strings.ToLower(r.Snippet())
}

// bonusPerTerm returns min(n*step, cap).
func bonusPerTerm(n int, step, limit float64) float64 {
	return min(float64(n)*step, limit)
}

// domainFactor returns the share of results flagged, capped at 1.
func domainFactor(hits, total int) float64 {
	if total == 0 {
		return 0
	}
	return min(float64(hits)/float64(total), 1)
}

func termsSignal(prefix string, set *textmatch.Set, text string) string {
	found := set.Matches(text)
	if len(found) == 0 {
		return ""
	}
	return prefix + strings.Join(found, ", ")
}
