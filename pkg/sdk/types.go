package serpintel

import (
	"time"

	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	domgap "github.com/kailas-cloud/serpintel/internal/domain/gap"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/keyword"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
)

// Intent type constants.
const (
	IntentTransactional = "transactional"
	IntentInformational = "informational"
	IntentExploratory   = "exploratory"
	IntentNavigational  = "navigational"
)

// Keyword is an extracted search keyword.
type Keyword struct {
	Text      string
	Relevance float64
	Frequency int
}

// Intent is the classified search intent of a results page.
type Intent struct {
	Type              string
	Confidence        float64
	MainKeyword       Keyword
	SecondaryKeywords []Keyword
	Signals           []string
}

// MarketGap describes an underserved opportunity. Only Detected is meaningful when false.
type MarketGap struct {
	Detected         bool
	Description      string
	OpportunityScore float64
	CompetitionLevel float64
	RelatedKeywords  []Keyword
}

// Feature is a SERP feature observed on the page. Position 0 means unpositioned.
type Feature struct {
	Type     string
	Position int
	Data     map[string]any
}

// Recommendation is an actionable listing or marketing tactic.
// Effort is 1-5, or 0 when not estimated.
type Recommendation struct {
	Tactic      string
	Description string
	Priority    int
	Confidence  float64
	Evidence    []string
	Effort      int
}

// Analysis is the full outcome of one search term.
type Analysis struct {
	ID              string
	SearchTerm      string
	Timestamp       time.Time
	Intent          Intent
	MarketGap       MarketGap
	Features        []Feature
	Recommendations []Recommendation
	ExecutionTime   time.Duration
}

// BatchResult is the outcome of one term in a batch. Exactly one of Analysis and Err is set.
type BatchResult struct {
	Term     string
	Analysis *Analysis
	Err      error
}

func fromKeywords(kws []keyword.Keyword) []Keyword {
	if len(kws) == 0 {
		return nil
	}
	out := make([]Keyword, len(kws))
	for i, k := range kws {
		out[i] = Keyword{Text: k.Text(), Relevance: k.Relevance(), Frequency: k.Frequency()}
	}
	return out
}

func fromIntent(in domintent.Analysis) Intent {
	main := in.MainKeyword()
	return Intent{
		Type:              string(in.Type()),
		Confidence:        in.Confidence(),
		MainKeyword:       Keyword{Text: main.Text(), Relevance: main.Relevance(), Frequency: main.Frequency()},
		SecondaryKeywords: fromKeywords(in.SecondaryKeywords()),
		Signals:           in.Signals(),
	}
}

func fromMarketGap(g domgap.MarketGap) MarketGap {
	if !g.Detected() {
		return MarketGap{}
	}
	return MarketGap{
		Detected:         true,
		Description:      g.Description(),
		OpportunityScore: g.OpportunityScore(),
		CompetitionLevel: g.CompetitionLevel(),
		RelatedKeywords:  fromKeywords(g.RelatedKeywords()),
	}
}

func fromFeatures(fs []feature.Feature) []Feature {
	out := make([]Feature, len(fs))
	for i, f := range fs {
		out[i] = Feature{Type: string(f.Type()), Data: f.Data()}
		if p := f.Position(); p != nil {
			out[i].Position = *p
		}
	}
	return out
}

func fromRecommendations(rs []recommendation.Recommendation) []Recommendation {
	out := make([]Recommendation, len(rs))
	for i, r := range rs {
		out[i] = Recommendation{
			Tactic:      string(r.Tactic()),
			Description: r.Description(),
			Priority:    r.Priority(),
			Confidence:  r.Confidence(),
			Evidence:    r.Evidence(),
			Effort:      r.Effort(),
		}
	}
	return out
}

// toInternalRecommendations validates public recommendations.
func toInternalRecommendations(rs []Recommendation) ([]recommendation.Recommendation, error) {
	out := make([]recommendation.Recommendation, len(rs))
	for i, r := range rs {
		rec, err := recommendation.New(recommendation.Tactic(r.Tactic), r.Description, r.Priority, r.Confidence, r.Evidence, r.Effort)
		if err != nil {
			return nil, err
		}
		out[i] = rec
	}
	return out, nil
}

func fromInternalAnalysis(a domanalysis.Result) Analysis {
	return Analysis{
		ID:              a.ID(),
		SearchTerm:      a.SearchTerm(),
		Timestamp:       a.Timestamp(),
		Intent:          fromIntent(a.Intent()),
		MarketGap:       fromMarketGap(a.MarketGap()),
		Features:        fromFeatures(a.Features()),
		Recommendations: fromRecommendations(a.Recommendations().Items()),
		ExecutionTime:   a.ExecutionTime(),
	}
}
