// Package record holds the JSON storage shapes of analysis artifacts.
// The cache stores whole records; the SQL repository stores some of them in JSONB columns.
package record

import (
	"math"
	"time"

	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	domgap "github.com/kailas-cloud/serpintel/internal/domain/gap"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	domkw "github.com/kailas-cloud/serpintel/internal/domain/keyword"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/domain/serp"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
)

// Result is one organic search result.
type Result struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Domain   string `json:"domain"`
	Snippet  string `json:"snippet"`
}

// Block is a provider feature block.
type Block struct {
	Name     string         `json:"name"`
	Position *int           `json:"position,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Payload is a cached SERP response.
type Payload struct {
	OrganicResults []Result `json:"organic_results"`
	Features       []Block  `json:"features,omitempty"`
}

// Keyword is a scored keyword.
type Keyword struct {
	Text      string  `json:"text"`
	Relevance float64 `json:"relevance"`
	Frequency int     `json:"frequency"`
}

// Intent is an intent analysis.
type Intent struct {
	Type              string    `json:"intent_type"`
	Confidence        float64   `json:"confidence"`
	MainKeyword       Keyword   `json:"main_keyword"`
	SecondaryKeywords []Keyword `json:"secondary_keywords"`
	Signals           []string  `json:"signals,omitempty"`
}

// MarketGap is a market gap verdict. Optional fields are nil when no gap was detected.
type MarketGap struct {
	Detected         bool      `json:"detected"`
	Description      *string   `json:"description,omitempty"`
	OpportunityScore *float64  `json:"opportunity_score,omitempty"`
	CompetitionLevel *float64  `json:"competition_level,omitempty"`
	RelatedKeywords  []Keyword `json:"related_keywords,omitempty"`
}

// Feature is a normalized SERP feature.
type Feature struct {
	Type     string         `json:"feature_type"`
	Position *int           `json:"position"`
	Data     map[string]any `json:"data,omitempty"`
}

// Recommendation is a single SEO recommendation.
type Recommendation struct {
	Tactic     string   `json:"tactic_type"`
	Desc       string   `json:"description"`
	Priority   int      `json:"priority"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"supporting_evidence,omitempty"`
	Effort     *int     `json:"estimated_effort,omitempty"`
}

// Set is a recommendation set.
type Set struct {
	Recommendations []Recommendation `json:"recommendations"`
	IntentBased     bool             `json:"intent_based"`
	MarketGapBased  bool             `json:"market_gap_based"`
}

// Analysis is a full analysis result.
type Analysis struct {
	ID              string    `json:"analysis_id"`
	SearchTerm      string    `json:"search_term"`
	Timestamp       time.Time `json:"timestamp"`
	Intent          Intent    `json:"intent_analysis"`
	MarketGap       MarketGap `json:"market_gap"`
	Features        []Feature `json:"serp_features"`
	Recommendations Set       `json:"recommendations"`
	RawData         *Payload  `json:"raw_data,omitempty"`
	ExecutionTime   float64   `json:"execution_time"`
}

// FromPayload converts a SERP payload.
func FromPayload(p serp.Payload) Payload {
	out := Payload{OrganicResults: make([]Result, len(p.Results()))}
	for i, r := range p.Results() {
		out.OrganicResults[i] = Result{
			Position: r.Position(), Title: r.Title(), URL: r.URL(), Domain: r.Domain(), Snippet: r.Snippet(),
		}
	}
	for _, b := range p.Blocks() {
		out.Features = append(out.Features, Block{Name: b.Name, Position: b.Position, Data: b.Data})
	}
	return out
}

// ToPayload hydrates a SERP payload.
func (p Payload) ToPayload() serp.Payload {
	results := make([]serp.Result, len(p.OrganicResults))
	for i, r := range p.OrganicResults {
		domain := r.Domain
		if domain == "" {
			domain = serp.DomainOf(r.URL)
		}
		results[i] = serp.ReconstructResult(r.Position, r.Title, r.URL, domain, r.Snippet)
	}
	blocks := make([]serp.Block, len(p.Features))
	for i, b := range p.Features {
		blocks[i] = serp.Block{Name: b.Name, Position: b.Position, Data: b.Data}
	}
	return serp.NewPayload(results, blocks)
}

// FromKeywords converts keywords.
func FromKeywords(kws []domkw.Keyword) []Keyword {
	out := make([]Keyword, len(kws))
	for i, k := range kws {
		out[i] = Keyword{Text: k.Text(), Relevance: k.Relevance(), Frequency: k.Frequency()}
	}
	return out
}

// ToKeywords hydrates keywords.
func ToKeywords(rs []Keyword) []domkw.Keyword {
	out := make([]domkw.Keyword, len(rs))
	for i, r := range rs {
		out[i] = domkw.Reconstruct(r.Text, r.Relevance, r.Frequency)
	}
	return out
}

// FromIntent converts an intent analysis.
func FromIntent(in domintent.Analysis) Intent {
	return Intent{
		Type:              string(in.Type()),
		Confidence:        in.Confidence(),
		MainKeyword:       FromKeywords([]domkw.Keyword{in.MainKeyword()})[0],
		SecondaryKeywords: FromKeywords(in.SecondaryKeywords()),
		Signals:           in.Signals(),
	}
}

// ToIntent hydrates an intent analysis.
func (r Intent) ToIntent() domintent.Analysis {
	main := domkw.Reconstruct(r.MainKeyword.Text, r.MainKeyword.Relevance, r.MainKeyword.Frequency)
	return domintent.Reconstruct(domintent.Type(r.Type), r.Confidence, main, ToKeywords(r.SecondaryKeywords), r.Signals)
}

// FromMarketGap converts a market gap.
func FromMarketGap(g domgap.MarketGap) MarketGap {
	if !g.Detected() {
		return MarketGap{}
	}
	desc, opp, comp := g.Description(), g.OpportunityScore(), g.CompetitionLevel()
	return MarketGap{
		Detected:         true,
		Description:      &desc,
		OpportunityScore: &opp,
		CompetitionLevel: &comp,
		RelatedKeywords:  FromKeywords(g.RelatedKeywords()),
	}
}

// ToMarketGap hydrates a market gap.
func (r MarketGap) ToMarketGap() domgap.MarketGap {
	if !r.Detected {
		return domgap.NotDetected()
	}
	return domgap.Reconstruct(true, deref(r.Description), deref(r.OpportunityScore), deref(r.CompetitionLevel),
		ToKeywords(r.RelatedKeywords))
}

// FromFeatures converts features.
func FromFeatures(fs []feature.Feature) []Feature {
	out := make([]Feature, len(fs))
	for i, f := range fs {
		out[i] = Feature{Type: string(f.Type()), Position: f.Position(), Data: f.Data()}
	}
	return out
}

// ToFeatures hydrates features.
func ToFeatures(rs []Feature) []feature.Feature {
	out := make([]feature.Feature, len(rs))
	for i, r := range rs {
		out[i] = feature.Reconstruct(feature.Type(r.Type), r.Position, r.Data)
	}
	return out
}

// FromRecommendation converts a recommendation.
func FromRecommendation(r recommendation.Recommendation) Recommendation {
	out := Recommendation{
		Tactic:     string(r.Tactic()),
		Desc:       r.Description(),
		Priority:   r.Priority(),
		Confidence: r.Confidence(),
		Evidence:   r.Evidence(),
	}
	if e := r.Effort(); e > 0 {
		out.Effort = &e
	}
	return out
}

// ToRecommendation hydrates a recommendation without validation.
func (r Recommendation) ToRecommendation() recommendation.Recommendation {
	return recommendation.Reconstruct(recommendation.Tactic(r.Tactic), r.Desc, r.Priority, r.Confidence,
		r.Evidence, deref(r.Effort))
}

// FromSet converts a recommendation set.
func FromSet(s recommendation.Set) Set {
	out := Set{
		Recommendations: make([]Recommendation, s.Len()),
		IntentBased:     s.IntentBased(),
		MarketGapBased:  s.MarketGapBased(),
	}
	for i, r := range s.Items() {
		out.Recommendations[i] = FromRecommendation(r)
	}
	return out
}

// ToSet hydrates a recommendation set.
func (r Set) ToSet() recommendation.Set {
	items := make([]recommendation.Recommendation, len(r.Recommendations))
	for i, rec := range r.Recommendations {
		items[i] = rec.ToRecommendation()
	}
	return recommendation.ReconstructSet(items, r.IntentBased, r.MarketGapBased)
}

// FromAnalysis converts a full analysis result.
func FromAnalysis(a domanalysis.Result) Analysis {
	out := Analysis{
		ID:              a.ID(),
		SearchTerm:      a.SearchTerm(),
		Timestamp:       a.Timestamp().UTC(),
		Intent:          FromIntent(a.Intent()),
		MarketGap:       FromMarketGap(a.MarketGap()),
		Features:        FromFeatures(a.Features()),
		Recommendations: FromSet(a.Recommendations()),
		ExecutionTime:   a.ExecutionTime().Seconds(),
	}
	if raw := a.RawData(); raw != nil {
		p := FromPayload(*raw)
		out.RawData = &p
	}
	return out
}

// ToAnalysis hydrates a full analysis result.
func (r Analysis) ToAnalysis() domanalysis.Result {
	var raw *serp.Payload
	if r.RawData != nil {
		p := r.RawData.ToPayload()
		raw = &p
	}
	return domanalysis.Reconstruct(
		r.ID, r.SearchTerm, r.Timestamp,
		r.Intent.ToIntent(), r.MarketGap.ToMarketGap(), ToFeatures(r.Features),
		r.Recommendations.ToSet(), raw, secondsToDuration(r.ExecutionTime),
	)
}

// secondsToDuration rounds to the nearest nanosecond.
func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
