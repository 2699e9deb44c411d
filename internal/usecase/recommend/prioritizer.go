package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/serpintel/internal/domain"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
)

const (
	defaultMultiplier = 0.5
	priorityScale     = 0.7
)

// multipliers weights each tactic by how well it serves an intent.
var multipliers = map[domintent.Type]map[recommendation.Tactic]float64{
	domintent.Transactional: {
		recommendation.ProductPage:  1.0,
		recommendation.Marketplace:  0.9,
		recommendation.PPC:          0.85,
		recommendation.KeywordTgt:   0.8,
		recommendation.Image:        0.75,
		recommendation.Collection:   0.7,
		recommendation.TechnicalSEO: 0.65,
		recommendation.Content:      0.6,
		recommendation.Snippet:      0.5,
		recommendation.LinkBuilding: 0.4,
	},
	domintent.Informational: {
		recommendation.Content:      1.0,
		recommendation.Snippet:      0.9,
		recommendation.KeywordTgt:   0.85,
		recommendation.TechnicalSEO: 0.8,
		recommendation.LinkBuilding: 0.75,
		recommendation.Collection:   0.7,
		recommendation.Image:        0.65,
		recommendation.ProductPage:  0.6,
		recommendation.Marketplace:  0.5,
		recommendation.PPC:          0.4,
	},
	domintent.Exploratory: {
		recommendation.Collection:   1.0,
		recommendation.Image:        0.9,
		recommendation.Content:      0.85,
		recommendation.ProductPage:  0.8,
		recommendation.KeywordTgt:   0.75,
		recommendation.TechnicalSEO: 0.7,
		recommendation.Marketplace:  0.65,
		recommendation.Snippet:      0.6,
		recommendation.LinkBuilding: 0.5,
		recommendation.PPC:          0.4,
	},
	domintent.Navigational: {
		recommendation.TechnicalSEO: 1.0,
		recommendation.LinkBuilding: 0.9,
		recommendation.ProductPage:  0.8,
		recommendation.Marketplace:  0.75,
		recommendation.KeywordTgt:   0.7,
		recommendation.Collection:   0.65,
		recommendation.Content:      0.6,
		recommendation.Image:        0.5,
		recommendation.Snippet:      0.45,
		recommendation.PPC:          0.4,
	},
}

// Multiplier returns the weight of a tactic for an intent. Unknown intents use the
// informational table; unknown tactics weigh 0.5.
func Multiplier(it domintent.Type, t recommendation.Tactic) float64 {
	table, ok := multipliers[it]
	if !ok {
		table = multipliers[domintent.Informational]
	}
	if m, ok := table[t]; ok {
		return m
	}
	return defaultMultiplier
}

// MaxRanked is the longest list Prioritize numbers without running past the priority range.
const MaxRanked = recommendation.MaxPriority

// CheckRankable rejects lists longer than MaxRanked.
func CheckRankable(n int) error {
	if n > MaxRanked {
		return fmt.Errorf("%w: at most %d recommendations can be prioritized, got %d", domain.ErrValidation, MaxRanked, n)
	}
	return nil
}

// Prioritizer re-ranks recommendations for an intent.
type Prioritizer struct{}

// NewPrioritizer creates a recommendation prioritizer.
func NewPrioritizer() *Prioritizer { return &Prioritizer{} }

// Prioritize orders recommendations by priority*0.7/(multiplier*confidence) ascending
// (stable) and renumbers priorities 1..N. Non-positive confidence sorts last.
// Callers bound N with CheckRankable; positions past MaxRanked share the lowest priority.
func (p *Prioritizer) Prioritize(it domintent.Type, recs []recommendation.Recommendation) []recommendation.Recommendation {
	type scored struct {
		rec   recommendation.Recommendation
		score float64
	}
	items := make([]scored, len(recs))
	for i, r := range recs {
		items[i] = scored{rec: r, score: adjustedScore(it, r)}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].score < items[j].score })

	out := make([]recommendation.Recommendation, len(items))
	for i, s := range items {
		out[i] = s.rec.WithPriority(i + 1)
	}
	return out
}

func adjustedScore(it domintent.Type, r recommendation.Recommendation) float64 {
	denom := Multiplier(it, r.Tactic()) * r.Confidence()
	if denom <= 0 {
		return math.Inf(1)
	}
	return float64(r.Priority()) * priorityScale / denom
}
