package gap

import (
	"fmt"

	"github.com/kailas-cloud/serpintel/internal/domain/keyword"
)

// MarketGap describes an under-served opportunity in a SERP (immutable value object).
// A gap that is not detected carries no description or scores.
type MarketGap struct {
	detected    bool
	description string
	opportunity float64
	competition float64
	related     []keyword.Keyword
}

// NotDetected returns the empty gap.
func NotDetected() MarketGap { return MarketGap{} }

// NewDetected validates and creates a detected gap.
// Description is required; opportunity and competition must be in [0,1].
func NewDetected(description string, opportunity, competition float64, related []keyword.Keyword) (MarketGap, error) {
	if description == "" {
		return MarketGap{}, fmt.Errorf("market gap description is required")
	}
	if opportunity < 0 || opportunity > 1 {
		return MarketGap{}, fmt.Errorf("opportunity score %v out of range [0,1]", opportunity)
	}
	if competition < 0 || competition > 1 {
		return MarketGap{}, fmt.Errorf("competition level %v out of range [0,1]", competition)
	}
	rel := make([]keyword.Keyword, len(related))
	copy(rel, related)
	return MarketGap{
		detected:    true,
		description: description,
		opportunity: opportunity,
		competition: competition,
		related:     rel,
	}, nil
}

// Reconstruct creates a MarketGap without validation (storage hydration).
func Reconstruct(detected bool, description string, opportunity, competition float64, related []keyword.Keyword) MarketGap {
	return MarketGap{
		detected: detected, description: description,
		opportunity: opportunity, competition: competition, related: related,
	}
}

// Detected reports whether a gap was found.
func (g MarketGap) Detected() bool { return g.detected }

// Description returns the gap summary; empty when not detected.
func (g MarketGap) Description() string { return g.description }

// OpportunityScore returns the opportunity in [0,1]; zero when not detected.
func (g MarketGap) OpportunityScore() float64 { return g.opportunity }

// CompetitionLevel returns the competition in [0,1]; zero when not detected.
func (g MarketGap) CompetitionLevel() float64 { return g.competition }

// RelatedKeywords returns keywords suggested for the gap.
func (g MarketGap) RelatedKeywords() []keyword.Keyword { return g.related }
