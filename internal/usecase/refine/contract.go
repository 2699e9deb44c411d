package refine

import (
	"context"

	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
)

// AnalysisStore loads and updates persisted analyses.
type AnalysisStore interface {
	GetByID(ctx context.Context, id string) (domanalysis.Result, error)
	ReplaceRecommendations(ctx context.Context, id string, set recommendation.Set) error
}

// LLM proposes alternative recommendations for an analysis.
type LLM interface {
	Suggest(ctx context.Context, p Prompt) ([]Suggestion, error)
}

// Cache receives the refined set. Implementations never fail the caller.
type Cache interface {
	SetRecommendations(ctx context.Context, term string, s recommendation.Set)
}
