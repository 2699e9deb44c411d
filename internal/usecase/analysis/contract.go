package analysis

import (
	"context"

	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/domain/serp"
	"github.com/kailas-cloud/serpintel/internal/usecase/intent"
)

// SerpProvider fetches organic results and feature blocks for a term.
type SerpProvider interface {
	Fetch(ctx context.Context, term string, maxResults int) (serp.Payload, error)
}

// Classifier turns a SERP into an intent verdict.
type Classifier interface {
	Classify(in intent.Input) (intent.Verdict, error)
}

// Cache is the best-effort result cache.
// Implementations never fail the caller: errors degrade to a miss or a no-op.
type Cache interface {
	GetSerp(ctx context.Context, term string) (serp.Payload, bool)
	SetSerp(ctx context.Context, term string, p serp.Payload)
	GetAnalysis(ctx context.Context, term string) (domanalysis.Result, bool)
	SetAnalysis(ctx context.Context, r domanalysis.Result)
	SetRecommendations(ctx context.Context, term string, s recommendation.Set)
}

// Store persists finished analyses.
type Store interface {
	Save(ctx context.Context, r domanalysis.Result) error
}

type nopCache struct{}

func (nopCache) GetSerp(context.Context, string) (serp.Payload, bool) { return serp.Payload{}, false }
func (nopCache) SetSerp(context.Context, string, serp.Payload)        {}
func (nopCache) GetAnalysis(context.Context, string) (domanalysis.Result, bool) {
	return domanalysis.Result{}, false
}
func (nopCache) SetAnalysis(context.Context, domanalysis.Result)                {}
func (nopCache) SetRecommendations(context.Context, string, recommendation.Set) {}
