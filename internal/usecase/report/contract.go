package report

import (
	"context"

	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	"github.com/kailas-cloud/serpintel/internal/domain/cacheentry"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
)

// Reader queries persisted analyses.
type Reader interface {
	GetByID(ctx context.Context, id string) (domanalysis.Result, error)
	GetByTerm(ctx context.Context, term string) (domanalysis.Result, error)
	List(ctx context.Context, q domanalysis.Query) ([]domanalysis.Result, error)
	Recommendations(ctx context.Context, f recommendation.Filter) ([]recommendation.Recommendation, error)
}

// CacheAdmin inspects and clears cached artifacts of a term.
type CacheAdmin interface {
	Status(ctx context.Context, term string) ([]cacheentry.Entry, error)
	Invalidate(ctx context.Context, term string) (int64, error)
}
