package refresh

import (
	"context"

	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	analysisuc "github.com/kailas-cloud/serpintel/internal/usecase/analysis"
)

// Analyzer runs the analysis pipeline for one term.
type Analyzer interface {
	Analyze(ctx context.Context, req analysisuc.Request) (domanalysis.Result, error)
}

// CacheInvalidator drops cached artifacts so the next run fetches fresh SERP data.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, term string) (int64, error)
}
