package chi

import (
	"context"

	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	"github.com/kailas-cloud/serpintel/internal/domain/cacheentry"
	domfeedback "github.com/kailas-cloud/serpintel/internal/domain/feedback"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	analysisuc "github.com/kailas-cloud/serpintel/internal/usecase/analysis"
	feedbackuc "github.com/kailas-cloud/serpintel/internal/usecase/feedback"
	healthuc "github.com/kailas-cloud/serpintel/internal/usecase/health"
	refineuc "github.com/kailas-cloud/serpintel/internal/usecase/refine"
)

// Analyzer runs the analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, req analysisuc.Request) (domanalysis.Result, error)
	AnalyzeBatch(ctx context.Context, terms []string, maxResults int) ([]analysisuc.BatchItem, error)
}

// Reports reads stored analyses and administers the cache.
type Reports interface {
	Get(ctx context.Context, id string) (domanalysis.Result, error)
	Find(ctx context.Context, q domanalysis.Query) ([]domanalysis.Result, error)
	Recommendations(ctx context.Context, analysisID string, f recommendation.Filter) ([]recommendation.Recommendation, error)
	CacheStatus(ctx context.Context, term string) ([]cacheentry.Entry, error)
	InvalidateCache(ctx context.Context, term string) (int64, error)
}

// Refiner re-generates recommendations for a stored analysis.
type Refiner interface {
	Refine(ctx context.Context, analysisID string) (refineuc.Outcome, error)
}

// Prioritizer re-ranks recommendations for an intent.
type Prioritizer interface {
	Prioritize(it domintent.Type, recs []recommendation.Recommendation) []recommendation.Recommendation
}

// Feedback records user ratings.
type Feedback interface {
	Submit(ctx context.Context, in feedbackuc.Input) (domfeedback.Feedback, error)
	List(ctx context.Context, analysisID string) ([]domfeedback.Feedback, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
