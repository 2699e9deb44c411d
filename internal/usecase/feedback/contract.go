package feedback

import (
	"context"

	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	domfeedback "github.com/kailas-cloud/serpintel/internal/domain/feedback"
)

// AnalysisReader looks up persisted analyses.
type AnalysisReader interface {
	GetByID(ctx context.Context, id string) (domanalysis.Result, error)
}

// Store persists feedback.
type Store interface {
	Save(ctx context.Context, f domfeedback.Feedback) error
	ListByAnalysis(ctx context.Context, analysisID string) ([]domfeedback.Feedback, error)
}
