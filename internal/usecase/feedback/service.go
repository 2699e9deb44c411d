package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/serpintel/internal/domain"
	domfeedback "github.com/kailas-cloud/serpintel/internal/domain/feedback"
)

// Input is a user's rating of an analysis.
type Input struct {
	AnalysisID string
	Rating     int
	Comments   string
	Helpful    []string
	Unhelpful  []string
}

// Service records and lists analysis feedback.
type Service struct {
	analyses AnalysisReader
	store    Store
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// New creates a feedback service. Both backends may be nil when persistence is disabled:
// submissions then report the analysis as not found and listings are empty.
func New(analyses AnalysisReader, store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		analyses: analyses,
		store:    store,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Submit validates and stores feedback for an existing analysis.
func (s *Service) Submit(ctx context.Context, in Input) (domfeedback.Feedback, error) {
	fb, err := domfeedback.New(s.newID(), in.AnalysisID, in.Rating, in.Comments, in.Helpful, in.Unhelpful, s.now().UTC())
	if err != nil {
		return domfeedback.Feedback{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	if s.analyses == nil || s.store == nil {
		return domfeedback.Feedback{}, fmt.Errorf("analysis %s: %w", in.AnalysisID, domain.ErrNotFound)
	}
	if _, err = s.analyses.GetByID(ctx, in.AnalysisID); err != nil {
		return domfeedback.Feedback{}, fmt.Errorf("lookup analysis: %w", err)
	}

	if err = s.store.Save(ctx, fb); err != nil {
		return domfeedback.Feedback{}, fmt.Errorf("save feedback: %w", err)
	}

	s.logger.Info("Feedback recorded",
		zap.String("analysis_id", fb.AnalysisID()),
		zap.Int("rating", fb.Rating()),
	)
	return fb, nil
}

// List returns the feedback of one analysis.
func (s *Service) List(ctx context.Context, analysisID string) ([]domfeedback.Feedback, error) {
	if analysisID == "" {
		return nil, fmt.Errorf("%w: analysis_id is required", domain.ErrValidation)
	}
	if s.store == nil {
		return []domfeedback.Feedback{}, nil
	}
	out, err := s.store.ListByAnalysis(ctx, analysisID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return out, nil
}
