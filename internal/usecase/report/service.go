// Package report serves read-side queries over stored analyses and the result cache.
package report

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/serpintel/internal/domain"
	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	"github.com/kailas-cloud/serpintel/internal/domain/cacheentry"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/domain/searchterm"
)

// Service answers analysis lookups and cache administration requests.
type Service struct {
	reader Reader
	cache  CacheAdmin
	logger *zap.Logger
}

// New creates a report service. reader or cache may be nil when that backend is disabled.
func New(reader Reader, cache CacheAdmin, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{reader: reader, cache: cache, logger: logger}
}

// Get returns one stored analysis.
func (s *Service) Get(ctx context.Context, id string) (domanalysis.Result, error) {
	if s.reader == nil {
		return domanalysis.Result{}, fmt.Errorf("analysis %s: %w", id, domain.ErrNotFound)
	}
	if id == "" {
		return domanalysis.Result{}, fmt.Errorf("%w: analysis id is required", domain.ErrValidation)
	}
	return s.reader.GetByID(ctx, id)
}

// Find lists stored analyses. A search term is normalized before lookup; an intent must be a known type.
func (s *Service) Find(ctx context.Context, q domanalysis.Query) ([]domanalysis.Result, error) {
	if s.reader == nil {
		return []domanalysis.Result{}, nil
	}
	if q.Intent != "" {
		it, err := domintent.Parse(string(q.Intent))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		q.Intent = it
	}
	if q.Limit < 0 || q.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", domain.ErrValidation)
	}
	q.SearchTerm = searchterm.Normalize(q.SearchTerm)

	out, err := s.reader.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find analyses: %w", err)
	}
	return out, nil
}

// Recommendations returns the stored recommendations of an analysis that pass the filter.
func (s *Service) Recommendations(
	ctx context.Context, analysisID string, f recommendation.Filter,
) ([]recommendation.Recommendation, error) {
	if f.Tactic != "" && !f.Tactic.IsValid() {
		return nil, fmt.Errorf("%w: unknown tactic %q", domain.ErrValidation, f.Tactic)
	}
	if f.MinConfidence < 0 || f.MinConfidence > 1 {
		return nil, fmt.Errorf("%w: min_confidence must be within [0,1]", domain.ErrValidation)
	}
	if f.MaxPriority < 0 || f.MaxPriority > recommendation.MaxPriority {
		return nil, fmt.Errorf("%w: max_priority must be within [1,%d]", domain.ErrValidation, recommendation.MaxPriority)
	}

	// existence check turns an empty result for an unknown id into a not-found error
	if _, err := s.Get(ctx, analysisID); err != nil {
		return nil, err
	}
	f.AnalysisID = analysisID
	out, err := s.reader.Recommendations(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	return out, nil
}

// CacheStatus reports which artifacts of a term are cached.
func (s *Service) CacheStatus(ctx context.Context, term string) ([]cacheentry.Entry, error) {
	if s.cache == nil {
		return []cacheentry.Entry{}, nil
	}
	term = searchterm.Normalize(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", domain.ErrValidation)
	}
	return s.cache.Status(ctx, term)
}

// InvalidateCache drops every cached artifact of a term and returns how many were removed.
func (s *Service) InvalidateCache(ctx context.Context, term string) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}
	term = searchterm.Normalize(term)
	if term == "" {
		return 0, fmt.Errorf("%w: search term is required", domain.ErrValidation)
	}
	n, err := s.cache.Invalidate(ctx, term)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Cache invalidated", zap.String("search_term", term), zap.Int64("deleted", n))
	return n, nil
}
