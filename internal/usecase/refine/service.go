// Package refine asks an LLM for an alternative recommendation set and re-ranks it.
package refine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/serpintel/internal/domain"
	domgap "github.com/kailas-cloud/serpintel/internal/domain/gap"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
	"github.com/kailas-cloud/serpintel/internal/usecase/recommend"
)

// Prompt is everything the LLM sees about an analysis.
type Prompt struct {
	SearchTerm string
	Intent     domintent.Analysis
	MarketGap  domgap.MarketGap
	Features   []feature.Feature
	Current    []recommendation.Recommendation
}

// Suggestion is one unvalidated recommendation returned by the LLM.
type Suggestion struct {
	Tactic      string
	Description string
	Priority    int
	Confidence  float64
	Evidence    []string
	Effort      int
}

// Outcome is the result of a refinement.
type Outcome struct {
	AnalysisID string
	SearchTerm string
	Set        recommendation.Set
	// Refined is false when the LLM produced nothing usable and the stored set was re-ranked instead.
	Refined bool
	// Dropped counts suggestions rejected by validation.
	Dropped int
}

// Service refines stored recommendation sets.
type Service struct {
	store       AnalysisStore
	llm         LLM
	cache       Cache
	prioritizer *recommend.Prioritizer
	logger      *zap.Logger
}

// New creates a refinement service. llm may be nil, in which case Refine reports the refiner unavailable.
func New(store AnalysisStore, llm LLM, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, llm: llm, prioritizer: recommend.NewPrioritizer(), logger: logger}
}

// WithCache publishes refined sets to the result cache.
func (s *Service) WithCache(c Cache) *Service {
	s.cache = c
	return s
}

// Available reports whether an LLM is configured.
func (s *Service) Available() bool { return s.llm != nil }

// Refine replaces the recommendations of a stored analysis with LLM suggestions re-ranked by the prioritizer.
func (s *Service) Refine(ctx context.Context, analysisID string) (Outcome, error) {
	if s.llm == nil {
		return Outcome{}, domain.ErrRefinerUnavailable
	}
	if s.store == nil {
		return Outcome{}, fmt.Errorf("analysis %s: %w", analysisID, domain.ErrNotFound)
	}

	res, err := s.store.GetByID(ctx, analysisID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load analysis: %w", err)
	}

	suggestions, err := s.llm.Suggest(ctx, Prompt{
		SearchTerm: res.SearchTerm(),
		Intent:     res.Intent(),
		MarketGap:  res.MarketGap(),
		Features:   res.Features(),
		Current:    res.Recommendations().Items(),
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", domain.ErrRefinerFailed, err)
	}

	log := s.logger.With(zap.String("analysis_id", analysisID), zap.String("search_term", res.SearchTerm()))

	valid, dropped := s.validate(suggestions, log)
	out := Outcome{AnalysisID: analysisID, SearchTerm: res.SearchTerm(), Dropped: dropped, Refined: len(valid) > 0}
	if !out.Refined {
		log.Warn("LLM returned no usable recommendations, re-ranking stored set",
			zap.Int("suggestions", len(suggestions)))
		valid = res.Recommendations().Items()
	}

	ranked := s.prioritizer.Prioritize(res.Intent().Type(), valid)
	if len(ranked) > recommend.MaxRanked {
		out.Dropped += len(ranked) - recommend.MaxRanked
		ranked = ranked[:recommend.MaxRanked]
	}
	set, err := recommendation.NewSet(ranked, true, res.Recommendations().MarketGapBased())
	if err != nil {
		return Outcome{}, fmt.Errorf("build refined set: %w", err)
	}
	out.Set = set

	if out.Refined {
		s.publish(ctx, res.ID(), res.SearchTerm(), set, log)
	}
	log.Info("Recommendations refined",
		zap.Bool("refined", out.Refined),
		zap.Int("recommendations", set.Len()),
		zap.Int("dropped", dropped),
	)
	return out, nil
}

func (s *Service) validate(suggestions []Suggestion, log *zap.Logger) ([]recommendation.Recommendation, int) {
	valid := make([]recommendation.Recommendation, 0, len(suggestions))
	dropped := 0
	for _, sg := range suggestions {
		rec, err := recommendation.New(
			recommendation.Tactic(sg.Tactic), sg.Description, sg.Priority, sg.Confidence, sg.Evidence, sg.Effort,
		)
		if err != nil {
			dropped++
			log.Debug("Dropping invalid suggestion", zap.String("tactic", sg.Tactic), zap.Error(err))
			continue
		}
		valid = append(valid, rec)
	}
	return valid, dropped
}

// publish stores the refined set. Failures are logged; the caller already has the set.
func (s *Service) publish(ctx context.Context, id, term string, set recommendation.Set, log *zap.Logger) {
	if err := s.store.ReplaceRecommendations(ctx, id, set); err != nil {
		log.Warn("Failed to persist refined recommendations", zap.Error(err))
	}
	if s.cache != nil {
		s.cache.SetRecommendations(ctx, term, set)
	}
}
