package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/serpintel/internal/domain"
	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	domgap "github.com/kailas-cloud/serpintel/internal/domain/gap"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/domain/searchterm"
	"github.com/kailas-cloud/serpintel/internal/domain/serp"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
	"github.com/kailas-cloud/serpintel/internal/retry"
	"github.com/kailas-cloud/serpintel/internal/usecase/intent"
)

// Stage names, in execution order.
const (
	StageValidate  = "input_validation"
	StageRetrieve  = "serp_retrieval"
	StageIntent    = "intent_classification"
	StageGap       = "market_gap_analysis"
	StageRecommend = "recommendation_generation"
	StageFormat    = "output_formatting"
)

// runContext accumulates the artifacts of one pipeline run.
type runContext struct {
	start      time.Time
	raw        string
	maxResults int

	term     *searchterm.SearchTerm
	cached   *domanalysis.Result
	payload  *serp.Payload
	features []feature.Feature
	intent   *domintent.Analysis
	gap      *domgap.MarketGap
	recs     *recommendation.Set
	result   domanalysis.Result

	completed []string
}

type stage struct {
	name string
	run  func(ctx context.Context, rc *runContext, log *zap.Logger) error
}

func (s *Service) stages() []stage {
	return []stage{
		{StageValidate, s.validate},
		{StageRetrieve, s.retrieve},
		{StageIntent, s.classify},
		{StageGap, s.analyzeGap},
		{StageRecommend, s.recommend},
		{StageFormat, s.format},
	}
}

func (s *Service) validate(ctx context.Context, rc *runContext, log *zap.Logger) error {
	term, err := searchterm.New(rc.raw, rc.maxResults, s.nicheTerms)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	rc.term = &term

	if cached, ok := s.cache.GetAnalysis(ctx, term.Term()); ok {
		log.Debug("Analysis cache hit", zap.String("analysis_id", cached.ID()))
		rc.cached = &cached
	}
	return nil
}

func (s *Service) retrieve(ctx context.Context, rc *runContext, log *zap.Logger) error {
	if rc.term == nil {
		return fmt.Errorf("%w: search term", domain.ErrMissingStageInput)
	}

	p, err := s.payloadFor(ctx, rc, log)
	if err != nil {
		return err
	}
	rc.payload = &p

	rc.features = extractFeatures(rc.payload.Blocks(), log)
	log.Debug("SERP retrieved",
		zap.Int("results", len(rc.payload.Results())),
		zap.Int("features", len(rc.features)),
	)
	return nil
}

// payloadFor resolves the SERP payload: cached analysis first, then the SERP cache, then the provider.
func (s *Service) payloadFor(ctx context.Context, rc *runContext, log *zap.Logger) (serp.Payload, error) {
	if rc.cached != nil && rc.cached.RawData() != nil {
		log.Debug("Using SERP payload from cached analysis")
		return *rc.cached.RawData(), nil
	}

	term := rc.term.Term()
	if p, ok := s.cache.GetSerp(ctx, term); ok {
		log.Debug("SERP cache hit")
		return p, nil
	}

	p, err := s.fetch(ctx, *rc.term, log)
	if err != nil {
		return serp.Payload{}, err
	}
	s.cache.SetSerp(ctx, term, p)
	return p, nil
}

func (s *Service) fetch(ctx context.Context, term searchterm.SearchTerm, log *zap.Logger) (serp.Payload, error) {
	cfg := s.retry
	cfg.IsRetryable = func(err error) bool {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		log.Warn("SERP fetch failed, retrying",
			zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
	}

	var p serp.Payload
	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
		var ferr error
		p, ferr = s.provider.Fetch(ctx, term.Term(), term.MaxResults())
		return ferr
	})
	if err != nil {
		return serp.Payload{}, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}
	return p, nil
}

func (s *Service) classify(_ context.Context, rc *runContext, log *zap.Logger) error {
	if rc.term == nil || rc.payload == nil {
		return fmt.Errorf("%w: search term and SERP payload", domain.ErrMissingStageInput)
	}

	main, secondary := s.extractor.Extract(rc.term.Term(), *rc.payload)
	verdict, err := s.classifier.Classify(intent.Input{
		Term:     rc.term.Term(),
		Payload:  *rc.payload,
		Features: rc.features,
	})
	if err != nil {
		return fmt.Errorf("classify intent: %w", err)
	}

	in, err := domintent.New(verdict.Type, verdict.Confidence, main, secondary, verdict.Signals)
	if err != nil {
		return fmt.Errorf("build intent analysis: %w", err)
	}
	rc.intent = &in

	log.Debug("Intent classified",
		zap.String("intent_type", string(in.Type())),
		zap.Float64("confidence", in.Confidence()),
		zap.Strings("signals", in.Signals()),
	)
	return nil
}

func (s *Service) analyzeGap(_ context.Context, rc *runContext, log *zap.Logger) error {
	if rc.intent == nil || rc.payload == nil {
		return fmt.Errorf("%w: intent analysis and SERP payload", domain.ErrMissingStageInput)
	}

	mg, stats, err := s.gaps.Analyze(*rc.intent, *rc.payload)
	if err != nil {
		return fmt.Errorf("analyze market gap: %w", err)
	}
	rc.gap = &mg

	log.Debug("Market gap analyzed",
		zap.Bool("detected", mg.Detected()),
		zap.Float64("similarity", stats.Similarity),
		zap.Float64("domain_diversity", stats.DomainDiversity),
		zap.Float64("pod_presence", stats.Presence),
	)
	return nil
}

func (s *Service) recommend(_ context.Context, rc *runContext, log *zap.Logger) error {
	if rc.intent == nil || rc.gap == nil {
		return fmt.Errorf("%w: intent analysis and market gap", domain.ErrMissingStageInput)
	}

	set, err := s.generator.Generate(*rc.intent, *rc.gap, rc.features)
	if err != nil {
		return fmt.Errorf("generate recommendations: %w", err)
	}
	rc.recs = &set

	log.Debug("Recommendations generated", zap.Int("count", set.Len()))
	return nil
}

func (s *Service) format(ctx context.Context, rc *runContext, log *zap.Logger) error {
	if rc.term == nil || rc.intent == nil || rc.gap == nil || rc.recs == nil {
		return fmt.Errorf("%w: search term, intent analysis, market gap and recommendations",
			domain.ErrMissingStageInput)
	}

	now := s.now()
	var raw *serp.Payload
	if rc.payload != nil {
		p := *rc.payload
		raw = &p
	}

	res, err := domanalysis.New(
		s.newID(), rc.term.Term(), now,
		*rc.intent, *rc.gap, rc.features,
		*rc.recs, raw, now.Sub(rc.start),
	)
	if err != nil {
		return fmt.Errorf("assemble analysis result: %w", err)
	}
	rc.result = res

	s.cache.SetAnalysis(ctx, res)
	s.cache.SetRecommendations(ctx, res.SearchTerm(), res.Recommendations())
	if s.store != nil {
		if err := s.store.Save(ctx, res); err != nil {
			log.Warn("Failed to persist analysis", zap.String("analysis_id", res.ID()), zap.Error(err))
		}
	}
	return nil
}
