package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/serpintel/internal/domain"
	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	"github.com/kailas-cloud/serpintel/internal/domain/searchterm"
	"github.com/kailas-cloud/serpintel/internal/logger"
	"github.com/kailas-cloud/serpintel/internal/metrics"
	"github.com/kailas-cloud/serpintel/internal/retry"
	"github.com/kailas-cloud/serpintel/internal/usecase/gap"
	"github.com/kailas-cloud/serpintel/internal/usecase/keyword"
	"github.com/kailas-cloud/serpintel/internal/usecase/recommend"
)

// Request describes one analysis run.
type Request struct {
	Term       string
	MaxResults int
	// IncludeRaw keeps the SERP payload on the returned result.
	IncludeRaw bool
}

// Service runs the six-stage analysis pipeline.
type Service struct {
	provider   SerpProvider
	classifier Classifier
	extractor  *keyword.Extractor
	gaps       *gap.Analyzer
	generator  *recommend.Generator

	cache      Cache
	store      Store
	retry      retry.Config
	nicheTerms []string
	metrics    *metrics.Metrics
	logger     *zap.Logger

	maxBatch         int
	batchConcurrency int

	now   func() time.Time
	newID func() string
}

// New creates an analysis service. Cache and persistence are disabled until configured.
func New(provider SerpProvider, classifier Classifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider:         provider,
		classifier:       classifier,
		extractor:        keyword.NewExtractor(),
		gaps:             gap.NewAnalyzer(),
		generator:        recommend.NewGenerator(),
		cache:            nopCache{},
		retry:            retry.DefaultConfig(),
		nicheTerms:       searchterm.DefaultNicheTerms,
		logger:           logger,
		maxBatch:         DefaultMaxBatch,
		batchConcurrency: DefaultBatchConcurrency,
		now:              time.Now,
		newID:            uuid.NewString,
	}
}

// WithCache enables the best-effort result cache.
func (s *Service) WithCache(c Cache) *Service {
	if c != nil {
		s.cache = c
	}
	return s
}

// WithStore enables persistence of finished analyses.
func (s *Service) WithStore(st Store) *Service {
	s.store = st
	return s
}

// WithRetry overrides the SERP provider retry policy.
func (s *Service) WithRetry(cfg retry.Config) *Service {
	s.retry = cfg
	return s
}

// WithNicheTerms overrides the niche allow-list used by input validation.
func (s *Service) WithNicheTerms(terms []string) *Service {
	if len(terms) > 0 {
		s.nicheTerms = terms
	}
	return s
}

// WithMetrics enables pipeline metrics.
func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

// WithBatchLimits configures the batch size cap and fan-out width.
func (s *Service) WithBatchLimits(maxTerms, concurrency int) *Service {
	if maxTerms > 0 {
		s.maxBatch = maxTerms
	}
	if concurrency > 0 {
		s.batchConcurrency = concurrency
	}
	return s
}

// Analyze runs every stage for one search term.
// Any stage failure aborts the run and is returned wrapped in domain.ErrAnalysisFailed;
// nothing is cached or persisted for a failed run.
func (s *Service) Analyze(ctx context.Context, req Request) (domanalysis.Result, error) {
	log := s.log(ctx).With(zap.String("search_term", req.Term))
	rc := &runContext{
		start:      s.now(),
		raw:        req.Term,
		maxResults: req.MaxResults,
	}

	for _, st := range s.stages() {
		started := time.Now()
		err := st.run(ctx, rc, log)
		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeError
		}
		s.metrics.ObserveStage(st.name, outcome, time.Since(started))

		if err != nil {
			s.metrics.ObserveRun(metrics.OutcomeError)
			fields := []zap.Field{zap.Strings("completed_stages", rc.completed), zap.String("failed_stage", st.name), zap.Error(err)}
			if errors.Is(err, domain.ErrValidation) {
				log.Info("Search term rejected", fields...)
			} else {
				log.Error("Search term analysis failed", fields...)
			}
			return domanalysis.Result{}, fmt.Errorf("%w: %w", domain.ErrAnalysisFailed, err)
		}
		rc.completed = append(rc.completed, st.name)
	}

	s.metrics.ObserveRun(metrics.OutcomeSuccess)
	s.metrics.ObserveIntent(string(rc.result.Intent().Type()), rc.result.MarketGap().Detected())
	log.Info("Search term analyzed",
		zap.String("analysis_id", rc.result.ID()),
		zap.String("intent_type", string(rc.result.Intent().Type())),
		zap.Bool("market_gap", rc.result.MarketGap().Detected()),
		zap.Duration("duration", rc.result.ExecutionTime()),
	)

	if req.IncludeRaw {
		return rc.result, nil
	}
	return rc.result.WithoutRawData(), nil
}

// log prefers the request-scoped logger when one is attached.
func (s *Service) log(ctx context.Context) *zap.Logger {
	if l := logger.FromContext(ctx); l.Core().Enabled(zap.FatalLevel) {
		return l
	}
	return s.logger
}
