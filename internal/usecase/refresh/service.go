// Package refresh periodically re-analyzes a watch list of search terms.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/serpintel/internal/domain"
	"github.com/kailas-cloud/serpintel/internal/domain/searchterm"
	analysisuc "github.com/kailas-cloud/serpintel/internal/usecase/analysis"
)

// DefaultTermTimeout bounds one term's pipeline run.
const DefaultTermTimeout = 2 * time.Minute

// Report summarizes one refresh run.
type Report struct {
	Refreshed []string
	Failed    map[string]error
}

// Service re-runs the pipeline for watch terms after invalidating their cache.
type Service struct {
	analyzer    Analyzer
	cache       CacheInvalidator
	terms       []string
	maxResults  int
	termTimeout time.Duration
	parser      cron.Parser
	logger      *zap.Logger
}

// New creates a refresh service. cache may be nil when caching is disabled.
// Terms are normalized and deduplicated; blank terms are dropped.
func New(analyzer Analyzer, cache CacheInvalidator, terms []string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	seen := make(map[string]struct{}, len(terms))
	watch := make([]string, 0, len(terms))
	for _, t := range terms {
		n := searchterm.Normalize(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		watch = append(watch, n)
	}
	return &Service{
		analyzer:    analyzer,
		cache:       cache,
		terms:       watch,
		termTimeout: DefaultTermTimeout,
		maxResults:  searchterm.DefaultMaxResults,
		parser:      cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		logger:      logger,
	}
}

// WithMaxResults sets the SERP depth used for refresh runs.
func (s *Service) WithMaxResults(n int) *Service {
	if n > 0 {
		s.maxResults = n
	}
	return s
}

// WithTermTimeout overrides the per-term deadline.
func (s *Service) WithTermTimeout(d time.Duration) *Service {
	if d > 0 {
		s.termTimeout = d
	}
	return s
}

// Terms returns the normalized watch list.
func (s *Service) Terms() []string { return s.terms }

// RunOnce refreshes every watch term sequentially. Failures are collected, not fatal.
func (s *Service) RunOnce(ctx context.Context) Report {
	rep := Report{Failed: make(map[string]error)}
	start := time.Now()

	for _, term := range s.terms {
		if ctx.Err() != nil {
			rep.Failed[term] = ctx.Err()
			continue
		}
		if err := s.refreshTerm(ctx, term); err != nil {
			rep.Failed[term] = err
			s.logger.Warn("Watch term refresh failed", zap.String("search_term", term), zap.Error(err))
			continue
		}
		rep.Refreshed = append(rep.Refreshed, term)
	}

	s.logger.Info("Watch list refreshed",
		zap.Int("refreshed", len(rep.Refreshed)),
		zap.Int("failed", len(rep.Failed)),
		zap.Duration("duration", time.Since(start)),
	)
	return rep
}

func (s *Service) refreshTerm(ctx context.Context, term string) error {
	ctx, cancel := context.WithTimeout(ctx, s.termTimeout)
	defer cancel()

	if s.cache != nil {
		if _, err := s.cache.Invalidate(ctx, term); err != nil {
			// a stale cache only means the run may reuse old SERP data
			s.logger.Warn("Cache invalidation failed", zap.String("search_term", term), zap.Error(err))
		}
	}
	if _, err := s.analyzer.Analyze(ctx, analysisuc.Request{Term: term, MaxResults: s.maxResults}); err != nil {
		return fmt.Errorf("refresh %q: %w", term, err)
	}
	return nil
}

// Start schedules RunOnce on spec and starts the scheduler. Overlapping runs are skipped.
// The returned stop function halts scheduling; its context is done once a running job finishes.
func (s *Service) Start(ctx context.Context, spec string) (func() context.Context, error) {
	if _, err := s.parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("%w: invalid cron spec %q: %w", domain.ErrValidation, spec, err)
	}

	cl := cronLogger{s.logger.Sugar()}
	c := cron.New(
		cron.WithParser(s.parser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	id, err := c.AddFunc(spec, func() { s.RunOnce(ctx) })
	if err != nil {
		return nil, fmt.Errorf("schedule refresh: %w", err)
	}
	c.Start()

	s.logger.Info("Refresh scheduled",
		zap.String("spec", spec),
		zap.Strings("terms", s.terms),
		zap.Time("next_run", c.Entry(id).Next),
	)
	return c.Stop, nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
