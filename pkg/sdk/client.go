package serpintel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/serpintel/internal/db/redis"
	"github.com/kailas-cloud/serpintel/internal/domain"
	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/domain/searchterm"
	"github.com/kailas-cloud/serpintel/internal/repository/cache"
	"github.com/kailas-cloud/serpintel/internal/transport/fixture"
	"github.com/kailas-cloud/serpintel/internal/transport/serpapi"
	analysisuc "github.com/kailas-cloud/serpintel/internal/usecase/analysis"
	healthuc "github.com/kailas-cloud/serpintel/internal/usecase/health"
	intentuc "github.com/kailas-cloud/serpintel/internal/usecase/intent"
	"github.com/kailas-cloud/serpintel/internal/usecase/recommend"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCachePrefix      = "serpintel:"
	defaultMaxResults       = 10
)

// Internal interfaces for substitution in tests.
type analysisUseCase interface {
	Analyze(ctx context.Context, req analysisuc.Request) (domanalysis.Result, error)
	AnalyzeBatch(ctx context.Context, terms []string, maxResults int) ([]analysisuc.BatchItem, error)
}

type prioritizer interface {
	Prioritize(it domintent.Type, recs []recommendation.Recommendation) []recommendation.Recommendation
}

// Client is the serpintel SDK entry point.
type Client struct {
	store       *dbRedis.Store
	analysisSvc analysisUseCase
	prioritizer prioritizer
	healthSvc   healthUseCase
	maxResults  int
	obs         *observer
}

// New creates a Client. A SERP source is required (WithSerpAPI or WithFixtureProvider).
// The provided context is used for the initial cache readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{maxResults: defaultMaxResults, classifier: string(intentuc.ModeStrategy)}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.maxResults < 1 || cfg.maxResults > searchterm.MaxMaxResults {
		return nil, fmt.Errorf("serpintel: %w: max results must be between 1 and %d, got %d",
			domain.ErrValidation, searchterm.MaxMaxResults, cfg.maxResults)
	}

	provider, err := createProvider(cfg)
	if err != nil {
		return nil, err
	}

	classifier, err := intentuc.NewClassifier(intentuc.Mode(cfg.classifier))
	if err != nil {
		return nil, fmt.Errorf("serpintel: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	svc := analysisuc.New(provider, classifier, zap.NewNop()).WithNicheTerms(cfg.nicheTerms)
	c := &Client{
		analysisSvc: svc,
		prioritizer: recommend.NewPrioritizer(),
		maxResults:  cfg.maxResults,
		obs:         obs,
	}

	if len(cfg.cacheAddrs) == 0 {
		c.healthSvc = healthuc.New(nil, nil, nil)
		return c, nil
	}

	store, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.cacheAddrs, Password: cfg.cachePassword})
	if err != nil {
		return nil, fmt.Errorf("serpintel: create redis store: %w", err)
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("serpintel: cache not ready: %w", err)
	}
	svc.WithCache(cache.New(store, defaultCachePrefix, cfg.cacheTTL, nil, nil))
	c.store = store
	c.healthSvc = healthuc.New(store, nil, nil)
	return c, nil
}

func createProvider(cfg *clientConfig) (analysisuc.SerpProvider, error) {
	switch {
	case cfg.serpAPIKey != "":
		p, err := serpapi.NewClient(&serpapi.Config{APIKey: cfg.serpAPIKey, BaseURL: cfg.serpBaseURL})
		if err != nil {
			return nil, fmt.Errorf("serpintel: create serpapi client: %w", err)
		}
		return p, nil
	case cfg.fixture:
		return fixture.New(), nil
	default:
		return nil, errors.New("serpintel: serp source required (use WithSerpAPI or WithFixtureProvider)")
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Analyze runs the full pipeline for one search term.
func (c *Client) Analyze(ctx context.Context, term string) (_ Analysis, err error) {
	cl := newCall(callAnalyze)
	cl.term = term
	defer func() { c.obs.finish(cl, err) }()

	res, err := c.analysisSvc.Analyze(ctx, analysisuc.Request{Term: term, MaxResults: c.maxResults})
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze: %w", err)
	}
	a := fromInternalAnalysis(res)
	c.obs.analyzed(a)
	return a, nil
}

// AnalyzeBatch analyzes several terms concurrently. Per-term failures are
// reported on their BatchResult; err is only set for an invalid batch.
func (c *Client) AnalyzeBatch(ctx context.Context, terms []string) (_ []BatchResult, err error) {
	cl := newCall(callAnalyzeBatch)
	cl.terms = len(terms)
	defer func() { c.obs.finish(cl, err) }()

	items, err := c.analysisSvc.AnalyzeBatch(ctx, terms, c.maxResults)
	if err != nil {
		return nil, fmt.Errorf("analyze batch: %w", err)
	}
	out := make([]BatchResult, len(items))
	for i, it := range items {
		out[i] = BatchResult{Term: it.Term, Err: it.Err}
		if it.Err == nil {
			a := fromInternalAnalysis(it.Result)
			c.obs.analyzed(a)
			out[i].Analysis = &a
		}
	}
	return out, nil
}

// Prioritize reorders recommendations for a search intent and renumbers their priorities.
func (c *Client) Prioritize(intent string, recs []Recommendation) (_ []Recommendation, err error) {
	cl := newCall(callPrioritize)
	defer func() { c.obs.finish(cl, err) }()

	it, err := domintent.Parse(intent)
	if err != nil {
		return nil, fmt.Errorf("prioritize: %w: %w", domain.ErrValidation, err)
	}
	if err = recommend.CheckRankable(len(recs)); err != nil {
		return nil, fmt.Errorf("prioritize: %w", err)
	}
	internal, err := toInternalRecommendations(recs)
	if err != nil {
		return nil, fmt.Errorf("prioritize: %w: %w", domain.ErrValidation, err)
	}
	return fromRecommendations(c.prioritizer.Prioritize(it, internal)), nil
}
