package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/serpintel/internal/config"
	"github.com/kailas-cloud/serpintel/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/serpintel/internal/db/redis"
	"github.com/kailas-cloud/serpintel/internal/metrics"
	analysisrepo "github.com/kailas-cloud/serpintel/internal/repository/analysis"
	"github.com/kailas-cloud/serpintel/internal/repository/cache"
	feedbackrepo "github.com/kailas-cloud/serpintel/internal/repository/feedback"
	"github.com/kailas-cloud/serpintel/internal/retry"
	"github.com/kailas-cloud/serpintel/internal/transport/fixture"
	openaiRefiner "github.com/kailas-cloud/serpintel/internal/transport/openai"
	"github.com/kailas-cloud/serpintel/internal/transport/serpapi"
	analysisuc "github.com/kailas-cloud/serpintel/internal/usecase/analysis"
	feedbackuc "github.com/kailas-cloud/serpintel/internal/usecase/feedback"
	healthuc "github.com/kailas-cloud/serpintel/internal/usecase/health"
	intentuc "github.com/kailas-cloud/serpintel/internal/usecase/intent"
	"github.com/kailas-cloud/serpintel/internal/usecase/recommend"
	refineuc "github.com/kailas-cloud/serpintel/internal/usecase/refine"
	"github.com/kailas-cloud/serpintel/internal/usecase/refresh"
	reportuc "github.com/kailas-cloud/serpintel/internal/usecase/report"
)

// app is the composition root shared by every subcommand.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	store *dbRedis.Store
	cache *cache.Cache
	db    *sqlx.DB
	repo  *analysisrepo.Repository

	analysis    *analysisuc.Service
	reports     *reportuc.Service
	refiner     *refineuc.Service
	feedback    *feedbackuc.Service
	health      *healthuc.Service
	prioritizer *recommend.Prioritizer
	refresh     *refresh.Service
}

// appOptions toggle the optional backends per subcommand.
type appOptions struct {
	withCache    bool
	withDatabase bool
	classifier   string
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger, opts appOptions) (*app, error) {
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry(), prioritizer: recommend.NewPrioritizer()}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	// Register metrics explicitly (no init())
	a.metrics = metrics.New(a.registry)

	if opts.withCache && cfg.Cache.Enabled() {
		if err := a.connectCache(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}
	if opts.withDatabase && cfg.Database.Enabled() {
		if err := a.connectDatabase(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	provider, err := a.serpProvider()
	if err != nil {
		a.Close()
		return nil, err
	}

	mode := cfg.Intent.Classifier
	if opts.classifier != "" {
		mode = opts.classifier
	}
	classifier, err := intentuc.NewClassifier(intentuc.Mode(mode))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.analysis = analysisuc.New(provider, classifier, logger).
		WithRetry(retry.Config{
			MaxAttempts:  cfg.Serp.Retry.MaxAttempts,
			InitialDelay: time.Duration(cfg.Serp.Retry.InitialDelayMs) * time.Millisecond,
			MaxDelay:     time.Duration(cfg.Serp.Retry.MaxDelayMs) * time.Millisecond,
			Multiplier:   cfg.Serp.Retry.Multiplier,
		}).
		WithNicheTerms(cfg.Intent.NicheTerms).
		WithMetrics(a.metrics).
		WithBatchLimits(cfg.Batch.MaxTerms, cfg.Batch.Concurrency)
	if a.cache != nil {
		a.analysis.WithCache(a.cache)
	}
	if a.repo != nil {
		a.analysis.WithStore(a.repo)
	}

	a.buildReadSide()
	return a, nil
}

func (a *app) connectCache(ctx context.Context) error {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    a.cfg.Cache.Addrs,
		Username: a.cfg.Cache.Username,
		Password: a.cfg.Cache.Password,
		DB:       a.cfg.Cache.DB,
	})
	if err != nil {
		return fmt.Errorf("create cache store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(a.cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return fmt.Errorf("cache not ready: %w", err)
	}
	a.store = store
	a.cache = cache.New(store, a.cfg.Cache.KeyPrefix, a.cfg.Cache.TTL(), a.metrics, a.logger)
	a.logger.Info("Connected to cache", zap.Strings("addrs", a.cfg.Cache.Addrs))
	return nil
}

func (a *app) connectDatabase(ctx context.Context) error {
	db, err := postgres.Connect(ctx, postgres.Config{
		DSN:             a.cfg.Database.DSN,
		MaxOpenConns:    a.cfg.Database.MaxOpenConns,
		MaxIdleConns:    a.cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(a.cfg.Database.ConnMaxLifetimeSec) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	a.db = db

	if a.cfg.Database.AutoMigrate {
		mg, err := postgres.NewMigrator(db, a.logger)
		if err != nil {
			return err
		}
		if err := mg.Up(); err != nil {
			return err
		}
	}
	a.repo = analysisrepo.NewRepository(db)
	a.logger.Info("Connected to database")
	return nil
}

func (a *app) serpProvider() (analysisuc.SerpProvider, error) {
	switch a.cfg.Serp.Provider {
	case config.SerpProviderHTTP:
		return serpapi.NewClient(&serpapi.Config{
			BaseURL: a.cfg.Serp.BaseURL,
			APIKey:  a.cfg.Serp.APIKey,
			Engine:  a.cfg.Serp.Engine,
			Timeout: time.Duration(a.cfg.Serp.TimeoutSec) * time.Second,
			Metrics: a.metrics,
			Logger:  a.logger,
		})
	case config.SerpProviderFixture:
		return fixture.New(), nil
	default:
		return nil, fmt.Errorf("unknown serp provider %q", a.cfg.Serp.Provider)
	}
}

// buildReadSide wires the services that depend on optional backends.
// Interfaces are only assigned from non-nil pointers: a typed nil inside an interface is not nil.
func (a *app) buildReadSide() {
	var (
		reader     reportuc.Reader
		cacheAdmin reportuc.CacheAdmin
		cachePing  healthuc.Pinger
		dbPing     healthuc.Pinger
		llmCheck   healthuc.LLMChecker
		llm        refineuc.LLM
		store      refineuc.AnalysisStore
	)
	if a.repo != nil {
		reader = a.repo
		store = a.repo
		dbPing = postgres.NewPinger(a.db)
		a.feedback = feedbackuc.New(a.repo, feedbackrepo.NewRepository(a.db), a.logger)
	}
	if a.cache != nil {
		cacheAdmin = a.cache
		cachePing = a.store
	}
	if a.cfg.LLM.Enabled() {
		r := openaiRefiner.NewRefiner(&openaiRefiner.Config{
			APIKey:      a.cfg.LLM.APIKey,
			BaseURL:     a.cfg.LLM.BaseURL,
			Model:       a.cfg.LLM.Model,
			Temperature: a.cfg.LLM.Temperature,
			Timeout:     time.Duration(a.cfg.LLM.TimeoutSec) * time.Second,
			Metrics:     a.metrics,
			Logger:      a.logger,
		})
		llm = r
		llmCheck = r
	}

	a.reports = reportuc.New(reader, cacheAdmin, a.logger)
	a.refiner = refineuc.New(store, llm, a.logger)
	if a.cache != nil {
		a.refiner.WithCache(a.cache)
	}
	if a.feedback == nil {
		a.feedback = feedbackuc.New(nil, nil, a.logger)
	}
	a.health = healthuc.New(cachePing, dbPing, llmCheck)

	var invalidator refresh.CacheInvalidator
	if a.cache != nil {
		invalidator = a.cache
	}
	a.refresh = refresh.New(a.analysis, invalidator, a.cfg.Scheduler.WatchTerms, a.logger).
		WithMaxResults(a.cfg.Serp.MaxResults)
}

// Close releases backend connections.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("Failed to close database", zap.Error(err))
		}
	}
}
