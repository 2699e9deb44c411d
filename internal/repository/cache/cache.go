// Package cache stores SERP payloads, analyses and recommendation sets in a key-value store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/serpintel/internal/db"
	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	"github.com/kailas-cloud/serpintel/internal/domain/cacheentry"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/domain/serp"
	"github.com/kailas-cloud/serpintel/internal/metrics"
	"github.com/kailas-cloud/serpintel/internal/repository/record"
)

// DefaultTTL is the lifetime of every cache entry.
const DefaultTTL = 24 * time.Hour

// Entry kinds. Keys are "<prefix><kind>::<term>".
const (
	KindSerp            = "serp"
	KindAnalysis        = "analysis"
	KindRecommendations = "recommendations"
)

var kinds = []string{KindSerp, KindAnalysis, KindRecommendations}

// store is the consumer interface for the cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Cache is a JSON cache over a key-value store.
// Get and Set never return errors: failures are logged and degrade to a miss or a no-op.
type Cache struct {
	store   store
	prefix  string
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New creates a cache. A non-positive ttl uses DefaultTTL.
func New(s store, prefix string, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{store: s, prefix: prefix, ttl: ttl, metrics: m, logger: logger}
}

// Key builds the store key for a kind and term.
func (c *Cache) Key(kind, term string) string {
	return c.prefix + kind + "::" + term
}

// GetSerp returns a cached SERP payload.
func (c *Cache) GetSerp(ctx context.Context, term string) (serp.Payload, bool) {
	var rec record.Payload
	if !c.get(ctx, KindSerp, term, &rec) {
		return serp.Payload{}, false
	}
	return rec.ToPayload(), true
}

// SetSerp caches a SERP payload.
func (c *Cache) SetSerp(ctx context.Context, term string, p serp.Payload) {
	c.set(ctx, KindSerp, term, record.FromPayload(p))
}

// GetAnalysis returns a cached analysis result.
func (c *Cache) GetAnalysis(ctx context.Context, term string) (domanalysis.Result, bool) {
	var rec record.Analysis
	if !c.get(ctx, KindAnalysis, term, &rec) {
		return domanalysis.Result{}, false
	}
	return rec.ToAnalysis(), true
}

// SetAnalysis caches an analysis result under its search term.
func (c *Cache) SetAnalysis(ctx context.Context, r domanalysis.Result) {
	c.set(ctx, KindAnalysis, r.SearchTerm(), record.FromAnalysis(r))
}

// GetRecommendations returns a cached recommendation set.
func (c *Cache) GetRecommendations(ctx context.Context, term string) (recommendation.Set, bool) {
	var rec record.Set
	if !c.get(ctx, KindRecommendations, term, &rec) {
		return recommendation.Set{}, false
	}
	return rec.ToSet(), true
}

// SetRecommendations caches a recommendation set.
func (c *Cache) SetRecommendations(ctx context.Context, term string, s recommendation.Set) {
	c.set(ctx, KindRecommendations, term, record.FromSet(s))
}

// Invalidate deletes every entry for a term and returns how many existed.
func (c *Cache) Invalidate(ctx context.Context, term string) (int64, error) {
	keys := make([]string, len(kinds))
	for i, k := range kinds {
		keys[i] = c.Key(k, term)
	}
	n, err := c.store.Del(ctx, keys...)
	if err != nil {
		return 0, fmt.Errorf("invalidate %q: %w", term, err)
	}
	return n, nil
}

// Status reports which entries exist for a term.
func (c *Cache) Status(ctx context.Context, term string) ([]cacheentry.Entry, error) {
	out := make([]cacheentry.Entry, 0, len(kinds))
	for _, k := range kinds {
		key := c.Key(k, term)
		ttl, err := c.store.TTL(ctx, key)
		switch {
		case errors.Is(err, db.ErrKeyNotFound):
			out = append(out, cacheentry.Entry{Kind: k, Key: key})
		case err != nil:
			return nil, fmt.Errorf("cache status %q: %w", key, err)
		default:
			out = append(out, cacheentry.Entry{Kind: k, Key: key, Cached: true, TTL: ttl})
		}
	}
	return out, nil
}

func (c *Cache) get(ctx context.Context, kind, term string, dst any) bool {
	key := c.Key(kind, term)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read cache entry", zap.String("key", key), zap.Error(err))
		}
		c.metrics.ObserveCache(kind, metrics.ResultMiss)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("Failed to decode cache entry", zap.String("key", key), zap.Error(err))
		c.metrics.ObserveCache(kind, metrics.ResultMiss)
		return false
	}
	c.metrics.ObserveCache(kind, metrics.ResultHit)
	return true
}

func (c *Cache) set(ctx context.Context, kind, term string, v any) {
	key := c.Key(kind, term)
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to write cache entry", zap.String("key", key), zap.Error(err))
	}
}
