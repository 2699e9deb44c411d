package analysis

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/domain/serp"
	"github.com/kailas-cloud/serpintel/internal/retry"
	"github.com/kailas-cloud/serpintel/internal/usecase/intent"
)

type mockProvider struct {
	mu      sync.Mutex
	calls   int
	fetchFn func(ctx context.Context, term string, maxResults int) (serp.Payload, error)
}

func (m *mockProvider) Fetch(ctx context.Context, term string, maxResults int) (serp.Payload, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.fetchFn(ctx, term, maxResults)
}

func (m *mockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// memCache is an in-memory Cache that counts writes.
type memCache struct {
	mu       sync.Mutex
	serps    map[string]serp.Payload
	analyses map[string]domanalysis.Result
	recs     map[string]recommendation.Set
	writes   int
}

func newMemCache() *memCache {
	return &memCache{
		serps:    map[string]serp.Payload{},
		analyses: map[string]domanalysis.Result{},
		recs:     map[string]recommendation.Set{},
	}
}

func (c *memCache) GetSerp(_ context.Context, term string) (serp.Payload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.serps[term]
	return p, ok
}

func (c *memCache) SetSerp(_ context.Context, term string, p serp.Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serps[term] = p
	c.writes++
}

func (c *memCache) GetAnalysis(_ context.Context, term string) (domanalysis.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.analyses[term]
	return r, ok
}

func (c *memCache) SetAnalysis(_ context.Context, r domanalysis.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.analyses[r.SearchTerm()] = r
	c.writes++
}

func (c *memCache) SetRecommendations(_ context.Context, term string, s recommendation.Set) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs[term] = s
	c.writes++
}

func (c *memCache) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

type mockStore struct {
	mu     sync.Mutex
	saved  []domanalysis.Result
	saveFn func(ctx context.Context, r domanalysis.Result) error
}

func (m *mockStore) Save(ctx context.Context, r domanalysis.Result) error {
	m.mu.Lock()
	m.saved = append(m.saved, r)
	m.mu.Unlock()
	if m.saveFn != nil {
		return m.saveFn(ctx, r)
	}
	return nil
}

type row struct {
	title, url, snippet string
}

func payloadOf(t *testing.T, blocks []serp.Block, rows ...row) serp.Payload {
	t.Helper()
	rs := make([]serp.Result, 0, len(rows))
	for i, r := range rows {
		res, err := serp.NewResult(i+1, r.title, r.url, r.snippet)
		if err != nil {
			t.Fatalf("build result: %v", err)
		}
		rs = append(rs, res)
	}
	return serp.NewPayload(rs, blocks)
}

func staticProvider(p serp.Payload) *mockProvider {
	return &mockProvider{fetchFn: func(context.Context, string, int) (serp.Payload, error) { return p, nil }}
}

func newTestService(t *testing.T, provider SerpProvider) *Service {
	t.Helper()
	classifier, err := intent.NewClassifier(intent.ModeStrategy)
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}
	s := New(provider, classifier, zap.NewNop()).WithRetry(retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	})
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}
