package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	"github.com/kailas-cloud/serpintel/internal/domain/cacheentry"
	domfeedback "github.com/kailas-cloud/serpintel/internal/domain/feedback"
	domgap "github.com/kailas-cloud/serpintel/internal/domain/gap"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/keyword"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
	analysisuc "github.com/kailas-cloud/serpintel/internal/usecase/analysis"
	feedbackuc "github.com/kailas-cloud/serpintel/internal/usecase/feedback"
	healthuc "github.com/kailas-cloud/serpintel/internal/usecase/health"
	refineuc "github.com/kailas-cloud/serpintel/internal/usecase/refine"
)

type mockAnalyzer struct {
	analyzeFn func(ctx context.Context, req analysisuc.Request) (domanalysis.Result, error)
	batchFn   func(ctx context.Context, terms []string, maxResults int) ([]analysisuc.BatchItem, error)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, req analysisuc.Request) (domanalysis.Result, error) {
	return m.analyzeFn(ctx, req)
}

func (m *mockAnalyzer) AnalyzeBatch(ctx context.Context, terms []string, maxResults int) ([]analysisuc.BatchItem, error) {
	return m.batchFn(ctx, terms, maxResults)
}

type mockReports struct {
	getFn        func(ctx context.Context, id string) (domanalysis.Result, error)
	findFn       func(ctx context.Context, q domanalysis.Query) ([]domanalysis.Result, error)
	recsFn       func(ctx context.Context, id string, f recommendation.Filter) ([]recommendation.Recommendation, error)
	statusFn     func(ctx context.Context, term string) ([]cacheentry.Entry, error)
	invalidateFn func(ctx context.Context, term string) (int64, error)
}

func (m *mockReports) Get(ctx context.Context, id string) (domanalysis.Result, error) {
	return m.getFn(ctx, id)
}

func (m *mockReports) Find(ctx context.Context, q domanalysis.Query) ([]domanalysis.Result, error) {
	return m.findFn(ctx, q)
}

func (m *mockReports) Recommendations(
	ctx context.Context, id string, f recommendation.Filter,
) ([]recommendation.Recommendation, error) {
	return m.recsFn(ctx, id, f)
}

func (m *mockReports) CacheStatus(ctx context.Context, term string) ([]cacheentry.Entry, error) {
	return m.statusFn(ctx, term)
}

func (m *mockReports) InvalidateCache(ctx context.Context, term string) (int64, error) {
	return m.invalidateFn(ctx, term)
}

type mockRefiner struct {
	refineFn func(ctx context.Context, id string) (refineuc.Outcome, error)
}

func (m *mockRefiner) Refine(ctx context.Context, id string) (refineuc.Outcome, error) {
	return m.refineFn(ctx, id)
}

type mockPrioritizer struct {
	prioritizeFn func(it domintent.Type, recs []recommendation.Recommendation) []recommendation.Recommendation
}

func (m *mockPrioritizer) Prioritize(
	it domintent.Type, recs []recommendation.Recommendation,
) []recommendation.Recommendation {
	return m.prioritizeFn(it, recs)
}

type mockFeedback struct {
	submitFn func(ctx context.Context, in feedbackuc.Input) (domfeedback.Feedback, error)
	listFn   func(ctx context.Context, id string) ([]domfeedback.Feedback, error)
}

func (m *mockFeedback) Submit(ctx context.Context, in feedbackuc.Input) (domfeedback.Feedback, error) {
	return m.submitFn(ctx, in)
}

func (m *mockFeedback) List(ctx context.Context, id string) ([]domfeedback.Feedback, error) {
	return m.listFn(ctx, id)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type deps struct {
	analyzer    *mockAnalyzer
	reports     *mockReports
	refiner     *mockRefiner
	prioritizer *mockPrioritizer
	feedback    *mockFeedback
	health      *mockHealth
}

func newDeps() *deps {
	return &deps{
		analyzer:    &mockAnalyzer{},
		reports:     &mockReports{},
		refiner:     &mockRefiner{},
		prioritizer: &mockPrioritizer{},
		feedback:    &mockFeedback{},
		health:      &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}},
	}
}

func (d *deps) router(cfg RouterConfig) http.Handler {
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.NewRegistry()
	}
	s := NewServer(d.analyzer, d.reports, d.refiner, d.prioritizer, d.feedback, d.health, nil)
	return NewRouter(s, cfg)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func mustRec(t *testing.T, tactic recommendation.Tactic, priority int, confidence float64) recommendation.Recommendation {
	t.Helper()
	r, err := recommendation.New(tactic, "Optimize product pages for cat shirt buyers", priority, confidence, nil, 2)
	if err != nil {
		t.Fatalf("recommendation.New() error = %v", err)
	}
	return r
}

func sampleResult(t *testing.T) domanalysis.Result {
	t.Helper()
	main, err := keyword.New("cat shirt", 1, 3)
	if err != nil {
		t.Fatalf("keyword.New() error = %v", err)
	}
	in, err := domintent.New(domintent.Transactional, 0.8, main, nil, []string{"shopping ads"})
	if err != nil {
		t.Fatalf("intent.New() error = %v", err)
	}
	f, err := feature.New(feature.ShoppingAds, feature.Pos(1), map[string]any{"products": 3})
	if err != nil {
		t.Fatalf("feature.New() error = %v", err)
	}
	set, err := recommendation.NewSet([]recommendation.Recommendation{
		mustRec(t, recommendation.ProductPage, 1, 0.9),
		mustRec(t, recommendation.PPC, 2, 0.8),
	}, true, false)
	if err != nil {
		t.Fatalf("NewSet() error = %v", err)
	}
	return domanalysis.Reconstruct(
		"a-1", "cat shirt", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		in, domgap.NotDetected(), []feature.Feature{f}, set, nil, 1500*time.Millisecond,
	)
}
