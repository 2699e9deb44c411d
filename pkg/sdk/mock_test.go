package serpintel

import (
	"context"
	"testing"
	"time"

	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	domgap "github.com/kailas-cloud/serpintel/internal/domain/gap"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/keyword"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
	analysisuc "github.com/kailas-cloud/serpintel/internal/usecase/analysis"
	healthuc "github.com/kailas-cloud/serpintel/internal/usecase/health"
	"github.com/kailas-cloud/serpintel/internal/usecase/recommend"
)

// --- analysisUseCase mock ---

type mockAnalysisUC struct {
	analyzeFn func(ctx context.Context, req analysisuc.Request) (domanalysis.Result, error)
	batchFn   func(ctx context.Context, terms []string, maxResults int) ([]analysisuc.BatchItem, error)
}

func (m *mockAnalysisUC) Analyze(ctx context.Context, req analysisuc.Request) (domanalysis.Result, error) {
	return m.analyzeFn(ctx, req)
}

func (m *mockAnalysisUC) AnalyzeBatch(ctx context.Context, terms []string, maxResults int) ([]analysisuc.BatchItem, error) {
	return m.batchFn(ctx, terms, maxResults)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- helpers ---

func testClient(svc analysisUseCase) *Client {
	return &Client{
		analysisSvc: svc,
		prioritizer: recommend.NewPrioritizer(),
		healthSvc:   healthuc.New(nil, nil, nil),
		maxResults:  defaultMaxResults,
	}
}

func sampleResult(t *testing.T) domanalysis.Result {
	t.Helper()
	main, err := keyword.New("cat shirt", 1, 3)
	if err != nil {
		t.Fatalf("keyword.New() error = %v", err)
	}
	second, err := keyword.New("vintage", 0.5, 1)
	if err != nil {
		t.Fatalf("keyword.New() error = %v", err)
	}
	in, err := domintent.New(domintent.Transactional, 0.8, main, []keyword.Keyword{second}, []string{"shopping ads"})
	if err != nil {
		t.Fatalf("intent.New() error = %v", err)
	}
	mg, err := domgap.NewDetected("Few niche sellers rank for cat shirt", 0.7, 0.3, []keyword.Keyword{second})
	if err != nil {
		t.Fatalf("gap.NewDetected() error = %v", err)
	}
	shopping, err := feature.New(feature.ShoppingAds, feature.Pos(1), map[string]any{"products": 3})
	if err != nil {
		t.Fatalf("feature.New() error = %v", err)
	}
	paa, err := feature.New(feature.PeopleAlsoAsk, nil, nil)
	if err != nil {
		t.Fatalf("feature.New() error = %v", err)
	}
	rec, err := recommendation.New(recommendation.ProductPage, "Optimize product pages for cat shirt buyers", 1, 0.9, []string{"shopping ads"}, 2)
	if err != nil {
		t.Fatalf("recommendation.New() error = %v", err)
	}
	set, err := recommendation.NewSet([]recommendation.Recommendation{rec}, true, true)
	if err != nil {
		t.Fatalf("NewSet() error = %v", err)
	}
	return domanalysis.Reconstruct(
		"a-1", "cat shirt", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		in, mg, []feature.Feature{shopping, paa}, set, nil, 1500*time.Millisecond,
	)
}
