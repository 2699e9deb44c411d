package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	domgap "github.com/kailas-cloud/serpintel/internal/domain/gap"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	domkw "github.com/kailas-cloud/serpintel/internal/domain/keyword"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/domain/serp"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
)

func testPayload() serp.Payload {
	return serp.NewPayload(
		[]serp.Result{
			serp.ReconstructResult(1, "Cat Shirt", "https://www.etsy.com/cat", "etsy.com", "Buy cat shirts"),
			serp.ReconstructResult(2, "Cat Tee", "https://amazon.com/tee", "amazon.com", ""),
		},
		[]serp.Block{{Name: "shopping_ads", Position: feature.Pos(0), Data: map[string]any{"products": 3}}},
	)
}

func testAnalysis() domanalysis.Result {
	main := domkw.Reconstruct("cat shirt", 1, 2)
	in := domintent.Reconstruct(domintent.Transactional, 0.8, main,
		[]domkw.Keyword{domkw.Reconstruct("funny cat", 0.7, 2)}, []string{"Shopping ads present"})
	mg := domgap.Reconstruct(true, "Limited POD graphic tee representation for 'cat shirt'", 0.94, 0.3,
		[]domkw.Keyword{domkw.Reconstruct("cat shirt shirt", 0.85, 1)})
	recs := recommendation.ReconstructSet([]recommendation.Recommendation{
		recommendation.Reconstruct(recommendation.ProductPage, "Create optimized product pages", 1, 0.9, []string{"e"}, 0),
		recommendation.Reconstruct(recommendation.KeywordTgt, "Target gap-specific keywords", 2, 0.89, nil, 3),
	}, true, true)
	p := testPayload()
	return domanalysis.Reconstruct("a1", "cat shirt", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		in, mg, []feature.Feature{feature.Reconstruct(feature.ShoppingAds, feature.Pos(0), map[string]any{"products": 3})},
		recs, &p, 1500*time.Millisecond)
}

func TestSerp_RoundTrip(t *testing.T) {
	c, ms, _ := newTestCache(t)
	ctx := context.Background()

	c.SetSerp(ctx, "cat shirt", testPayload())

	key := "serpintel:serp::cat shirt"
	if _, ok := ms.data[key]; !ok {
		t.Fatalf("key %q not written, have %v", key, ms.data)
	}
	if ms.ttls[key] != DefaultTTL {
		t.Errorf("ttl = %v, want %v", ms.ttls[key], DefaultTTL)
	}

	got, ok := c.GetSerp(ctx, "cat shirt")
	if !ok {
		t.Fatal("expected hit")
	}
	if len(got.Results()) != 2 || got.Results()[0].Domain() != "etsy.com" {
		t.Errorf("results = %+v", got.Results())
	}
	if len(got.Blocks()) != 1 || got.Blocks()[0].Name != "shopping_ads" || *got.Blocks()[0].Position != 0 {
		t.Errorf("blocks = %+v", got.Blocks())
	}
}

func TestAnalysis_RoundTrip(t *testing.T) {
	c, _, _ := newTestCache(t)
	ctx := context.Background()
	want := testAnalysis()

	c.SetAnalysis(ctx, want)
	got, ok := c.GetAnalysis(ctx, "cat shirt")
	if !ok {
		t.Fatal("expected hit")
	}

	if got.ID() != "a1" || !got.Timestamp().Equal(want.Timestamp()) {
		t.Errorf("id=%q ts=%v", got.ID(), got.Timestamp())
	}
	if got.ExecutionTime() != 1500*time.Millisecond {
		t.Errorf("execution time = %v", got.ExecutionTime())
	}
	if got.Intent().Type() != domintent.Transactional || got.Intent().MainKeyword().Text() != "cat shirt" {
		t.Errorf("intent = %+v", got.Intent())
	}
	mg := got.MarketGap()
	if !mg.Detected() || mg.OpportunityScore() != 0.94 || len(mg.RelatedKeywords()) != 1 {
		t.Errorf("market gap = %+v", mg)
	}
	items := got.Recommendations().Items()
	if len(items) != 2 || items[1].Effort() != 3 || items[0].Effort() != 0 {
		t.Errorf("recommendations = %+v", items)
	}
	if got.RawData() == nil || len(got.RawData().Results()) != 2 {
		t.Error("raw data lost")
	}
}

func TestRecommendations_RoundTrip(t *testing.T) {
	c, _, _ := newTestCache(t)
	ctx := context.Background()

	c.SetRecommendations(ctx, "cat shirt", testAnalysis().Recommendations())
	got, ok := c.GetRecommendations(ctx, "cat shirt")
	if !ok || got.Len() != 2 || !got.MarketGapBased() {
		t.Fatalf("GetRecommendations() = %+v, %v", got, ok)
	}
}

func TestGet_Miss(t *testing.T) {
	c, _, _ := newTestCache(t)
	if _, ok := c.GetAnalysis(context.Background(), "dog tee"); ok {
		t.Error("expected miss")
	}
}

func TestGet_StoreErrorIsMiss(t *testing.T) {
	c, ms, _ := newTestCache(t)
	ms.getFn = func(context.Context, string) ([]byte, error) { return nil, errors.New("connection reset") }

	if _, ok := c.GetSerp(context.Background(), "cat shirt"); ok {
		t.Error("expected miss on store error")
	}
}

func TestGet_CorruptEntryIsMiss(t *testing.T) {
	c, ms, _ := newTestCache(t)
	ms.data["serpintel:analysis::cat shirt"] = []byte("{not json")

	if _, ok := c.GetAnalysis(context.Background(), "cat shirt"); ok {
		t.Error("expected miss on corrupt entry")
	}
}

func TestSet_StoreErrorSwallowed(t *testing.T) {
	c, ms, _ := newTestCache(t)
	ms.setFn = func(context.Context, string, []byte, time.Duration) error { return errors.New("READONLY") }

	c.SetSerp(context.Background(), "cat shirt", testPayload())
}

func TestInvalidateAndStatus(t *testing.T) {
	c, _, _ := newTestCache(t)
	ctx := context.Background()
	c.SetSerp(ctx, "cat shirt", testPayload())
	c.SetAnalysis(ctx, testAnalysis())

	status, err := c.Status(ctx, "cat shirt")
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	cached := map[string]bool{}
	for _, e := range status {
		cached[e.Kind] = e.Cached
	}
	if !cached[KindSerp] || !cached[KindAnalysis] || cached[KindRecommendations] {
		t.Errorf("status = %+v", status)
	}

	n, err := c.Invalidate(ctx, "cat shirt")
	if err != nil {
		t.Fatalf("Invalidate() error: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	if _, ok := c.GetSerp(ctx, "cat shirt"); ok {
		t.Error("serp entry survived invalidation")
	}
}
