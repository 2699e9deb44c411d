package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/serpintel/internal/domain"
	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	"github.com/kailas-cloud/serpintel/internal/domain/cacheentry"
	domgap "github.com/kailas-cloud/serpintel/internal/domain/gap"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
)

func storedResult(id string) domanalysis.Result {
	return domanalysis.Reconstruct(id, "cat shirt", time.Now(), domintent.Analysis{}, domgap.NotDetected(), nil,
		recommendation.Set{}, nil, time.Second)
}

func TestGet(t *testing.T) {
	svc := New(&mockReader{byID: map[string]domanalysis.Result{"a1": storedResult("a1")}}, nil, nil)

	if _, err := svc.Get(context.Background(), "a1"); err != nil {
		t.Errorf("Get() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(context.Background(), ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Get() error = %v, want ErrValidation", err)
	}
}

func TestFind_NormalizesQuery(t *testing.T) {
	reader := &mockReader{}
	svc := New(reader, nil, nil)

	_, err := svc.Find(context.Background(), domanalysis.Query{SearchTerm: "  Cat   SHIRT ", Intent: "exploratory", Limit: 5})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if reader.lastList.SearchTerm != "cat shirt" || reader.lastList.Intent != domintent.Exploratory {
		t.Errorf("query = %+v", reader.lastList)
	}
}

func TestFind_Validation(t *testing.T) {
	tests := []struct {
		name string
		q    domanalysis.Query
	}{
		{"unknown intent", domanalysis.Query{Intent: "curious"}},
		{"negative limit", domanalysis.Query{Limit: -1}},
		{"negative offset", domanalysis.Query{Offset: -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&mockReader{}, nil, nil).Find(context.Background(), tt.q)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestFind_NoReader(t *testing.T) {
	out, err := New(nil, nil, nil).Find(context.Background(), domanalysis.Query{})
	if err != nil || len(out) != 0 {
		t.Errorf("Find() = %d results, err %v", len(out), err)
	}
}

func TestRecommendations(t *testing.T) {
	reader := &mockReader{
		byID: map[string]domanalysis.Result{"a1": storedResult("a1")},
		recs: []recommendation.Recommendation{
			recommendation.Reconstruct(recommendation.ProductPage, "Create product pages", 1, 0.9, nil, 0),
			recommendation.Reconstruct(recommendation.PPC, "Set up shopping campaigns", 3, 0.7, nil, 0),
		},
	}
	svc := New(reader, nil, nil)

	got, err := svc.Recommendations(context.Background(), "a1", recommendation.Filter{MaxPriority: 2})
	if err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}
	if len(got) != 1 || got[0].Tactic() != recommendation.ProductPage {
		t.Errorf("got %d recommendations", len(got))
	}
	if reader.lastRecs.AnalysisID != "a1" {
		t.Errorf("filter analysis id = %q", reader.lastRecs.AnalysisID)
	}

	if _, err = svc.Recommendations(context.Background(), "missing", recommendation.Filter{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown analysis error = %v, want ErrNotFound", err)
	}
	for _, f := range []recommendation.Filter{
		{Tactic: "social"},
		{MinConfidence: 1.5},
		{MaxPriority: 11},
	} {
		if _, err = svc.Recommendations(context.Background(), "a1", f); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("filter %+v error = %v, want ErrValidation", f, err)
		}
	}
}

func TestCache(t *testing.T) {
	cache := &mockCache{entries: []cacheentry.Entry{
		{Kind: "serp", Key: "serpintel:serp::cat shirt", Cached: true, TTL: time.Hour},
		{Kind: "analysis", Key: "serpintel:analysis::cat shirt"},
	}}
	svc := New(nil, cache, nil)

	status, err := svc.CacheStatus(context.Background(), "Cat Shirt")
	if err != nil || len(status) != 2 {
		t.Fatalf("CacheStatus() = %v, err %v", status, err)
	}

	n, err := svc.InvalidateCache(context.Background(), " CAT shirt ")
	if err != nil || n != 1 {
		t.Errorf("InvalidateCache() = %d, err %v", n, err)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "cat shirt" {
		t.Errorf("invalidated = %v", cache.invalidated)
	}

	if _, err = svc.InvalidateCache(context.Background(), "   "); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank term error = %v, want ErrValidation", err)
	}
}

func TestCache_Disabled(t *testing.T) {
	svc := New(nil, nil, nil)
	if n, err := svc.InvalidateCache(context.Background(), "cat shirt"); n != 0 || err != nil {
		t.Errorf("InvalidateCache() = %d, %v", n, err)
	}
	if s, err := svc.CacheStatus(context.Background(), "cat shirt"); len(s) != 0 || err != nil {
		t.Errorf("CacheStatus() = %v, %v", s, err)
	}
}
