package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/serpintel/internal/domain"
)

func TestAnalyzeBatch_PerTermResults(t *testing.T) {
	provider := staticProvider(transactionalPayload(t))
	svc := newTestService(t, provider).WithBatchLimits(5, 2)

	items, err := svc.AnalyzeBatch(context.Background(), []string{"funny dad shirt", "coffee mug", "dad tee"}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	if items[0].Err != nil || items[0].Result.SearchTerm() != "funny dad shirt" {
		t.Errorf("item 0 = %+v", items[0])
	}
	if !errors.Is(items[1].Err, domain.ErrValidation) {
		t.Errorf("item 1 error = %v, want validation", items[1].Err)
	}
	if items[2].Err != nil || items[2].Term != "dad tee" {
		t.Errorf("item 2 = %+v", items[2])
	}
	if provider.Calls() != 2 {
		t.Errorf("provider calls = %d, want 2", provider.Calls())
	}
}

func TestAnalyzeBatch_Limits(t *testing.T) {
	svc := newTestService(t, staticProvider(transactionalPayload(t))).WithBatchLimits(2, 1)

	if _, err := svc.AnalyzeBatch(context.Background(), nil, 10); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty batch error = %v", err)
	}
	_, err := svc.AnalyzeBatch(context.Background(), []string{"a shirt", "b shirt", "c shirt"}, 10)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("oversized batch error = %v", err)
	}
}
