package report

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/serpintel/internal/domain"
	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	"github.com/kailas-cloud/serpintel/internal/domain/cacheentry"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
)

type mockReader struct {
	byID     map[string]domanalysis.Result
	recs     []recommendation.Recommendation
	lastList domanalysis.Query
	lastRecs recommendation.Filter
	listFn   func(domanalysis.Query) ([]domanalysis.Result, error)
}

func (m *mockReader) GetByID(_ context.Context, id string) (domanalysis.Result, error) {
	r, ok := m.byID[id]
	if !ok {
		return domanalysis.Result{}, fmt.Errorf("analysis %s: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

func (m *mockReader) GetByTerm(_ context.Context, term string) (domanalysis.Result, error) {
	for _, r := range m.byID {
		if r.SearchTerm() == term {
			return r, nil
		}
	}
	return domanalysis.Result{}, domain.ErrNotFound
}

func (m *mockReader) List(_ context.Context, q domanalysis.Query) ([]domanalysis.Result, error) {
	m.lastList = q
	if m.listFn != nil {
		return m.listFn(q)
	}
	return []domanalysis.Result{}, nil
}

func (m *mockReader) Recommendations(_ context.Context, f recommendation.Filter) ([]recommendation.Recommendation, error) {
	m.lastRecs = f
	return f.Apply(m.recs), nil
}

type mockCache struct {
	entries     []cacheentry.Entry
	invalidated []string
	err         error
}

func (m *mockCache) Status(_ context.Context, _ string) ([]cacheentry.Entry, error) {
	return m.entries, m.err
}

func (m *mockCache) Invalidate(_ context.Context, term string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.invalidated = append(m.invalidated, term)
	return int64(cacheentry.CachedCount(m.entries)), nil
}
