package refine

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/serpintel/internal/domain"
	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	domgap "github.com/kailas-cloud/serpintel/internal/domain/gap"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	domkw "github.com/kailas-cloud/serpintel/internal/domain/keyword"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
)

const analysisID = "a-1"

type replaced struct {
	id  string
	set recommendation.Set
}

type mockStore struct {
	results  map[string]domanalysis.Result
	replaced []replaced
	saveErr  error
}

func (m *mockStore) GetByID(_ context.Context, id string) (domanalysis.Result, error) {
	r, ok := m.results[id]
	if !ok {
		return domanalysis.Result{}, fmt.Errorf("analysis %s: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

func (m *mockStore) ReplaceRecommendations(_ context.Context, id string, set recommendation.Set) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.replaced = append(m.replaced, replaced{id: id, set: set})
	return nil
}

type mockLLM struct {
	suggestFn func(Prompt) ([]Suggestion, error)
	prompts   []Prompt
}

func (m *mockLLM) Suggest(_ context.Context, p Prompt) ([]Suggestion, error) {
	m.prompts = append(m.prompts, p)
	return m.suggestFn(p)
}

type mockCache struct {
	sets map[string]recommendation.Set
}

func (m *mockCache) SetRecommendations(_ context.Context, term string, s recommendation.Set) {
	if m.sets == nil {
		m.sets = make(map[string]recommendation.Set)
	}
	m.sets[term] = s
}

func storedAnalysis() domanalysis.Result {
	in := domintent.Reconstruct(domintent.Transactional, 0.8, domkw.Reconstruct("cat shirt", 1, 2), nil, nil)
	recs := recommendation.ReconstructSet([]recommendation.Recommendation{
		recommendation.Reconstruct(recommendation.LinkBuilding, "Develop backlinks from tee blogs", 1, 0.9, nil, 0),
		recommendation.Reconstruct(recommendation.ProductPage, "Create optimized product pages", 2, 0.9, nil, 0),
	}, true, false)
	return domanalysis.Reconstruct(analysisID, "cat shirt", time.Now(), in, domgap.NotDetected(), nil, recs, nil, time.Second)
}

func newTestStore() *mockStore {
	return &mockStore{results: map[string]domanalysis.Result{analysisID: storedAnalysis()}}
}
