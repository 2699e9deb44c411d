package feedback

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/serpintel/internal/domain"
	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	domfeedback "github.com/kailas-cloud/serpintel/internal/domain/feedback"
)

type mockAnalyses struct {
	known map[string]bool
	err   error
}

func (m *mockAnalyses) GetByID(_ context.Context, id string) (domanalysis.Result, error) {
	if m.err != nil {
		return domanalysis.Result{}, m.err
	}
	if !m.known[id] {
		return domanalysis.Result{}, fmt.Errorf("analysis %s: %w", id, domain.ErrNotFound)
	}
	return domanalysis.Result{}, nil
}

type mockStore struct {
	saved  []domfeedback.Feedback
	saveFn func(domfeedback.Feedback) error
}

func (m *mockStore) Save(_ context.Context, f domfeedback.Feedback) error {
	if m.saveFn != nil {
		if err := m.saveFn(f); err != nil {
			return err
		}
	}
	m.saved = append(m.saved, f)
	return nil
}

func (m *mockStore) ListByAnalysis(_ context.Context, analysisID string) ([]domfeedback.Feedback, error) {
	var out []domfeedback.Feedback
	for _, f := range m.saved {
		if f.AnalysisID() == analysisID {
			out = append(out, f)
		}
	}
	return out, nil
}
