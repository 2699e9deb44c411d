package refresh

import (
	"context"
	"sync"

	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	analysisuc "github.com/kailas-cloud/serpintel/internal/usecase/analysis"
)

type mockAnalyzer struct {
	mu        sync.Mutex
	calls     []analysisuc.Request
	analyzeFn func(ctx context.Context, req analysisuc.Request) (domanalysis.Result, error)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, req analysisuc.Request) (domanalysis.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, req)
	}
	return domanalysis.Result{}, nil
}

func (m *mockAnalyzer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockCache struct {
	invalidated []string
	err         error
}

func (m *mockCache) Invalidate(_ context.Context, term string) (int64, error) {
	m.invalidated = append(m.invalidated, term)
	return 3, m.err
}
