package analysis

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/serpintel/internal/domain"
	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
)

// Batch defaults.
const (
	DefaultMaxBatch         = 20
	DefaultBatchConcurrency = 4
)

// BatchItem is the outcome for one term of a batch. Exactly one of Result and Err is set.
type BatchItem struct {
	Term   string
	Result domanalysis.Result
	Err    error
}

// AnalyzeBatch runs independent pipelines for each term with bounded concurrency.
// Per-term failures are reported on their item; the batch itself only fails on an oversized request.
func (s *Service) AnalyzeBatch(ctx context.Context, terms []string, maxResults int) ([]BatchItem, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: at least one search term is required", domain.ErrValidation)
	}
	if len(terms) > s.maxBatch {
		return nil, fmt.Errorf("%w: batch size %d exceeds %d", domain.ErrValidation, len(terms), s.maxBatch)
	}

	items := make([]BatchItem, len(terms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)

	for i, term := range terms {
		g.Go(func() error {
			res, err := s.Analyze(gctx, Request{Term: term, MaxResults: maxResults})
			items[i] = BatchItem{Term: term, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return items, nil
}
