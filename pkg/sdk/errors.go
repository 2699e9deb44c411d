package serpintel

import "github.com/kailas-cloud/serpintel/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrValidation        = domain.ErrValidation
	ErrRetrieval         = domain.ErrRetrieval
	ErrRateLimited       = domain.ErrRateLimited
	ErrAnalysisFailed    = domain.ErrAnalysisFailed
	ErrMissingStageInput = domain.ErrMissingStageInput
)
