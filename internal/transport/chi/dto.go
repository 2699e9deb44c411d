package chi

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/serpintel/internal/domain"
	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	"github.com/kailas-cloud/serpintel/internal/domain/cacheentry"
	domfeedback "github.com/kailas-cloud/serpintel/internal/domain/feedback"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/repository/record"
	analysisuc "github.com/kailas-cloud/serpintel/internal/usecase/analysis"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeValidationFailed   ErrorCode = "validation_failed"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeNotFound           ErrorCode = "not_found"
	CodeRateLimited        ErrorCode = "rate_limited"
	CodeRetrievalFailed    ErrorCode = "retrieval_failed"
	CodeAnalysisFailed     ErrorCode = "analysis_failed"
	CodeRefinerUnavailable ErrorCode = "refiner_unavailable"
	CodeRefinerFailed      ErrorCode = "refiner_failed"
	CodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	SearchTerm     string `json:"search_term"`
	MaxResults     *int   `json:"max_results,omitempty"`
	IncludeRawData bool   `json:"include_raw_data,omitempty"`
}

// BatchAnalyzeRequest is the body of POST /analyze/batch.
type BatchAnalyzeRequest struct {
	SearchTerms []string `json:"search_terms"`
	MaxResults  *int     `json:"max_results,omitempty"`
}

// BatchItem is the outcome for one term of a batch.
type BatchItem struct {
	SearchTerm string           `json:"search_term"`
	Status     string           `json:"status"`
	Result     *record.Analysis `json:"result,omitempty"`
	Error      *ErrorResponse   `json:"error,omitempty"`
}

// BatchAnalyzeResponse is the body returned by POST /analyze/batch.
type BatchAnalyzeResponse struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// AnalysisListResponse is a page of stored analyses.
type AnalysisListResponse struct {
	Items  []record.Analysis `json:"items"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// RecommendationListResponse lists recommendations of one analysis.
type RecommendationListResponse struct {
	AnalysisID      string                  `json:"analysis_id"`
	Recommendations []record.Recommendation `json:"recommendations"`
}

// RefineResponse is the body returned by POST /analyses/{id}/refine.
type RefineResponse struct {
	AnalysisID      string     `json:"analysis_id"`
	SearchTerm      string     `json:"search_term"`
	Refined         bool       `json:"refined"`
	Dropped         int        `json:"dropped"`
	Recommendations record.Set `json:"recommendations"`
}

// PrioritizeRequest is the body of POST /prioritize.
type PrioritizeRequest struct {
	IntentType      string                  `json:"intent_type"`
	Recommendations []record.Recommendation `json:"recommendations"`
}

// PrioritizeResponse is the prioritizer output.
type PrioritizeResponse struct {
	IntentType      string                  `json:"intent_type"`
	Recommendations []record.Recommendation `json:"recommendations"`
}

// CacheEntry describes one cached artifact.
type CacheEntry struct {
	Kind       string `json:"kind"`
	Key        string `json:"key"`
	Cached     bool   `json:"cached"`
	TTLSeconds *int64 `json:"ttl_seconds,omitempty"`
}

// CacheStatusResponse is the body returned by GET /cache/{term}.
type CacheStatusResponse struct {
	SearchTerm string       `json:"search_term"`
	Cached     int          `json:"cached"`
	Entries    []CacheEntry `json:"entries"`
}

// CacheInvalidateResponse is the body returned by DELETE /cache/{term}.
type CacheInvalidateResponse struct {
	SearchTerm string `json:"search_term"`
	Deleted    int64  `json:"deleted"`
}

// FeedbackRequest is the body of POST /feedback.
type FeedbackRequest struct {
	AnalysisID string   `json:"analysis_id"`
	Rating     int      `json:"rating"`
	Comments   string   `json:"comments,omitempty"`
	Helpful    []string `json:"helpful_recommendations,omitempty"`
	Unhelpful  []string `json:"unhelpful_recommendations,omitempty"`
}

// FeedbackResponse is a stored feedback entry.
type FeedbackResponse struct {
	ID         string    `json:"id"`
	AnalysisID string    `json:"analysis_id"`
	Rating     int       `json:"rating"`
	Comments   string    `json:"comments,omitempty"`
	Helpful    []string  `json:"helpful_recommendations,omitempty"`
	Unhelpful  []string  `json:"unhelpful_recommendations,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
	Commit  string            `json:"commit,omitempty"`
}

func analysisToDTO(r domanalysis.Result) record.Analysis {
	return record.FromAnalysis(r)
}

func analysesToDTO(rs []domanalysis.Result) []record.Analysis {
	out := make([]record.Analysis, len(rs))
	for i, r := range rs {
		out[i] = analysisToDTO(r)
	}
	return out
}

func recommendationsToDTO(rs []recommendation.Recommendation) []record.Recommendation {
	out := make([]record.Recommendation, len(rs))
	for i, r := range rs {
		out[i] = record.FromRecommendation(r)
	}
	return out
}

// recommendationsFromDTO validates client-supplied recommendations through the domain constructor.
func recommendationsFromDTO(rs []record.Recommendation) ([]recommendation.Recommendation, error) {
	out := make([]recommendation.Recommendation, 0, len(rs))
	for i, r := range rs {
		effort := 0
		if r.Effort != nil {
			effort = *r.Effort
		}
		rec, err := recommendation.New(recommendation.Tactic(r.Tactic), r.Desc, r.Priority, r.Confidence, r.Evidence, effort)
		if err != nil {
			return nil, fmt.Errorf("%w: recommendations[%d]: %w", domain.ErrValidation, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func batchItemsToDTO(items []analysisuc.BatchItem) BatchAnalyzeResponse {
	resp := BatchAnalyzeResponse{Items: make([]BatchItem, len(items))}
	for i, it := range items {
		dto := BatchItem{SearchTerm: it.Term}
		if it.Err != nil {
			_, code := statusFor(it.Err)
			dto.Status = "error"
			dto.Error = &ErrorResponse{Code: code, Message: safeDomainMessage(it.Err)}
			resp.Failed++
		} else {
			a := analysisToDTO(it.Result)
			dto.Status = "ok"
			dto.Result = &a
			resp.Succeeded++
		}
		resp.Items[i] = dto
	}
	return resp
}

func cacheEntriesToDTO(term string, es []cacheentry.Entry) CacheStatusResponse {
	out := CacheStatusResponse{SearchTerm: term, Cached: cacheentry.CachedCount(es), Entries: make([]CacheEntry, len(es))}
	for i, e := range es {
		ce := CacheEntry{Kind: e.Kind, Key: e.Key, Cached: e.Cached}
		if e.Cached && e.TTL >= 0 {
			secs := int64(e.TTL / time.Second)
			ce.TTLSeconds = &secs
		}
		out.Entries[i] = ce
	}
	return out
}

func feedbackToDTO(f domfeedback.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:         f.ID(),
		AnalysisID: f.AnalysisID(),
		Rating:     f.Rating(),
		Comments:   f.Comments(),
		Helpful:    f.Helpful(),
		Unhelpful:  f.Unhelpful(),
		CreatedAt:  f.CreatedAt(),
	}
}
