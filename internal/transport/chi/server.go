package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/serpintel/internal/domain"
	domanalysis "github.com/kailas-cloud/serpintel/internal/domain/analysis"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/domain/searchterm"
	"github.com/kailas-cloud/serpintel/internal/logger"
	"github.com/kailas-cloud/serpintel/internal/repository/record"
	analysisuc "github.com/kailas-cloud/serpintel/internal/usecase/analysis"
	feedbackuc "github.com/kailas-cloud/serpintel/internal/usecase/feedback"
	healthuc "github.com/kailas-cloud/serpintel/internal/usecase/health"
	"github.com/kailas-cloud/serpintel/internal/usecase/recommend"
	"github.com/kailas-cloud/serpintel/internal/version"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// sentinelRoute maps a domain sentinel to an HTTP answer. Order matters: pipeline failures wrap
// their cause in ErrAnalysisFailed, so the cause must be matched first.
type sentinelRoute struct {
	sentinel error
	status   int
	code     ErrorCode
}

var sentinelRoutes = []sentinelRoute{
	{domain.ErrValidation, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited},
	{domain.ErrRetrieval, http.StatusBadGateway, CodeRetrievalFailed},
	{domain.ErrRefinerUnavailable, http.StatusServiceUnavailable, CodeRefinerUnavailable},
	{domain.ErrRefinerFailed, http.StatusBadGateway, CodeRefinerFailed},
	{domain.ErrAnalysisFailed, http.StatusInternalServerError, CodeAnalysisFailed},
}

// Server serves the /api/v1 HTTP API.
type Server struct {
	analyzer      Analyzer
	reports       Reports
	refiner       Refiner
	prioritizer   Prioritizer
	feedback      Feedback
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	analyzer Analyzer,
	reports Reports,
	refiner Refiner,
	prioritizer Prioritizer,
	feedback Feedback,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		analyzer:    analyzer,
		reports:     reports,
		refiner:     refiner,
		prioritizer: prioritizer,
		feedback:    feedback,
		health:      health,
		logger:      logger,
	}
	for _, r := range sentinelRoutes {
		s.errorHandlers = append(s.errorHandlers, sentinelHandler(r.sentinel, r.status, r.code))
	}
	return s
}

// Analyze handles POST /analyze.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), analysisuc.Request{
		Term:       req.SearchTerm,
		MaxResults: maxResultsOrDefault(req.MaxResults),
		IncludeRaw: req.IncludeRawData,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, analysisToDTO(res))
}

// AnalyzeBatch handles POST /analyze/batch.
func (s *Server) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchAnalyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	items, err := s.analyzer.AnalyzeBatch(r.Context(), req.SearchTerms, maxResultsOrDefault(req.MaxResults))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, batchItemsToDTO(items))
}

// GetAnalysis handles GET /analyses/{id}.
func (s *Server) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	res, err := s.reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysisToDTO(res))
}

// ListAnalyses handles GET /analyses.
func (s *Server) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	items, err := s.reports.Find(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, AnalysisListResponse{
		Items:  analysesToDTO(items),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
}

// ListRecommendations handles GET /analyses/{id}/recommendations.
func (s *Server) ListRecommendations(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	recs, err := s.reports.Recommendations(r.Context(), id, f)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RecommendationListResponse{
		AnalysisID:      id,
		Recommendations: recommendationsToDTO(recs),
	})
}

// RefineAnalysis handles POST /analyses/{id}/refine.
func (s *Server) RefineAnalysis(w http.ResponseWriter, r *http.Request) {
	out, err := s.refiner.Refine(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RefineResponse{
		AnalysisID:      out.AnalysisID,
		SearchTerm:      out.SearchTerm,
		Refined:         out.Refined,
		Dropped:         out.Dropped,
		Recommendations: record.FromSet(out.Set),
	})
}

// ListFeedback handles GET /analyses/{id}/feedback.
func (s *Server) ListFeedback(w http.ResponseWriter, r *http.Request) {
	items, err := s.feedback.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	out := make([]FeedbackResponse, len(items))
	for i, f := range items {
		out[i] = feedbackToDTO(f)
	}
	writeJSON(w, http.StatusOK, out)
}

// Prioritize handles POST /prioritize.
func (s *Server) Prioritize(w http.ResponseWriter, r *http.Request) {
	var req PrioritizeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	it, err := domintent.Parse(req.IntentType)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}
	if err = recommend.CheckRankable(len(req.Recommendations)); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}
	recs, err := recommendationsFromDTO(req.Recommendations)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	ranked := s.prioritizer.Prioritize(it, recs)
	writeJSON(w, http.StatusOK, PrioritizeResponse{
		IntentType:      string(it),
		Recommendations: recommendationsToDTO(ranked),
	})
}

// CacheStatus handles GET /cache/{term}.
func (s *Server) CacheStatus(w http.ResponseWriter, r *http.Request) {
	term := chi.URLParam(r, "term")
	entries, err := s.reports.CacheStatus(r.Context(), term)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cacheEntriesToDTO(term, entries))
}

// InvalidateCache handles DELETE /cache/{term}.
func (s *Server) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	term := chi.URLParam(r, "term")
	n, err := s.reports.InvalidateCache(r.Context(), term)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CacheInvalidateResponse{SearchTerm: term, Deleted: n})
}

// SubmitFeedback handles POST /feedback.
func (s *Server) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fb, err := s.feedback.Submit(r.Context(), feedbackuc.Input{
		AnalysisID: req.AnalysisID,
		Rating:     req.Rating,
		Comments:   req.Comments,
		Helpful:    req.Helpful,
		Unhelpful:  req.Unhelpful,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/analyses/"+fb.AnalysisID()+"/feedback")
	writeJSON(w, http.StatusCreated, feedbackToDTO(fb))
}

// HealthCheck handles GET /health. Degraded still answers 200 because analysis works without the cache.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
		Commit:  version.Commit,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func queryFromRequest(r *http.Request) (domanalysis.Query, error) {
	v := r.URL.Query()
	q := domanalysis.Query{SearchTerm: v.Get("search_term")}

	if s := v.Get("intent"); s != "" {
		it, err := domintent.Parse(s)
		if err != nil {
			return q, err
		}
		q.Intent = it
	}
	if s := v.Get("has_market_gap"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return q, fmt.Errorf("has_market_gap must be a boolean")
		}
		q.HasGap = &b
	}

	var err error
	if q.Limit, err = intParam(v.Get("limit"), "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = intParam(v.Get("offset"), "offset"); err != nil {
		return q, err
	}
	return q, nil
}

func filterFromRequest(r *http.Request) (recommendation.Filter, error) {
	v := r.URL.Query()
	f := recommendation.Filter{Tactic: recommendation.Tactic(v.Get("tactic"))}

	if s := v.Get("min_confidence"); s != "" {
		c, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return f, fmt.Errorf("min_confidence must be a number")
		}
		f.MinConfidence = c
	}
	p, err := intParam(v.Get("max_priority"), "max_priority")
	if err != nil {
		return f, err
	}
	f.MaxPriority = p
	return f, nil
}

func intParam(s, name string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

// maxResultsOrDefault applies the default only when the field is absent; explicit values are validated downstream.
func maxResultsOrDefault(p *int) int {
	if p == nil {
		return searchterm.DefaultMaxResults
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message. Validation errors carry user-facing detail;
// everything else collapses to its sentinel text.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrValidation) {
		return err.Error()
	}
	for _, r := range sentinelRoutes {
		if errors.Is(err, r.sentinel) {
			return r.sentinel.Error()
		}
	}
	return "internal error"
}

// statusFor resolves the HTTP status and code for an error without writing anything.
func statusFor(err error) (int, ErrorCode) {
	for _, r := range sentinelRoutes {
		if errors.Is(err, r.sentinel) {
			return r.status, r.code
		}
	}
	return http.StatusInternalServerError, CodeInternalError
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	if !log.Core().Enabled(zap.FatalLevel) {
		log = s.logger
	}
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
