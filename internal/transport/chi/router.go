package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/serpintel/internal/metrics"
)

// RouterConfig holds the cross-cutting HTTP settings.
type RouterConfig struct {
	APIKeys   []string
	RateLimit RateLimitConfig
	Metrics   *metrics.Metrics
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// NewRouter mounts the server under /api/v1 with health and metrics at the root.
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(logger))
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	rl := cfg.RateLimit
	rl.KeyByToken = len(cfg.APIKeys) > 0
	r.Use(NewRateLimiter(rl).Middleware())
	r.Use(cfg.Metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.Analyze)
		r.Post("/analyze/batch", s.AnalyzeBatch)
		r.Post("/prioritize", s.Prioritize)
		r.Post("/feedback", s.SubmitFeedback)

		r.Get("/analyses", s.ListAnalyses)
		r.Route("/analyses/{id}", func(r chi.Router) {
			r.Get("/", s.GetAnalysis)
			r.Get("/recommendations", s.ListRecommendations)
			r.Post("/refine", s.RefineAnalysis)
			r.Get("/feedback", s.ListFeedback)
		})

		r.Get("/cache/{term}", s.CacheStatus)
		r.Delete("/cache/{term}", s.InvalidateCache)
	})
	return r
}
