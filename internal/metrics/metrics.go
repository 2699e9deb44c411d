// Package metrics holds the Prometheus collectors for the service.
// Collectors are created and registered explicitly by New; a nil *Metrics records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "serpintel"

// Outcome and status label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	ResultHit      = "hit"
	ResultMiss     = "miss"
)

// Metrics groups all service collectors.
type Metrics struct {
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec

	pipelineRunsTotal     *prometheus.CounterVec
	pipelineStageDuration *prometheus.HistogramVec
	intentTotal           *prometheus.CounterVec
	marketGapsTotal       *prometheus.CounterVec

	cacheTotal *prometheus.CounterVec

	serpRequestsTotal   *prometheus.CounterVec
	serpRequestDuration *prometheus.HistogramVec

	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "path", "status"}),

		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),

		pipelineRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total analysis pipeline runs",
		}, []string{"outcome"}),

		pipelineStageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Analysis pipeline stage duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage", "outcome"}),

		intentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "intent_classifications_total",
			Help:      "Intent classifications by intent type",
		}, []string{"intent_type"}),

		marketGapsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "market_gaps_detected_total",
			Help:      "Market gaps detected by intent type",
		}, []string{"intent_type"}),

		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_total",
			Help:      "Cache hits and misses by entry kind",
		}, []string{"kind", "result"}),

		serpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "serp_requests_total",
			Help:      "Total SERP provider requests",
		}, []string{"provider", "status"}),

		serpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "serp_request_duration_seconds",
			Help:      "SERP provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),

		llmRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "llm_refine_requests_total",
			Help:      "Total LLM recommendation refinement requests",
		}, []string{"model", "status"}),

		llmRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "llm_refine_duration_seconds",
			Help:      "LLM recommendation refinement duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"model"}),
	}

	reg.MustRegister(
		m.httpRequestDuration, m.httpRequestsTotal,
		m.pipelineRunsTotal, m.pipelineStageDuration,
		m.intentTotal, m.marketGapsTotal,
		m.cacheTotal,
		m.serpRequestsTotal, m.serpRequestDuration,
		m.llmRequestsTotal, m.llmRequestDuration,
	)

	return m
}

// ObserveRun counts a finished pipeline run.
func (m *Metrics) ObserveRun(outcome string) {
	if m == nil {
		return
	}
	m.pipelineRunsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records a pipeline stage duration.
func (m *Metrics) ObserveStage(stage, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.pipelineStageDuration.WithLabelValues(stage, outcome).Observe(d.Seconds())
}

// ObserveIntent counts a classified intent and, if detected, a market gap.
func (m *Metrics) ObserveIntent(intentType string, gapDetected bool) {
	if m == nil {
		return
	}
	m.intentTotal.WithLabelValues(intentType).Inc()
	if gapDetected {
		m.marketGapsTotal.WithLabelValues(intentType).Inc()
	}
}

// ObserveCache counts a cache lookup for an entry kind ("serp", "analysis", "recommendations").
func (m *Metrics) ObserveCache(kind, result string) {
	if m == nil {
		return
	}
	m.cacheTotal.WithLabelValues(kind, result).Inc()
}

// ObserveSerp records a SERP provider request.
func (m *Metrics) ObserveSerp(provider, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.serpRequestsTotal.WithLabelValues(provider, status).Inc()
	m.serpRequestDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveLLM records an LLM refinement request.
func (m *Metrics) ObserveLLM(model, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.llmRequestsTotal.WithLabelValues(model, status).Inc()
	m.llmRequestDuration.WithLabelValues(model).Observe(d.Seconds())
}
