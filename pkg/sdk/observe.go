package serpintel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Call names, used as the "call" label and log attribute.
const (
	callAnalyze      = "analyze_term"
	callAnalyzeBatch = "analyze_batch"
	callPrioritize   = "prioritize_recommendations"
)

// Call outcomes.
const (
	outcomeOK              = "ok"
	outcomeInvalid         = "invalid_input"
	outcomeRateLimited     = "rate_limited"
	outcomeRetrievalFailed = "retrieval_failed"
	outcomeCanceled        = "canceled"
	outcomeFailed          = "failed"
)

type sdkMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	analyses *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "serpintel",
			Subsystem: "sdk",
			Name:      "calls_total",
			Help:      "SDK calls by call name and outcome.",
		}, []string{"call", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "serpintel",
			Subsystem: "sdk",
			Name:      "call_duration_seconds",
			Help:      "SDK call duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 40},
		}, []string{"call"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "serpintel",
			Subsystem: "sdk",
			Name:      "analyses_total",
			Help:      "Completed analyses by detected intent and market gap.",
		}, []string{"intent", "market_gap"}),
	}
	if err := registerOrReuse(reg, &m.calls); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.analyses); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or takes over the one already registered under the same name.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("serpintel: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("serpintel: register metric: %w", err)
	}
	return nil
}

// call describes one SDK invocation. term is set for single-term calls, terms for batches.
type call struct {
	name  string
	term  string
	terms int
	start time.Time
}

func newCall(name string) call { return call{name: name, start: time.Now()} }

// observer logs SDK calls and feeds the optional prometheus collectors.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// finish records the outcome of c.
func (o *observer) finish(c call, err error) {
	if o == nil {
		return
	}
	dur := time.Since(c.start)
	outcome := callOutcome(err)

	if o.metrics != nil {
		o.metrics.calls.WithLabelValues(c.name, outcome).Inc()
		o.metrics.duration.WithLabelValues(c.name).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	attrs := []any{"call", c.name, "outcome", outcome, "duration", dur}
	if c.term != "" {
		attrs = append(attrs, "search_term", c.term)
	}
	if c.terms > 0 {
		attrs = append(attrs, "terms", c.terms)
	}
	if err != nil {
		o.logger.Warn("serpintel call failed", append(attrs, "error", err)...)
		return
	}
	o.logger.Debug("serpintel call finished", attrs...)
}

// analyzed counts a completed analysis by its intent and whether a gap was found.
func (o *observer) analyzed(a Analysis) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.analyses.WithLabelValues(a.Intent.Type, strconv.FormatBool(a.MarketGap.Detected)).Inc()
}

func callOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrValidation):
		return outcomeInvalid
	case errors.Is(err, ErrRateLimited):
		return outcomeRateLimited
	case errors.Is(err, ErrRetrieval):
		return outcomeRetrievalFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCanceled
	default:
		return outcomeFailed
	}
}
