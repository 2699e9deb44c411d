package analysis

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/serpintel/internal/domain/gap"
	"github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/domain/serp"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
)

// Result is the complete output of one pipeline run (immutable value object).
type Result struct {
	id              string
	searchTerm      string
	timestamp       time.Time
	intent          intent.Analysis
	marketGap       gap.MarketGap
	features        []feature.Feature
	recommendations recommendation.Set
	rawData         *serp.Payload
	executionTime   time.Duration
}

// New validates and creates a Result. Features are ordered positioned-first.
// The recommendation set must be intent based, and gap based whenever a gap was detected.
func New(
	id, searchTerm string, ts time.Time,
	in intent.Analysis, mg gap.MarketGap, features []feature.Feature,
	recs recommendation.Set, raw *serp.Payload, executionTime time.Duration,
) (Result, error) {
	if id == "" {
		return Result{}, fmt.Errorf("analysis id is required")
	}
	if searchTerm == "" {
		return Result{}, fmt.Errorf("search term is required")
	}
	if recs.Len() == 0 {
		return Result{}, fmt.Errorf("recommendations are required")
	}
	if !recs.IntentBased() {
		return Result{}, fmt.Errorf("recommendations must be intent based")
	}
	if mg.Detected() && !recs.MarketGapBased() {
		return Result{}, fmt.Errorf("recommendations must be market gap based when a gap is detected")
	}
	if executionTime < 0 {
		return Result{}, fmt.Errorf("execution time must be non-negative")
	}

	fs := make([]feature.Feature, len(features))
	copy(fs, features)
	feature.Sort(fs)

	return Result{
		id: id, searchTerm: searchTerm, timestamp: ts,
		intent: in, marketGap: mg, features: fs,
		recommendations: recs, rawData: raw, executionTime: executionTime,
	}, nil
}

// Reconstruct creates a Result without validation (storage hydration).
func Reconstruct(
	id, searchTerm string, ts time.Time,
	in intent.Analysis, mg gap.MarketGap, features []feature.Feature,
	recs recommendation.Set, raw *serp.Payload, executionTime time.Duration,
) Result {
	return Result{
		id: id, searchTerm: searchTerm, timestamp: ts,
		intent: in, marketGap: mg, features: features,
		recommendations: recs, rawData: raw, executionTime: executionTime,
	}
}

// ID returns the analysis identifier (UUID).
func (r Result) ID() string { return r.id }

// SearchTerm returns the normalized search term.
func (r Result) SearchTerm() string { return r.searchTerm }

// Timestamp returns when the analysis was produced.
func (r Result) Timestamp() time.Time { return r.timestamp }

// Intent returns the intent analysis.
func (r Result) Intent() intent.Analysis { return r.intent }

// MarketGap returns the market gap.
func (r Result) MarketGap() gap.MarketGap { return r.marketGap }

// Features returns the SERP features, positioned first.
func (r Result) Features() []feature.Feature { return r.features }

// Recommendations returns the recommendation set.
func (r Result) Recommendations() recommendation.Set { return r.recommendations }

// RawData returns the raw SERP payload, or nil when not retained.
func (r Result) RawData() *serp.Payload { return r.rawData }

// ExecutionTime returns the pipeline wall time.
func (r Result) ExecutionTime() time.Duration { return r.executionTime }

// WithoutRawData returns a copy with the raw payload dropped.
func (r Result) WithoutRawData() Result {
	out := r
	out.rawData = nil
	return out
}
