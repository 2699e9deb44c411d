package recommendation

import (
	"fmt"
	"sort"
	"strings"
)

// Tactic is the kind of SEO action a recommendation proposes.
type Tactic string

// Tactic constants.
const (
	ProductPage  Tactic = "product_page_optimization"
	Marketplace  Tactic = "marketplace_optimization"
	PPC          Tactic = "ppc_strategy"
	KeywordTgt   Tactic = "keyword_targeting"
	Image        Tactic = "image_optimization"
	Collection   Tactic = "collection_page_optimization"
	TechnicalSEO Tactic = "technical_seo"
	Content      Tactic = "content_creation"
	Snippet      Tactic = "snippet_optimization"
	LinkBuilding Tactic = "link_building"
)

// Description and scoring limits.
const (
	MinDescriptionLen = 10
	MaxDescriptionLen = 1000
	MinPriority       = 1
	MaxPriority       = 10
	MinEffort         = 1
	MaxEffort         = 5
)

var allTactics = []Tactic{
	ProductPage, Marketplace, PPC, KeywordTgt, Image,
	Collection, TechnicalSEO, Content, Snippet, LinkBuilding,
}

// actionVerbs must appear (case-insensitive substring) in every description.
var actionVerbs = []string{
	"create", "optimize", "add", "update", "include", "target",
	"improve", "build", "develop", "implement", "focus",
}

// IsValid checks if the tactic is one of the supported values.
func (t Tactic) IsValid() bool {
	for _, known := range allTactics {
		if t == known {
			return true
		}
	}
	return false
}

// AllTactics returns every tactic.
func AllTactics() []Tactic {
	out := make([]Tactic, len(allTactics))
	copy(out, allTactics)
	return out
}

// Recommendation is an actionable SEO suggestion (immutable value object).
type Recommendation struct {
	tactic     Tactic
	desc       string
	priority   int
	confidence float64
	evidence   []string
	effort     int
}

// New validates and creates a Recommendation.
// Description: 10-1000 chars containing an action verb. Priority: 1-10 (1 is highest).
// Confidence: [0,1]. Effort: 0 (unset) or 1-5.
func New(t Tactic, desc string, priority int, confidence float64, evidence []string, effort int) (Recommendation, error) {
	if !t.IsValid() {
		return Recommendation{}, fmt.Errorf("unknown tactic type %q", t)
	}
	if len(desc) < MinDescriptionLen || len(desc) > MaxDescriptionLen {
		return Recommendation{}, fmt.Errorf(
			"description length %d out of range [%d,%d]", len(desc), MinDescriptionLen, MaxDescriptionLen,
		)
	}
	if !hasActionVerb(desc) {
		return Recommendation{}, fmt.Errorf("description must contain an action verb (%s)", strings.Join(actionVerbs, ", "))
	}
	if priority < MinPriority || priority > MaxPriority {
		return Recommendation{}, fmt.Errorf("priority %d out of range [%d,%d]", priority, MinPriority, MaxPriority)
	}
	if confidence < 0 || confidence > 1 {
		return Recommendation{}, fmt.Errorf("confidence %v out of range [0,1]", confidence)
	}
	if effort != 0 && (effort < MinEffort || effort > MaxEffort) {
		return Recommendation{}, fmt.Errorf("estimated effort %d out of range [%d,%d]", effort, MinEffort, MaxEffort)
	}
	ev := make([]string, len(evidence))
	copy(ev, evidence)
	return Recommendation{tactic: t, desc: desc, priority: priority, confidence: confidence, evidence: ev, effort: effort}, nil
}

// Reconstruct creates a Recommendation without validation (storage hydration).
func Reconstruct(t Tactic, desc string, priority int, confidence float64, evidence []string, effort int) Recommendation {
	return Recommendation{tactic: t, desc: desc, priority: priority, confidence: confidence, evidence: evidence, effort: effort}
}

// Tactic returns the tactic type.
func (r Recommendation) Tactic() Tactic { return r.tactic }

// Description returns the action text.
func (r Recommendation) Description() string { return r.desc }

// Priority returns the priority (1 is highest).
func (r Recommendation) Priority() int { return r.priority }

// Confidence returns the confidence in [0,1].
func (r Recommendation) Confidence() float64 { return r.confidence }

// Evidence returns the supporting evidence lines.
func (r Recommendation) Evidence() []string { return r.evidence }

// Effort returns the estimated effort (1-5), or 0 when unset.
func (r Recommendation) Effort() int { return r.effort }

// WithPriority returns a copy with the priority clamped to [1,10].
func (r Recommendation) WithPriority(p int) Recommendation {
	out := r
	out.priority = clampInt(p, MinPriority, MaxPriority)
	return out
}

// WithConfidence returns a copy with the confidence clamped to [0,1].
func (r Recommendation) WithConfidence(c float64) Recommendation {
	out := r
	out.confidence = min(max(c, 0), 1)
	return out
}

// Set is an ordered collection of recommendations (immutable value object).
type Set struct {
	items          []Recommendation
	intentBased    bool
	marketGapBased bool
}

// NewSet validates and creates a Set sorted by priority ascending, then confidence descending.
func NewSet(items []Recommendation, intentBased, marketGapBased bool) (Set, error) {
	if len(items) == 0 {
		return Set{}, fmt.Errorf("recommendation set requires at least one recommendation")
	}
	sorted := make([]Recommendation, len(items))
	copy(sorted, items)
	SortByPriority(sorted)
	return Set{items: sorted, intentBased: intentBased, marketGapBased: marketGapBased}, nil
}

// ReconstructSet creates a Set without validation or sorting (storage hydration).
func ReconstructSet(items []Recommendation, intentBased, marketGapBased bool) Set {
	return Set{items: items, intentBased: intentBased, marketGapBased: marketGapBased}
}

// Items returns the recommendations in order.
func (s Set) Items() []Recommendation { return s.items }

// IntentBased reports whether the set includes intent-derived items.
func (s Set) IntentBased() bool { return s.intentBased }

// MarketGapBased reports whether the set includes gap-derived items.
func (s Set) MarketGapBased() bool { return s.marketGapBased }

// Len returns the number of recommendations.
func (s Set) Len() int { return len(s.items) }

// SortByPriority orders recommendations by priority ascending, then confidence descending. Stable.
func SortByPriority(rs []Recommendation) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].priority != rs[j].priority {
			return rs[i].priority < rs[j].priority
		}
		return rs[i].confidence > rs[j].confidence
	})
}

func hasActionVerb(desc string) bool {
	lower := strings.ToLower(desc)
	for _, v := range actionVerbs {
		if strings.Contains(lower, v) {
			return true
		}
	}
	return false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
