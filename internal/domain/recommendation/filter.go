package recommendation

// Filter narrows recommendation queries. Zero values mean "any".
type Filter struct {
	AnalysisID    string
	Tactic        Tactic
	MinConfidence float64
	MaxPriority   int
}

// Match reports whether r passes the tactic, confidence and priority bounds.
// AnalysisID is not checked: a Recommendation does not know its analysis.
func (f Filter) Match(r Recommendation) bool {
	if f.Tactic != "" && r.tactic != f.Tactic {
		return false
	}
	if f.MinConfidence > 0 && r.confidence < f.MinConfidence {
		return false
	}
	if f.MaxPriority > 0 && r.priority > f.MaxPriority {
		return false
	}
	return true
}

// Apply returns the recommendations matching f, keeping order.
func (f Filter) Apply(rs []Recommendation) []Recommendation {
	out := make([]Recommendation, 0, len(rs))
	for _, r := range rs {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
