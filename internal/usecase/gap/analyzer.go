package gap

import (
	"fmt"
	"strings"

	domgap "github.com/kailas-cloud/serpintel/internal/domain/gap"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	domkw "github.com/kailas-cloud/serpintel/internal/domain/keyword"
	"github.com/kailas-cloud/serpintel/internal/domain/serp"
	"github.com/kailas-cloud/serpintel/internal/textmatch"
)

const (
	minResults      = 3
	topN            = 5
	titleWeight     = 0.6
	snippetWeight   = 0.4
	maxRelatedTerms = 5
)

var podTerms = textmatch.NewSet("print on demand", "pod", "graphic tee", "t-shirt", "shirt", "apparel", "clothing")

// rule describes when an intent's SERP is under-served and how to score the gap.
type rule struct {
	// qualifier must appear in a title for the result to count; nil counts any niche result.
	qualifier *textmatch.Set
	threshold float64
	oppBase   float64
	oppSpread float64
	compBase  float64
	compScale float64
	describe  func(kw string) string
	related   func(kw string) []string
	relevance float64
}

var rules = map[domintent.Type]rule{
	domintent.Transactional: {
		threshold: 0.4,
		oppBase:   0.7, oppSpread: 0.3,
		compBase: 0.3, compScale: 0.6,
		describe: func(kw string) string {
			return fmt.Sprintf("Limited POD graphic tee representation for '%s'", kw)
		},
		related:   suffixed("shirt", "t-shirt", "graphic tee", "apparel", "clothing"),
		relevance: 0.85,
	},
	domintent.Informational: {
		qualifier: textmatch.NewSet("how to", "guide", "tips", "best", "top"),
		threshold: 0.3,
		oppBase:   0.8, oppSpread: 0.15,
		compBase: 0.2, compScale: 0.3,
		describe: func(kw string) string {
			return fmt.Sprintf("Limited informational content about '%s' for POD graphic tees", kw)
		},
		related: func(kw string) []string {
			prefixes := []string{"how to", "guide to", "tips for", "best"}
			out := make([]string, len(prefixes))
			for i, p := range prefixes {
				out[i] = p + " " + kw + " shirt"
			}
			return out
		},
		relevance: 0.8,
	},
	domintent.Exploratory: {
		qualifier: textmatch.NewSet("ideas", "inspiration", "collection", "gallery", "designs"),
		threshold: 0.3,
		oppBase:   0.75, oppSpread: 0.2,
		compBase: 0.25, compScale: 0.4,
		describe: func(kw string) string {
			return fmt.Sprintf("Limited inspiration/collection content for '%s' POD graphic tees", kw)
		},
		related:   suffixed("ideas", "inspiration", "designs", "collection", "gallery"),
		relevance: 0.75,
	},
	// Navigational SERPs have no rule and never report a gap.
}

// Stats are the measurements behind a gap decision.
type Stats struct {
	Similarity      float64
	DomainDiversity float64
	Presence        float64
}

// Analyzer detects under-served niche content in a SERP relative to its intent.
type Analyzer struct{}

// NewAnalyzer creates a market gap analyzer.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

// Analyze inspects the top five results. SERPs with fewer than three results never have a gap.
func (a *Analyzer) Analyze(in domintent.Analysis, p serp.Payload) (domgap.MarketGap, Stats, error) {
	results := p.Results()
	if len(results) < minResults {
		return domgap.NotDetected(), Stats{}, nil
	}
	top := p.Top(topN)

	titles := make([]string, len(top))
	snippets := make([]string, len(top))
	domains := make(map[string]struct{}, len(top))
	for i, r := range top {
		titles[i] = strings.ToLower(r.Title())
		snippets[i] = strings.ToLower(r.Snippet())
		domains[r.Domain()] = struct{}{}
	}

	stats := Stats{
		Similarity:      titleWeight*avgJaccard(wordSets(titles)) + snippetWeight*avgJaccard(wordSets(snippets)),
		DomainDiversity: float64(len(domains)) / float64(len(top)),
	}

	r, ok := rules[in.Type()]
	if !ok {
		return domgap.NotDetected(), stats, nil
	}
	stats.Presence = presence(titles, snippets, r.qualifier)
	if stats.Presence >= r.threshold {
		return domgap.NotDetected(), stats, nil
	}

	kw := in.MainKeyword().Text()
	related := r.related(kw)
	if len(related) > maxRelatedTerms {
		related = related[:maxRelatedTerms]
	}
	keywords := make([]domkw.Keyword, 0, len(related))
	for _, text := range related {
		k, err := domkw.New(text, r.relevance, 1)
		if err != nil {
			return domgap.MarketGap{}, stats, fmt.Errorf("gap keyword %q: %w", text, err)
		}
		keywords = append(keywords, k)
	}

	g, err := domgap.NewDetected(
		r.describe(kw),
		min(r.oppBase+r.oppSpread*(1-stats.Presence), 1),
		min(r.compBase+r.compScale*stats.Similarity, 1),
		keywords,
	)
	if err != nil {
		return domgap.MarketGap{}, stats, fmt.Errorf("build market gap: %w", err)
	}
	return g, stats, nil
}

// presence is the share of results that mention a niche term and, when a qualifier
// is set, also carry a qualifier term in the title.
func presence(titles, snippets []string, qualifier *textmatch.Set) float64 {
	if len(titles) == 0 {
		return 0
	}
	hits := 0
	for i := range titles {
		if !podTerms.Contains(titles[i]) && !podTerms.Contains(snippets[i]) {
			continue
		}
		if qualifier != nil && !qualifier.Contains(titles[i]) {
			continue
		}
		hits++
	}
	return float64(hits) / float64(len(titles))
}

func wordSets(texts []string) []map[string]struct{} {
	out := make([]map[string]struct{}, len(texts))
	for i, t := range texts {
		set := make(map[string]struct{})
		for _, w := range strings.Fields(t) {
			set[w] = struct{}{}
		}
		out[i] = set
	}
	return out
}

// avgJaccard averages pairwise Jaccard similarity, skipping pairs with an empty set.
func avgJaccard(sets []map[string]struct{}) float64 {
	if len(sets) <= 1 {
		return 0
	}
	total, pairs := 0.0, 0
	for i := range sets {
		for j := i + 1; j < len(sets); j++ {
			a, b := sets[i], sets[j]
			if len(a) == 0 || len(b) == 0 {
				continue
			}
			inter := 0
			for w := range a {
				if _, ok := b[w]; ok {
					inter++
				}
			}
			union := len(a) + len(b) - inter
			total += float64(inter) / float64(union)
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}

func suffixed(suffixes ...string) func(kw string) []string {
	return func(kw string) []string {
		out := make([]string, len(suffixes))
		for i, s := range suffixes {
			out[i] = kw + " " + s
		}
		return out
	}
}
