package recommend

import (
	"fmt"
	"math"
	"strings"

	domgap "github.com/kailas-cloud/serpintel/internal/domain/gap"
	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	domkw "github.com/kailas-cloud/serpintel/internal/domain/keyword"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
)

const (
	maxListedKeywords     = 3
	confidenceHeadroom    = 0.1
	gapBoostOpportunity   = 0.7
	gapKeywordConfPenalty = 0.05
)

// draft is a recommendation before validation.
type draft struct {
	tactic     recommendation.Tactic
	desc       string
	priority   int
	confidence float64
	evidence   []string
}

type intentTemplate func(in domintent.Analysis, features []feature.Feature) []draft

var intentTemplates = map[domintent.Type]intentTemplate{
	domintent.Transactional: transactionalDrafts,
	domintent.Informational: informationalDrafts,
	domintent.Exploratory:   exploratoryDrafts,
	domintent.Navigational:  navigationalDrafts,
}

var gapTactics = map[domintent.Type]recommendation.Tactic{
	domintent.Transactional: recommendation.ProductPage,
	domintent.Informational: recommendation.Content,
	domintent.Exploratory:   recommendation.Collection,
}

// Generator turns an intent analysis and market gap into a recommendation set.
type Generator struct{}

// NewGenerator creates a recommendation generator.
func NewGenerator() *Generator { return &Generator{} }

// Generate builds intent-based recommendations plus gap-based ones when a gap was detected,
// caps each confidence at intent confidence + 0.1 and promotes gap items on strong opportunities.
func (g *Generator) Generate(
	in domintent.Analysis, mg domgap.MarketGap, features []feature.Feature,
) (recommendation.Set, error) {
	tmpl, ok := intentTemplates[in.Type()]
	if !ok {
		return recommendation.Set{}, fmt.Errorf("no recommendation template for intent %q", in.Type())
	}
	intentDrafts := tmpl(in, features)
	gapDrafts := gapDrafts(in, mg)

	boostGap := mg.Detected() && mg.OpportunityScore() > gapBoostOpportunity
	all := append(intentDrafts, gapDrafts...)
	recs := make([]recommendation.Recommendation, 0, len(all))
	for _, d := range all {
		d.confidence = min(d.confidence, in.Confidence()+confidenceHeadroom)
		if boostGap && strings.Contains(strings.ToLower(d.desc), "market gap") {
			d.priority = max(1, d.priority-1)
		}
		r, err := recommendation.New(d.tactic, d.desc, clampPriority(d.priority), clamp01(d.confidence), d.evidence, 0)
		if err != nil {
			return recommendation.Set{}, fmt.Errorf("build %s recommendation: %w", d.tactic, err)
		}
		recs = append(recs, r)
	}

	set, err := recommendation.NewSet(recs, len(intentDrafts) > 0, len(gapDrafts) > 0)
	if err != nil {
		return recommendation.Set{}, fmt.Errorf("build recommendation set: %w", err)
	}
	return set, nil
}

func transactionalDrafts(in domintent.Analysis, features []feature.Feature) []draft {
	kw := in.MainKeyword().Text()
	secondary := domkw.Texts(in.SecondaryKeywords())

	out := []draft{{
		tactic:     recommendation.ProductPage,
		desc:       fmt.Sprintf("Create optimized product pages targeting '%s' as the primary keyword", kw),
		priority:   1,
		confidence: 0.9,
		evidence: []string{
			intentEvidence(in),
			"Product pages perform best for transactional searches",
		},
	}}
	if len(secondary) > 0 {
		out = append(out, draft{
			tactic:     recommendation.KeywordTgt,
			desc:       fmt.Sprintf("Include secondary keywords (%s) in product descriptions", listFirst(secondary)),
			priority:   2,
			confidence: 0.85,
			evidence:   []string{fmt.Sprintf("Secondary keywords appear in %d SERP results", len(secondary))},
		})
	}
	out = append(out, draft{
		tactic:     recommendation.Marketplace,
		desc:       fmt.Sprintf("Optimize POD marketplace listings with '%s' in titles and tags", kw),
		priority:   3,
		confidence: 0.8,
		evidence:   []string{"Marketplace presence important for transactional searches"},
	})
	if feature.Has(features, feature.ShoppingAds) {
		out = append(out, draft{
			tactic:     recommendation.PPC,
			desc:       fmt.Sprintf("Set up Google Shopping campaigns targeting '%s'", kw),
			priority:   2,
			confidence: 0.75,
			evidence:   []string{"Shopping ads present in search results"},
		})
	}
	return out
}

func informationalDrafts(in domintent.Analysis, features []feature.Feature) []draft {
	kw := in.MainKeyword().Text()
	secondary := domkw.Texts(in.SecondaryKeywords())

	out := []draft{{
		tactic:     recommendation.Content,
		desc:       fmt.Sprintf("Create a comprehensive guide about '%s' with focus on POD graphic tees", kw),
		priority:   1,
		confidence: 0.9,
		evidence: []string{
			intentEvidence(in),
			"Content-rich pages perform best for informational searches",
		},
	}}
	if feature.Has(features, feature.FeaturedSnippet) {
		out = append(out, draft{
			tactic:     recommendation.Snippet,
			desc:       fmt.Sprintf("Create Q&A content for '%s' that targets the featured snippet", kw),
			priority:   2,
			confidence: 0.85,
			evidence:   []string{"Featured snippet present in search results"},
		})
	}
	if len(secondary) > 0 {
		out = append(out, draft{
			tactic:     recommendation.Content,
			desc:       "Create subtopic sections covering related themes: " + listFirst(secondary),
			priority:   3,
			confidence: 0.8,
			evidence:   []string{fmt.Sprintf("Related topics appear in %d SERP results", len(secondary))},
		})
	}
	return out
}

func exploratoryDrafts(in domintent.Analysis, features []feature.Feature) []draft {
	kw := in.MainKeyword().Text()

	out := []draft{{
		tactic:     recommendation.Collection,
		desc:       fmt.Sprintf("Create a visually rich collection page for '%s' graphic tees", kw),
		priority:   1,
		confidence: 0.9,
		evidence: []string{
			intentEvidence(in),
			"Collection pages perform best for exploratory searches",
		},
	}}
	if feature.Has(features, feature.ImagePack) {
		out = append(out, draft{
			tactic:     recommendation.Image,
			desc:       fmt.Sprintf("Optimize product images to appear in image results for '%s'", kw),
			priority:   2,
			confidence: 0.85,
			evidence:   []string{"Image pack present in search results"},
		})
	}
	out = append(out, draft{
		tactic:     recommendation.ProductPage,
		desc:       fmt.Sprintf("Create diverse design variations for '%s' to appeal to exploratory searchers", kw),
		priority:   3,
		confidence: 0.8,
		evidence:   []string{"Exploratory searchers are looking for variety and inspiration"},
	})
	return out
}

func navigationalDrafts(in domintent.Analysis, _ []feature.Feature) []draft {
	kw := in.MainKeyword().Text()
	return []draft{
		{
			tactic:     recommendation.TechnicalSEO,
			desc:       fmt.Sprintf("Ensure your brand appears for '%s' by building stronger brand association", kw),
			priority:   1,
			confidence: 0.85,
			evidence:   []string{intentEvidence(in)},
		},
		{
			tactic:     recommendation.LinkBuilding,
			desc:       fmt.Sprintf("Develop backlinks from POD and graphic tee communities related to '%s'", kw),
			priority:   2,
			confidence: 0.75,
			evidence:   []string{"Link strength important for navigational visibility"},
		},
	}
}

func gapDrafts(in domintent.Analysis, mg domgap.MarketGap) []draft {
	if !mg.Detected() {
		return nil
	}
	opp := mg.OpportunityScore()
	priority := max(1, int(math.Round(10*(1-opp))))

	tactic, ok := gapTactics[in.Type()]
	if !ok {
		tactic = recommendation.KeywordTgt
	}

	out := []draft{{
		tactic:     tactic,
		desc:       "Target the market gap: " + mg.Description(),
		priority:   priority,
		confidence: opp,
		evidence: []string{
			fmt.Sprintf("Market gap detected with %s opportunity score", percent(opp)),
			fmt.Sprintf("Competition level: %s", percent(mg.CompetitionLevel())),
		},
	}}
	if related := domkw.Texts(mg.RelatedKeywords()); len(related) > 0 {
		out = append(out, draft{
			tactic:     recommendation.KeywordTgt,
			desc:       "Target gap-specific keywords: " + listFirst(related),
			priority:   priority + 1,
			confidence: opp - gapKeywordConfPenalty,
			evidence:   []string{"Keywords generated based on identified market gap"},
		})
	}
	return out
}

func intentEvidence(in domintent.Analysis) string {
	return fmt.Sprintf("%s intent detected with %s confidence", in.Type().Title(), percent(in.Confidence()))
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

func listFirst(items []string) string {
	if len(items) > maxListedKeywords {
		items = items[:maxListedKeywords]
	}
	return strings.Join(items, ", ")
}

func clampPriority(p int) int {
	return min(max(p, recommendation.MinPriority), recommendation.MaxPriority)
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
