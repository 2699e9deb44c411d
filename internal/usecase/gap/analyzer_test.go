package gap

import (
	"math"
	"testing"

	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	domkw "github.com/kailas-cloud/serpintel/internal/domain/keyword"
	"github.com/kailas-cloud/serpintel/internal/domain/serp"
)

func analysisFor(t domintent.Type) domintent.Analysis {
	return domintent.Reconstruct(t, 0.7, domkw.Reconstruct("cat shirt", 1, 1), nil, nil)
}

func payloadOf(titles ...string) serp.Payload {
	rs := make([]serp.Result, len(titles))
	for i, title := range titles {
		rs[i] = serp.ReconstructResult(i+1, title, "https://example.com", "example.com", "")
	}
	return serp.NewPayload(rs, nil)
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAnalyze_TooFewResults(t *testing.T) {
	g, _, err := NewAnalyzer().Analyze(analysisFor(domintent.Transactional), payloadOf("a", "b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Detected() {
		t.Error("gap detected with fewer than three results")
	}
}

func TestAnalyze_TransactionalGap(t *testing.T) {
	g, stats, err := NewAnalyzer().Analyze(
		analysisFor(domintent.Transactional),
		payloadOf("alpha", "beta", "gamma", "delta", "epsilon"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !g.Detected() {
		t.Fatal("expected gap")
	}
	if g.Description() != "Limited POD graphic tee representation for 'cat shirt'" {
		t.Errorf("Description() = %q", g.Description())
	}
	if !near(g.OpportunityScore(), 1.0) {
		t.Errorf("OpportunityScore() = %v, want 1.0", g.OpportunityScore())
	}
	if !near(g.CompetitionLevel(), 0.3) {
		t.Errorf("CompetitionLevel() = %v, want 0.3", g.CompetitionLevel())
	}
	if stats.Presence != 0 || stats.DomainDiversity != 0.2 {
		t.Errorf("stats = %+v", stats)
	}
	rel := g.RelatedKeywords()
	if len(rel) != 5 || rel[0].Text() != "cat shirt shirt" || rel[2].Text() != "cat shirt graphic tee" {
		t.Errorf("related = %v", domkw.Texts(rel))
	}
	for _, k := range rel {
		if k.Relevance() != 0.85 || k.Frequency() != 1 {
			t.Errorf("keyword %q relevance=%v freq=%d", k.Text(), k.Relevance(), k.Frequency())
		}
	}
}

func TestAnalyze_TransactionalThreshold(t *testing.T) {
	g, stats, _ := NewAnalyzer().Analyze(
		analysisFor(domintent.Transactional),
		payloadOf("cat shirt", "dog shirt", "mug", "poster", "sticker"),
	)
	if !near(stats.Presence, 0.4) {
		t.Errorf("presence = %v, want 0.4", stats.Presence)
	}
	if g.Detected() {
		t.Error("presence at threshold must not report a gap")
	}
}

func TestAnalyze_InformationalGap(t *testing.T) {
	g, stats, _ := NewAnalyzer().Analyze(
		analysisFor(domintent.Informational),
		payloadOf("how to fold", "how to fold", "how to fold"),
	)
	if !g.Detected() {
		t.Fatal("expected gap")
	}
	if !near(stats.Similarity, 0.6) {
		t.Errorf("similarity = %v, want 0.6", stats.Similarity)
	}
	if !near(g.OpportunityScore(), 0.95) || !near(g.CompetitionLevel(), 0.38) {
		t.Errorf("opportunity=%v competition=%v", g.OpportunityScore(), g.CompetitionLevel())
	}
	want := []string{"how to cat shirt shirt", "guide to cat shirt shirt", "tips for cat shirt shirt", "best cat shirt shirt"}
	got := domkw.Texts(g.RelatedKeywords())
	if len(got) != len(want) {
		t.Fatalf("related = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("related[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAnalyze_InformationalCovered(t *testing.T) {
	g, _, _ := NewAnalyzer().Analyze(
		analysisFor(domintent.Informational),
		payloadOf("How to style a graphic tee", "Best shirt guide", "cats"),
	)
	if g.Detected() {
		t.Error("unexpected gap")
	}
}

func TestAnalyze_ExploratoryCovered(t *testing.T) {
	g, stats, _ := NewAnalyzer().Analyze(
		analysisFor(domintent.Exploratory),
		payloadOf("shirt ideas", "shirt ideas gallery", "cats"),
	)
	if g.Detected() {
		t.Error("unexpected gap")
	}
	if !near(stats.Presence, 2.0/3.0) {
		t.Errorf("presence = %v", stats.Presence)
	}
}

func TestAnalyze_ExploratoryGap(t *testing.T) {
	g, _, _ := NewAnalyzer().Analyze(
		analysisFor(domintent.Exploratory),
		payloadOf("cats", "dogs", "birds"),
	)
	if !g.Detected() {
		t.Fatal("expected gap")
	}
	if g.Description() != "Limited inspiration/collection content for 'cat shirt' POD graphic tees" {
		t.Errorf("Description() = %q", g.Description())
	}
	if !near(g.OpportunityScore(), 0.95) || !near(g.CompetitionLevel(), 0.25) {
		t.Errorf("opportunity=%v competition=%v", g.OpportunityScore(), g.CompetitionLevel())
	}
}

func TestAnalyze_NavigationalNeverDetects(t *testing.T) {
	g, _, _ := NewAnalyzer().Analyze(
		analysisFor(domintent.Navigational),
		payloadOf("a", "b", "c", "d", "e"),
	)
	if g.Detected() {
		t.Error("navigational SERP reported a gap")
	}
}

func TestAvgJaccard(t *testing.T) {
	sets := wordSets([]string{"a b", "b c", ""})
	if got := avgJaccard(sets); !near(got, 1.0/3.0) {
		t.Errorf("avgJaccard() = %v, want 1/3", got)
	}
	if got := avgJaccard(wordSets([]string{"only"})); got != 0 {
		t.Errorf("single set avgJaccard() = %v, want 0", got)
	}
}
