package intent

import (
	"fmt"
	"regexp"
	"strings"

	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
	"github.com/kailas-cloud/serpintel/internal/textmatch"
)

var (
	infoSites = textmatch.NewSet(
		"wikipedia", "quora", "medium", "blog", "reddit", ".edu", ".gov",
		"howto", "guide", "tutorial", "learn", "article", "knowledge",
	)
	infoTerms = textmatch.NewSet(
		"what is", "how to", "guide", "tutorial", "tips", "advice",
		"explained", "understanding", "meanings", "information about",
		"benefits of", "definition", "differences between", "ideas for",
	)
	podInfoTerms = textmatch.NewSet(
		"best graphic tees", "graphic tee style guide", "how to style graphic tees",
		"types of graphic tees", "graphic tee care", "t-shirt printing methods",
		"graphic tee trends", "t-shirt materials", "history of graphic tees",
	)
	questionRegex = regexp.MustCompile(`(?i)\b(what|how|why|when|where|which|who)\b.*\?`)
)

// informational scores learning signals: answer features, reference domains,
// how-to vocabulary and question phrasing.
func informational(in Input) Verdict {
	s := newScorer()

	if feature.Has(in.Features, feature.FeaturedSnippet) {
		s.add(0.2, "Featured snippet present")
	}
	if feature.Has(in.Features, feature.KnowledgePanel) {
		s.add(0.15, "Knowledge panel present")
	}
	if feature.Has(in.Features, feature.PeopleAlsoAsk) {
		s.add(0.15, "People also ask present")
	}

	top := in.Payload.Top(topN)
	refs := 0
	for _, r := range top {
		if infoSites.Contains(r.Domain()) {
			refs++
			s.note("Informational domain detected: " + r.Domain())
		}
		if sig := termsSignal("Informational terms in result: ", infoTerms, resultText(r)); sig != "" {
			s.note(sig)
		}
	}
	if refs > 0 {
		s.add(domainFactor(refs, len(top))*0.15, "")
	}

	text := textFeatures(in.Payload)
	if found := podInfoTerms.Matches(text); len(found) > 0 {
		s.add(bonusPerTerm(len(found), 0.03, 0.15), "POD informational terms: "+strings.Join(found, ", "))
	}
	if qs := questionRegex.FindAllString(text, -1); len(qs) > 0 {
		s.add(bonusPerTerm(len(qs), 0.05, 0.15),
			fmt.Sprintf("Question patterns detected: %d instances", len(qs)))
	}

	return s.verdict(domintent.Informational)
}
