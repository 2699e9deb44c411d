package intent

import (
	"fmt"
	"regexp"
	"strings"

	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
	"github.com/kailas-cloud/serpintel/internal/textmatch"
)

const diversityThreshold = 0.6

var (
	exploratoryTerms = textmatch.NewSet(
		"ideas", "inspiration", "collection", "gallery", "examples",
		"trends", "trending", "popular", "best", "top", "curated",
		"discover", "explore", "browse", "variety", "selection", "options",
	)
	listPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b\d+\s+best\b`),
		regexp.MustCompile(`(?i)\b\d+\s+top\b`),
		regexp.MustCompile(`(?i)\btop\s+\d+\b`),
		regexp.MustCompile(`(?i)\bbest\s+\d+\b`),
		regexp.MustCompile(`(?i)\bcollection\b`),
		regexp.MustCompile(`(?i)\bgallery\b`),
		regexp.MustCompile(`(?i)\btrending\b`),
	}
	podExploratoryTerms = textmatch.NewSet(
		"graphic tee ideas", "t-shirt collection", "shirt designs",
		"tee styles", "graphic tee trends", "trending designs",
		"popular graphic tees", "best graphic tees", "unique tees",
		"custom tee options", "tee inspiration",
	)
)

// exploratory scores browsing signals: visual features, collection pages,
// list-style titles and a diverse set of domains.
func exploratory(in Input) Verdict {
	s := newScorer()

	if feature.Has(in.Features, feature.ImagePack) {
		s.add(0.2, "Image pack present")
	}
	if feature.Has(in.Features, feature.VisualShopping) {
		s.add(0.15, "Visual shopping results present")
	}
	if feature.Has(in.Features, feature.CollectionCarousel) || feature.Has(in.Features, feature.PopularProducts) {
		s.add(0.15, "Collection-style features present")
	}

	top := in.Payload.Top(topN)
	for _, r := range top {
		if strings.Contains(r.URL(), "/collection") || strings.Contains(r.URL(), "/category") {
			s.note("Collection/category page detected: " + r.Domain())
		}
		if sig := termsSignal("Exploratory terms in result: ", exploratoryTerms, resultText(r)); sig != "" {
			s.note(sig)
		}
		if matchesAny(listPatterns, r.Title()) || matchesAny(listPatterns, r.Snippet()) {
			s.note("List/collection pattern in result: " + r.Domain())
		}
	}

	if found := podExploratoryTerms.Matches(textFeatures(in.Payload)); len(found) > 0 {
		s.add(bonusPerTerm(len(found), 0.03, 0.15), "POD exploratory terms: "+strings.Join(found, ", "))
	}

	if len(top) > 0 {
		unique := make(map[string]struct{}, len(top))
		for _, r := range top {
			unique[r.Domain()] = struct{}{}
		}
		if float64(len(unique))/float64(len(top)) > diversityThreshold {
			s.add(0.1, fmt.Sprintf("High domain diversity: %d unique domains", len(unique)))
		}
	}

	return s.verdict(domintent.Exploratory)
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
