package intent

import (
	"regexp"

	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
)

var basicBrandRegex = regexp.MustCompile(`official|brand|website`)

// basic classifies by counting one signal per feature and per matching result across
// all organic results; the intent with the most signals wins.
// Confidence is the winner's share of all signals (0.5 when there are none), capped at 0.95.
func basic(in Input) Verdict {
	signals := make(map[domintent.Type][]string, 4)

	if feature.Has(in.Features, feature.ShoppingAds) {
		signals[domintent.Transactional] = append(signals[domintent.Transactional], "Shopping ads present")
	}
	if feature.Has(in.Features, feature.FeaturedSnippet) {
		signals[domintent.Informational] = append(signals[domintent.Informational], "Featured snippet present")
	}
	if feature.Has(in.Features, feature.ImagePack) {
		signals[domintent.Exploratory] = append(signals[domintent.Exploratory], "Image pack present")
	}

	for _, r := range in.Payload.Results() {
		text := resultText(r)
		d := r.Domain()
		if selectBuyTerms.Contains(text) {
			signals[domintent.Transactional] = append(signals[domintent.Transactional], "Transaction terms in result: "+d)
		}
		if selectContentTerms.Contains(text) {
			signals[domintent.Informational] = append(signals[domintent.Informational], "Informational terms in result: "+d)
		}
		if selectBrowseTerms.Contains(text) {
			signals[domintent.Exploratory] = append(signals[domintent.Exploratory], "Exploratory terms in result: "+d)
		}
		if basicBrandRegex.MatchString(text) {
			signals[domintent.Navigational] = append(signals[domintent.Navigational], "Brand terms in result: "+d)
		}
	}

	tally := make(map[domintent.Type]int, len(signals))
	total := 0
	for t, s := range signals {
		tally[t] = len(s)
		total += len(s)
	}
	winner := argmax(tally)

	confidence := 0.5
	if total > 0 {
		confidence = float64(tally[winner]) / float64(total)
	}
	return Verdict{Type: winner, Confidence: min(confidence, maxConfidence), Signals: signals[winner]}
}
