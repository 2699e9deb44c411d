package intent

import (
	"strings"

	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/serp"
	"github.com/kailas-cloud/serpintel/internal/textmatch"
)

var (
	selectShops         = textmatch.NewSet("amazon", "etsy", "ebay", "walmart", "shopify")
	selectBuyTerms      = textmatch.NewSet("buy", "shop", "order", "purchase", "price")
	selectContentTerms  = textmatch.NewSet("how", "what", "why", "guide", "tutorial")
	selectBrowseTerms   = textmatch.NewSet("ideas", "inspiration", "examples", "collection")
	selectBrandTerms    = textmatch.NewSet("official", "site", "login", "brand", "website")
	selectIntentInOrder = domintent.All()
)

// Select picks the strategy to run by tallying cheap per-result cues over the top five results.
// Ties resolve in declaration order (transactional first); an empty tally selects transactional.
func Select(p serp.Payload) domintent.Type {
	tally := make(map[domintent.Type]int, len(selectIntentInOrder))
	for _, r := range p.Top(topN) {
		text := resultText(r)
		if selectShops.Contains(r.Domain()) {
			tally[domintent.Transactional]++
		}
		if selectBuyTerms.Contains(text) {
			tally[domintent.Transactional]++
		}
		if selectContentTerms.Contains(text) {
			tally[domintent.Informational]++
		}
		if selectBrowseTerms.Contains(text) {
			tally[domintent.Exploratory]++
		}
		if selectBrandTerms.Contains(text) {
			tally[domintent.Navigational]++
		}
	}
	return argmax(tally)
}

func argmax(tally map[domintent.Type]int) domintent.Type {
	best := selectIntentInOrder[0]
	for _, t := range selectIntentInOrder[1:] {
		if tally[t] > tally[best] {
			best = t
		}
	}
	return best
}

// dominantDomain returns the most frequent domain and its count; ties go to the first seen.
func dominantDomain(results []serp.Result) (string, int) {
	counts := make(map[string]int, len(results))
	var order []string
	for _, r := range results {
		d := r.Domain()
		if counts[d] == 0 {
			order = append(order, d)
		}
		counts[d]++
	}
	best, n := "", 0
	for _, d := range order {
		if counts[d] > n {
			best, n = d, counts[d]
		}
	}
	return best, n
}

func anyDomainContains(results []serp.Result, s string) bool {
	for _, r := range results {
		if strings.Contains(r.Domain(), s) {
			return true
		}
	}
	return false
}
