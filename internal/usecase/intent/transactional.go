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
	ecommerceSites = textmatch.NewSet(
		"amazon", "etsy", "ebay", "walmart", "shopify",
		"redbubble", "teepublic", "teespring", "zazzle", "threadless",
	)
	podTransactionTerms = textmatch.NewSet(
		"shirt", "tee", "t-shirt", "t shirt", "tshirt", "apparel",
		"clothing", "merch", "merchandise", "gift", "buy", "shop",
		"purchase", "order", "add to cart", "checkout",
	)
	podProductTerms = textmatch.NewSet(
		"graphic tee", "custom shirt", "personalized tee",
		"funny shirt", "dad shirt", "mom shirt", "gift shirt",
	)
	priceRegex = regexp.MustCompile(`\$\d+(?:\.\d{2})?`)
)

// transactional scores buying signals: shopping features, e-commerce domains,
// purchase vocabulary, prices and POD product phrases.
func transactional(in Input) Verdict {
	s := newScorer()

	if feature.Has(in.Features, feature.ShoppingAds) {
		s.add(0.2, "Shopping ads present")
	}
	if feature.Has(in.Features, feature.ProductCarousel) {
		s.add(0.15, "Product carousel present")
	}

	top := in.Payload.Top(topN)
	shops := 0
	for _, r := range top {
		if ecommerceSites.Contains(r.Domain()) {
			shops++
			s.note("E-commerce domain detected: " + r.Domain())
		}
		if sig := termsSignal("Transaction terms in result: ", podTransactionTerms, resultText(r)); sig != "" {
			s.note(sig)
		}
	}
	if shops > 0 {
		s.add(domainFactor(shops, len(top))*0.15, "")
	}

	text := textFeatures(in.Payload)
	if prices := priceRegex.FindAllString(text, -1); len(prices) > 0 {
		s.add(bonusPerTerm(len(prices), 0.05, 0.15),
			fmt.Sprintf("Price mentions detected: %d instances", len(prices)))
	}
	if found := podProductTerms.Matches(text); len(found) > 0 {
		s.add(bonusPerTerm(len(found), 0.03, 0.15), "POD-specific terms: "+strings.Join(found, ", "))
	}

	return s.verdict(domintent.Transactional)
}
