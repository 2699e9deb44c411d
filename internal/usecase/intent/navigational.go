package intent

import (
	"regexp"
	"strings"

	domintent "github.com/kailas-cloud/serpintel/internal/domain/intent"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
	"github.com/kailas-cloud/serpintel/internal/textmatch"
)

const navTopN = 3

var (
	navigationalTerms = textmatch.NewSet(
		"official", "login", "sign in", "account", "website", "home page",
		"official site", "store", "shop", "portal", "dashboard", "my account",
	)
	podBrands = []string{
		"threadless", "teepublic", "redbubble", "teespring", "bonfire",
		"zazzle", "spreadshirt", "printful", "printify", "cafepress",
	}
	accountPaths  = textmatch.NewSet("/login", "/account", "/signin")
	officialRegex = regexp.MustCompile(`(?i)\b(official|authorized|website|homepage)\b`)
)

// navigational scores brand-lookup signals: sitelinks, a dominant domain,
// account pages and brand names shared by the query and the results.
func navigational(in Input) Verdict {
	s := newScorer()
	term := strings.ToLower(in.Term)

	if feature.Has(in.Features, feature.Sitelinks) {
		s.add(0.2, "Sitelinks present")
	}
	if hasOrganizationPanel(in.Features) {
		s.add(0.15, "Organization knowledge panel present")
	}

	top := in.Payload.Top(navTopN)
	if dom, n := dominantDomain(top); n >= 2 {
		s.add(0.2, "Dominant domain in top results: "+dom)
		if dom != "" && strings.Contains(term, dom) {
			s.add(0.2, "Search term contains domain name: "+dom)
		}
	}

	for _, r := range top {
		if accountPaths.Contains(r.URL()) {
			s.add(0.1, "Login/account page detected: "+r.Domain())
		}
		if sig := termsSignal("Navigational terms in result: ", navigationalTerms, resultText(r)); sig != "" {
			s.note(sig)
		}
	}

	for _, brand := range podBrands {
		if !strings.Contains(term, brand) {
			continue
		}
		if anyDomainContains(top, brand) {
			s.add(0.2, "Brand match between query and results: "+brand)
			break
		}
	}

	if officialRegex.MatchString(textFeatures(in.Payload)) {
		s.add(0.1, "Official website indicators detected")
	}

	return s.verdict(domintent.Navigational)
}

func hasOrganizationPanel(fs []feature.Feature) bool {
	for _, f := range fs {
		if f.Type() != feature.KnowledgePanel {
			continue
		}
		if t, _ := f.Data()["type"].(string); t == "organization" {
			return true
		}
	}
	return false
}
