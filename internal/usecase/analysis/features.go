package analysis

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/serpintel/internal/domain/serp"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
)

// aboveOrganic lists features rendered before the first organic result.
// Without an explicit position they sit at 0.
var aboveOrganic = map[feature.Type]bool{
	feature.ShoppingAds:     true,
	feature.FeaturedSnippet: true,
	feature.KnowledgePanel:  true,
}

// extractFeatures normalizes provider blocks into features.
// Unknown or malformed blocks are skipped; the first block of each type wins.
func extractFeatures(blocks []serp.Block, logger *zap.Logger) []feature.Feature {
	seen := make(map[feature.Type]bool, len(blocks))
	out := make([]feature.Feature, 0, len(blocks))
	for _, b := range blocks {
		t := feature.Type(b.Name)
		if !t.IsValid() {
			logger.Debug("Skipping unknown SERP feature", zap.String("feature", b.Name))
			continue
		}
		if seen[t] {
			continue
		}

		pos := b.Position
		switch {
		case t == feature.FeaturedSnippet:
			pos = feature.Pos(0)
		case pos == nil && aboveOrganic[t]:
			pos = feature.Pos(0)
		}

		f, err := feature.New(t, pos, b.Data)
		if err != nil {
			logger.Warn("Skipping malformed SERP feature", zap.String("feature", b.Name), zap.Error(err))
			continue
		}
		seen[t] = true
		out = append(out, f)
	}
	feature.Sort(out)
	return out
}
