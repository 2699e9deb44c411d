// Package fixture provides a deterministic offline SERP provider for demos and tests.
package fixture

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/serpintel/internal/domain/serp"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
)

// DefaultResults is the number of organic results returned when maxResults is not positive.
const DefaultResults = 10

var (
	shoppingWords = []string{"shirt", "tee"}
	snippetWords  = []string{"best", "how"}
	imageWords    = []string{"graphic", "design"}
)

// Provider returns synthetic results that depend only on the search term.
type Provider struct{}

// New creates a fixture provider.
func New() *Provider { return &Provider{} }

// Fetch returns maxResults organic results on example.com plus feature blocks
// chosen by words in the term.
func (p *Provider) Fetch(ctx context.Context, term string, maxResults int) (serp.Payload, error) {
	if err := ctx.Err(); err != nil {
		return serp.Payload{}, err
	}
	if maxResults <= 0 {
		maxResults = DefaultResults
	}

	results := make([]serp.Result, 0, maxResults)
	for i := 1; i <= maxResults; i++ {
		r, err := serp.NewResult(i,
			fmt.Sprintf("Result %d for %s", i, term),
			fmt.Sprintf("https://example.com/result%d", i),
			fmt.Sprintf("This is a snippet for result %d.", i),
		)
		if err != nil {
			return serp.Payload{}, err
		}
		results = append(results, r)
	}

	lower := strings.ToLower(term)
	var blocks []serp.Block
	if containsAny(lower, shoppingWords) {
		blocks = append(blocks, serp.Block{
			Name:     string(feature.ShoppingAds),
			Position: feature.Pos(1),
			Data: map[string]any{"products": []map[string]any{
				{"title": "Product 1", "price": "$19.99"},
				{"title": "Product 2", "price": "$24.99"},
			}},
		})
	}
	if containsAny(lower, snippetWords) {
		blocks = append(blocks, serp.Block{
			Name:     string(feature.FeaturedSnippet),
			Position: feature.Pos(0),
			Data:     map[string]any{"content": "This is a featured snippet for " + term},
		})
	}
	if containsAny(lower, imageWords) {
		blocks = append(blocks, serp.Block{
			Name:     string(feature.ImagePack),
			Position: feature.Pos(3),
			Data:     map[string]any{"images": []string{"image1.jpg", "image2.jpg", "image3.jpg"}},
		})
	}
	return serp.NewPayload(results, blocks), nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
