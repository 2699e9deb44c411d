package feature

import (
	"fmt"
	"sort"
)

// Type is a SERP feature kind.
type Type string

// Feature type constants.
const (
	ShoppingAds     Type = "shopping_ads"
	FeaturedSnippet Type = "featured_snippet"
	ImagePack       Type = "image_pack"
	KnowledgePanel  Type = "knowledge_panel"
	LocalPack       Type = "local_pack"
	VideoResults    Type = "video_results"
	PeopleAlsoAsk   Type = "people_also_ask"
	RelatedSearches Type = "related_searches"
	Reviews         Type = "reviews"
	TopStories      Type = "top_stories"
	// ProductCarousel and the types below are emitted by some providers in addition to the classic set.
	ProductCarousel    Type = "product_carousel"
	VisualShopping     Type = "visual_shopping"
	CollectionCarousel Type = "collection_carousel"
	PopularProducts    Type = "popular_products"
	Sitelinks          Type = "sitelinks"
)

var allTypes = []Type{
	ShoppingAds, FeaturedSnippet, ImagePack, KnowledgePanel, LocalPack, VideoResults,
	PeopleAlsoAsk, RelatedSearches, Reviews, TopStories,
	ProductCarousel, VisualShopping, CollectionCarousel, PopularProducts, Sitelinks,
}

// requiredKeys lists data keys that must be present for a feature type.
var requiredKeys = map[Type]string{
	FeaturedSnippet: "content",
	ShoppingAds:     "products",
	ImagePack:       "images",
}

// IsValid checks if the type is a known feature kind.
func (t Type) IsValid() bool {
	for _, known := range allTypes {
		if t == known {
			return true
		}
	}
	return false
}

// AllTypes returns every known feature type.
func AllTypes() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// Feature is a SERP feature observed on a results page (immutable value object).
type Feature struct {
	featureType Type
	position    *int
	data        map[string]any
}

// New validates and creates a Feature.
// Position, when set, must be >= 0. featured_snippet requires data.content,
// shopping_ads requires data.products, image_pack requires data.images.
func New(t Type, position *int, data map[string]any) (Feature, error) {
	if !t.IsValid() {
		return Feature{}, fmt.Errorf("unknown feature type %q", t)
	}
	if position != nil && *position < 0 {
		return Feature{}, fmt.Errorf("feature %s position must be non-negative", t)
	}
	if key, ok := requiredKeys[t]; ok {
		if _, present := data[key]; !present {
			return Feature{}, fmt.Errorf("feature %s requires data.%s", t, key)
		}
	}
	return Feature{featureType: t, position: clonePos(position), data: cloneData(data)}, nil
}

// Reconstruct creates a Feature without validation (storage hydration).
func Reconstruct(t Type, position *int, data map[string]any) Feature {
	return Feature{featureType: t, position: position, data: data}
}

// Type returns the feature kind.
func (f Feature) Type() Type { return f.featureType }

// Position returns the feature position, or nil when unpositioned.
func (f Feature) Position() *int { return clonePos(f.position) }

// Data returns the feature payload.
func (f Feature) Data() map[string]any { return f.data }

// Sort orders features by position ascending, unpositioned ones last. Stable.
func Sort(fs []Feature) {
	sort.SliceStable(fs, func(i, j int) bool {
		pi, pj := fs[i].position, fs[j].position
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return *pi < *pj
		}
	})
}

// Has reports whether a feature of type t is present.
func Has(fs []Feature, t Type) bool {
	_, ok := Find(fs, t)
	return ok
}

// Find returns the first feature of type t.
func Find(fs []Feature, t Type) (Feature, bool) {
	for _, f := range fs {
		if f.featureType == t {
			return f, true
		}
	}
	return Feature{}, false
}

// Pos is a helper for building positioned features.
func Pos(p int) *int { return &p }

func clonePos(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneData(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
