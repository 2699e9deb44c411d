package serp

import (
	"fmt"
	"net/url"
	"strings"
)

// Result is a single organic search result (immutable value object).
type Result struct {
	position int
	title    string
	url      string
	domain   string
	snippet  string
}

// NewResult validates and creates a Result. The domain is derived from the URL host.
func NewResult(position int, title, rawURL, snippet string) (Result, error) {
	if position < 1 {
		return Result{}, fmt.Errorf("result position must be >= 1, got %d", position)
	}
	if rawURL == "" {
		return Result{}, fmt.Errorf("result url is required")
	}
	return Result{
		position: position,
		title:    title,
		url:      rawURL,
		domain:   DomainOf(rawURL),
		snippet:  snippet,
	}, nil
}

// ReconstructResult creates a Result without validation (storage hydration).
func ReconstructResult(position int, title, rawURL, domain, snippet string) Result {
	return Result{position: position, title: title, url: rawURL, domain: domain, snippet: snippet}
}

// Position returns the 1-based rank.
func (r Result) Position() int { return r.position }

// Title returns the result title.
func (r Result) Title() string { return r.title }

// URL returns the result URL.
func (r Result) URL() string { return r.url }

// Domain returns the lower-cased host without a www. prefix.
func (r Result) Domain() string { return r.domain }

// Snippet returns the result snippet.
func (r Result) Snippet() string { return r.snippet }

// DomainOf extracts the lower-cased host from a URL, dropping a leading "www.".
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	host := ""
	if err == nil {
		host = u.Hostname()
	}
	if host == "" {
		host = rawURL
	}
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// Block is a provider-reported SERP feature before normalization.
// Name is a feature type identifier; Data keeps the provider's shape.
type Block struct {
	Name     string
	Position *int
	Data     map[string]any
}

// Payload is the raw SERP response for one search term (immutable value object).
type Payload struct {
	results []Result
	blocks  []Block
}

// NewPayload creates a Payload. Results are kept in the given order.
func NewPayload(results []Result, blocks []Block) Payload {
	rs := make([]Result, len(results))
	copy(rs, results)
	bs := make([]Block, len(blocks))
	copy(bs, blocks)
	return Payload{results: rs, blocks: bs}
}

// Results returns the organic results.
func (p Payload) Results() []Result { return p.results }

// Blocks returns the raw feature blocks.
func (p Payload) Blocks() []Block { return p.blocks }

// Top returns at most n leading results.
func (p Payload) Top(n int) []Result {
	if n > len(p.results) {
		n = len(p.results)
	}
	return p.results[:n]
}

// IsEmpty reports whether the payload carries no organic results.
func (p Payload) IsEmpty() bool { return len(p.results) == 0 }
