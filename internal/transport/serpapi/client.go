// Package serpapi fetches search results from a SerpApi-compatible JSON endpoint
// through the official SerpApi Go client.
package serpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	search "github.com/serpapi/google-search-results-golang"
	"go.uber.org/zap"

	"github.com/kailas-cloud/serpintel/internal/domain"
	"github.com/kailas-cloud/serpintel/internal/domain/serp"
	"github.com/kailas-cloud/serpintel/internal/domain/serp/feature"
	"github.com/kailas-cloud/serpintel/internal/metrics"
)

const (
	// DefaultBaseURL is the public SerpApi search endpoint.
	DefaultBaseURL = "https://serpapi.com/search.json"
	// DefaultEngine is the search engine queried when none is configured.
	DefaultEngine = "google"
	// DefaultTimeout bounds one HTTP round trip.
	DefaultTimeout = 15 * time.Second

	providerName = "serpapi"
	maxErrorBody = 4 << 10
)

// Config holds the SERP provider settings.
type Config struct {
	BaseURL    string
	APIKey     string
	Engine     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// Client is a SERP provider backed by a SerpApi-style HTTP API.
type Client struct {
	transport http.RoundTripper
	timeout   time.Duration
	endpoint  *url.URL
	apiKey    string
	engine    string
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewClient creates a SerpApi client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("serpapi: api key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	endpoint, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("serpapi: invalid base url: %w", err)
	}
	if endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, fmt.Errorf("serpapi: base url %q must be absolute", base)
	}
	engine := cfg.Engine
	if engine == "" {
		engine = DefaultEngine
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var transport http.RoundTripper = http.DefaultTransport
	if hc := cfg.HTTPClient; hc != nil {
		if hc.Transport != nil {
			transport = hc.Transport
		}
		if hc.Timeout > 0 {
			timeout = hc.Timeout
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		transport: transport,
		timeout:   timeout,
		endpoint:  endpoint,
		apiKey:    cfg.APIKey,
		engine:    engine,
		metrics:   cfg.Metrics,
		logger:    logger,
	}, nil
}

// StatusError is a non-200 answer from the provider.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("serpapi: unexpected status %d: %s", e.Code, e.Body)
}

// Fetch implements the pipeline's SERP provider port.
func (c *Client) Fetch(ctx context.Context, term string, maxResults int) (serp.Payload, error) {
	start := time.Now()
	payload, status, err := c.fetch(ctx, term, maxResults)
	c.metrics.ObserveSerp(providerName, status, time.Since(start))
	if err != nil {
		return serp.Payload{}, err
	}
	c.logger.Debug("SERP fetched",
		zap.String("search_term", term),
		zap.Int("organic_results", len(payload.Results())),
		zap.Int("feature_blocks", len(payload.Blocks())),
	)
	return payload, nil
}

func (c *Client) fetch(ctx context.Context, term string, maxResults int) (serp.Payload, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	rt := &boundTransport{ctx: ctx, endpoint: c.endpoint, next: c.transport}
	defer rt.close()

	s := search.NewSearch(c.engine, map[string]string{"q": term, "num": strconv.Itoa(maxResults)}, c.apiKey)
	s.HttpSearch = &http.Client{Transport: rt}
	raw, err := s.GetJSON()

	if rt.status == 0 {
		return serp.Payload{}, metrics.OutcomeError, fmt.Errorf("serpapi request: %w", err)
	}
	status := strconv.Itoa(rt.status)
	if rt.status != http.StatusOK {
		sErr := &StatusError{Code: rt.status, Body: string(rt.errBody)}
		if rt.status == http.StatusTooManyRequests {
			return serp.Payload{}, status, fmt.Errorf("%w: %w", domain.ErrRateLimited, sErr)
		}
		return serp.Payload{}, status, sErr
	}
	if err != nil {
		return serp.Payload{}, status, fmt.Errorf("serpapi: %w", err)
	}

	body, err := decode(raw)
	if err != nil {
		return serp.Payload{}, status, fmt.Errorf("decode serpapi response: %w", err)
	}
	return c.toPayload(body, maxResults), status, nil
}

// boundTransport sends the search client's requests to the configured endpoint under the caller's context.
// It records the status code, which the search client does not surface, and keeps error bodies for StatusError.
type boundTransport struct {
	ctx      context.Context
	endpoint *url.URL
	next     http.RoundTripper

	status  int
	errBody []byte
	body    io.Closer
}

func (t *boundTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(t.ctx)
	out.URL.Scheme = t.endpoint.Scheme
	out.URL.Host = t.endpoint.Host
	if t.endpoint.Path != "" {
		out.URL.Path = t.endpoint.Path
	}
	out.Host = ""
	out.Header.Set("Accept", "application/json")

	resp, err := t.next.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	t.status = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		t.errBody, _ = io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(t.errBody))
	}
	t.body = resp.Body
	return resp, nil
}

// close releases the response body; the search client never closes it.
func (t *boundTransport) close() {
	if t.body != nil {
		_ = t.body.Close()
	}
}

// decode maps the generic search result onto the fields the pipeline reads.
func decode(raw search.SearchResult) (response, error) {
	var r response
	b, err := json.Marshal(raw)
	if err != nil {
		return r, err
	}
	err = json.Unmarshal(b, &r)
	return r, err
}

type organicResult struct {
	Position  int               `json:"position"`
	Title     string            `json:"title"`
	Link      string            `json:"link"`
	Snippet   string            `json:"snippet"`
	Sitelinks map[string][]link `json:"sitelinks"`
}

type link struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

type response struct {
	OrganicResults   []organicResult  `json:"organic_results"`
	ShoppingResults  []map[string]any `json:"shopping_results"`
	AnswerBox        map[string]any   `json:"answer_box"`
	InlineImages     []map[string]any `json:"inline_images"`
	KnowledgeGraph   map[string]any   `json:"knowledge_graph"`
	RelatedQuestions []struct {
		Question string `json:"question"`
	} `json:"related_questions"`
	RelatedSearches []struct {
		Query string `json:"query"`
	} `json:"related_searches"`
	LocalResults json.RawMessage  `json:"local_results"`
	InlineVideos []map[string]any `json:"inline_videos"`
	TopStories   []map[string]any `json:"top_stories"`
}

func (c *Client) toPayload(r response, maxResults int) serp.Payload {
	results := make([]serp.Result, 0, len(r.OrganicResults))
	var blocks []serp.Block
	for i, o := range r.OrganicResults {
		if maxResults > 0 && len(results) >= maxResults {
			break
		}
		pos := o.Position
		if pos <= 0 {
			pos = i + 1
		}
		res, err := serp.NewResult(pos, o.Title, o.Link, o.Snippet)
		if err != nil {
			c.logger.Debug("Skipping malformed organic result", zap.Int("position", pos), zap.Error(err))
			continue
		}
		results = append(results, res)
		if len(o.Sitelinks) > 0 && !hasBlock(blocks, feature.Sitelinks) {
			blocks = append(blocks, serp.Block{
				Name:     string(feature.Sitelinks),
				Position: &pos,
				Data:     map[string]any{"domain": res.Domain(), "groups": len(o.Sitelinks)},
			})
		}
	}

	if len(r.ShoppingResults) > 0 {
		blocks = append(blocks, serp.Block{
			Name: string(feature.ShoppingAds),
			Data: map[string]any{"products": len(r.ShoppingResults), "items": titles(r.ShoppingResults)},
		})
	}
	if content := answerContent(r.AnswerBox); content != "" {
		blocks = append(blocks, serp.Block{
			Name: string(feature.FeaturedSnippet),
			Data: map[string]any{"content": content, "source": r.AnswerBox["link"]},
		})
	}
	if len(r.InlineImages) > 0 {
		blocks = append(blocks, serp.Block{
			Name: string(feature.ImagePack),
			Data: map[string]any{"images": len(r.InlineImages)},
		})
	}
	if len(r.KnowledgeGraph) > 0 {
		blocks = append(blocks, serp.Block{
			Name: string(feature.KnowledgePanel),
			Data: map[string]any{"title": r.KnowledgeGraph["title"], "type": r.KnowledgeGraph["type"]},
		})
	}
	if len(r.RelatedQuestions) > 0 {
		qs := make([]string, len(r.RelatedQuestions))
		for i, q := range r.RelatedQuestions {
			qs[i] = q.Question
		}
		blocks = append(blocks, serp.Block{Name: string(feature.PeopleAlsoAsk), Data: map[string]any{"questions": qs}})
	}
	if len(r.RelatedSearches) > 0 {
		qs := make([]string, len(r.RelatedSearches))
		for i, q := range r.RelatedSearches {
			qs[i] = q.Query
		}
		blocks = append(blocks, serp.Block{Name: string(feature.RelatedSearches), Data: map[string]any{"queries": qs}})
	}
	if len(r.LocalResults) > 0 && string(r.LocalResults) != "null" {
		blocks = append(blocks, serp.Block{Name: string(feature.LocalPack), Data: map[string]any{"present": true}})
	}
	if len(r.InlineVideos) > 0 {
		blocks = append(blocks, serp.Block{
			Name: string(feature.VideoResults),
			Data: map[string]any{"videos": len(r.InlineVideos)},
		})
	}
	if len(r.TopStories) > 0 {
		blocks = append(blocks, serp.Block{
			Name: string(feature.TopStories),
			Data: map[string]any{"stories": len(r.TopStories), "items": titles(r.TopStories)},
		})
	}
	return serp.NewPayload(results, blocks)
}

func answerContent(box map[string]any) string {
	for _, k := range []string{"snippet", "answer", "result"} {
		if s, ok := box[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func titles(items []map[string]any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it["title"].(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func hasBlock(blocks []serp.Block, t feature.Type) bool {
	for _, b := range blocks {
		if b.Name == string(t) {
			return true
		}
	}
	return false
}
