// Package openai implements the recommendation refiner on an OpenAI-compatible chat API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/serpintel/internal/domain"
	domkw "github.com/kailas-cloud/serpintel/internal/domain/keyword"
	"github.com/kailas-cloud/serpintel/internal/domain/recommendation"
	"github.com/kailas-cloud/serpintel/internal/metrics"
	"github.com/kailas-cloud/serpintel/internal/usecase/refine"
)

const systemPrompt = `You are an SEO strategist for print-on-demand graphic tee sellers.
Given a search engine results page analysis, propose an improved list of recommendations.
Answer with a JSON object {"recommendations": [...]} where each item has:
tactic_type (one of the allowed tactics), description (10-1000 chars, starts with an action verb
such as create, optimize, add, update, include, target, improve, build, develop, implement or focus),
priority (1-10, 1 is most urgent), confidence (0-1), supporting_evidence (list of strings),
estimated_effort (1-5, optional).`

// Refiner asks a chat model for alternative recommendations.
type Refiner struct {
	client      *openai.Client
	model       string
	user        string
	temperature float32
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// Config holds the LLM provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	User        string
	Temperature float32
	Timeout     time.Duration
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

// NewRefiner creates an OpenAI-compatible refiner.
func NewRefiner(cfg *Config) *Refiner {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Refiner{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		user:        cfg.User,
		temperature: cfg.Temperature,
		metrics:     cfg.Metrics,
		logger:      logger,
	}
}

type promptKeyword struct {
	Text      string  `json:"text"`
	Relevance float64 `json:"relevance"`
}

type promptRecommendation struct {
	Tactic     string   `json:"tactic_type"`
	Desc       string   `json:"description"`
	Priority   int      `json:"priority"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"supporting_evidence,omitempty"`
	Effort     int      `json:"estimated_effort,omitempty"`
}

type promptBody struct {
	SearchTerm        string                 `json:"search_term"`
	IntentType        string                 `json:"intent_type"`
	IntentConfidence  float64                `json:"intent_confidence"`
	MainKeyword       string                 `json:"main_keyword"`
	SecondaryKeywords []promptKeyword        `json:"secondary_keywords"`
	MarketGap         *string                `json:"market_gap,omitempty"`
	Opportunity       float64                `json:"opportunity_score,omitempty"`
	SerpFeatures      []string               `json:"serp_features"`
	AllowedTactics    []string               `json:"allowed_tactics"`
	Current           []promptRecommendation `json:"current_recommendations"`
}

type suggestionList struct {
	Recommendations []promptRecommendation `json:"recommendations"`
}

// Suggest implements refine.LLM.
func (r *Refiner) Suggest(ctx context.Context, p refine.Prompt) ([]refine.Suggestion, error) {
	body, err := json.Marshal(buildPrompt(p))
	if err != nil {
		return nil, fmt.Errorf("encode prompt: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(body)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    r.temperature,
		User:           r.user,
	}

	start := time.Now()
	resp, err := r.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)
	if err != nil {
		r.metrics.ObserveLLM(r.model, metrics.OutcomeError, duration)
		return nil, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		r.metrics.ObserveLLM(r.model, metrics.OutcomeError, duration)
		return nil, fmt.Errorf("empty completion response: %w", domain.ErrRefinerFailed)
	}

	var parsed suggestionList
	if err = json.Unmarshal([]byte(stripFences(resp.Choices[0].Message.Content)), &parsed); err != nil {
		r.metrics.ObserveLLM(r.model, metrics.OutcomeError, duration)
		return nil, fmt.Errorf("decode completion: %v: %w", err, domain.ErrRefinerFailed)
	}
	r.metrics.ObserveLLM(r.model, metrics.OutcomeSuccess, duration)

	r.logger.Debug("LLM suggestions received",
		zap.String("search_term", p.SearchTerm),
		zap.Int("suggestions", len(parsed.Recommendations)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	out := make([]refine.Suggestion, len(parsed.Recommendations))
	for i, s := range parsed.Recommendations {
		out[i] = refine.Suggestion{
			Tactic:      s.Tactic,
			Description: s.Desc,
			Priority:    s.Priority,
			Confidence:  s.Confidence,
			Evidence:    s.Evidence,
			Effort:      s.Effort,
		}
	}
	return out, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (r *Refiner) HealthCheck(ctx context.Context) error {
	if _, err := r.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func buildPrompt(p refine.Prompt) promptBody {
	out := promptBody{
		SearchTerm:       p.SearchTerm,
		IntentType:       string(p.Intent.Type()),
		IntentConfidence: p.Intent.Confidence(),
		MainKeyword:      p.Intent.MainKeyword().Text(),
		SerpFeatures:     make([]string, len(p.Features)),
		Current:          make([]promptRecommendation, len(p.Current)),
	}
	for _, k := range p.Intent.SecondaryKeywords() {
		out.SecondaryKeywords = append(out.SecondaryKeywords, promptKeyword{Text: k.Text(), Relevance: k.Relevance()})
	}
	if out.SecondaryKeywords == nil {
		out.SecondaryKeywords = []promptKeyword{}
	}
	if p.MarketGap.Detected() {
		desc := p.MarketGap.Description()
		if related := domkw.Texts(p.MarketGap.RelatedKeywords()); len(related) > 0 {
			desc += " (related: " + strings.Join(related, ", ") + ")"
		}
		out.MarketGap = &desc
		out.Opportunity = p.MarketGap.OpportunityScore()
	}
	for i, f := range p.Features {
		out.SerpFeatures[i] = string(f.Type())
	}
	for _, t := range recommendation.AllTactics() {
		out.AllowedTactics = append(out.AllowedTactics, string(t))
	}
	for i, rec := range p.Current {
		out.Current[i] = promptRecommendation{
			Tactic:     string(rec.Tactic()),
			Desc:       rec.Description(),
			Priority:   rec.Priority(),
			Confidence: rec.Confidence(),
			Evidence:   rec.Evidence(),
			Effort:     rec.Effort(),
		}
	}
	return out
}

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrRefinerFailed for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrRefinerFailed

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("LLM API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("LLM API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("LLM API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("LLM request aborted: %w: %w", err, wrap)
	}
	return fmt.Errorf("LLM request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
