package serpintel

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	serpAPIKey  string
	serpBaseURL string
	fixture     bool

	cacheAddrs    []string
	cachePassword string
	cachePrefix   string
	cacheTTL      time.Duration

	classifier string
	nicheTerms []string
	maxResults int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithSerpAPI fetches live result pages from SerpApi with the given key.
func WithSerpAPI(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.serpAPIKey = apiKey
	})
}

// WithSerpBaseURL overrides the SerpApi endpoint.
func WithSerpBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.serpBaseURL = url
	})
}

// WithFixtureProvider serves deterministic synthetic result pages instead of a live API.
func WithFixtureProvider() Option {
	return optionFunc(func(c *clientConfig) {
		c.fixture = true
	})
}

// WithRedisCache caches result pages and analyses in Redis.
func WithRedisCache(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
	})
}

// WithCacheTTL sets the cache entry lifetime. Default: 24h.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithClassifier selects the intent classifier: "strategy" (default) or "basic".
func WithClassifier(mode string) Option {
	return optionFunc(func(c *clientConfig) {
		c.classifier = mode
	})
}

// WithNicheTerms replaces the niche allow-list; a search term must contain one of them.
// Default: shirt, tee, t-shirt, graphic, print, design, pod, apparel.
func WithNicheTerms(terms ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.nicheTerms = append(c.nicheTerms, terms...)
	})
}

// WithMaxResults sets the number of organic results per analysis, 1-100. Default: 10.
func WithMaxResults(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxResults = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
