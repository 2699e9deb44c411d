package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider names.
const (
	SerpProviderHTTP    = "http"
	SerpProviderFixture = "fixture"
	LLMProviderOpenAI   = "openai"
	LLMProviderNone     = "none"
)

// SerpFetchAttempts is the only accepted serp.retry.max_attempts, initial attempt included.
const SerpFetchAttempts = 3

// Config holds the serpintel configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	Database  DatabaseConfig  `yaml:"database"`
	Serp      SerpConfig      `yaml:"serp"`
	Intent    IntentConfig    `yaml:"intent"`
	LLM       LLMConfig       `yaml:"llm"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Batch     BatchConfig     `yaml:"batch"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// RateLimitConfig holds the per-client request budget. Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// CacheConfig holds Redis cache settings. No addrs disables the cache.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	KeyPrefix        string   `yaml:"key_prefix"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a cache is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// TTL returns the entry lifetime.
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLSec) * time.Second }

// DatabaseConfig holds Postgres settings. An empty DSN disables persistence.
type DatabaseConfig struct {
	DSN                string `yaml:"dsn"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec"`
	AutoMigrate        bool   `yaml:"auto_migrate"`
}

// Enabled reports whether persistence is configured.
func (c DatabaseConfig) Enabled() bool { return c.DSN != "" }

// RetryConfig holds SERP retry settings.
type RetryConfig struct {
	MaxAttempts    int     `yaml:"max_attempts"` // fixed at SerpFetchAttempts
	InitialDelayMs int     `yaml:"initial_delay_ms"`
	MaxDelayMs     int     `yaml:"max_delay_ms"`
	Multiplier     float64 `yaml:"multiplier"`
}

// SerpConfig holds SERP provider settings.
type SerpConfig struct {
	Provider   string      `yaml:"provider"` // http, fixture (default: fixture)
	BaseURL    string      `yaml:"base_url"`
	APIKey     string      `yaml:"api_key"`
	Engine     string      `yaml:"engine"`
	TimeoutSec int         `yaml:"timeout_sec"`
	MaxResults int         `yaml:"max_results"`
	Retry      RetryConfig `yaml:"retry"`
}

// IntentConfig holds classifier settings.
type IntentConfig struct {
	Classifier string   `yaml:"classifier"` // strategy, basic (default: strategy)
	NicheTerms []string `yaml:"niche_terms"`
}

// LLMConfig holds recommendation refiner settings.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai, none (default: none)
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	TimeoutSec  int     `yaml:"timeout_sec"`
}

// Enabled reports whether a refiner is configured.
func (c LLMConfig) Enabled() bool { return c.Provider == LLMProviderOpenAI }

// SchedulerConfig holds the watch-list refresh schedule. An empty spec disables it.
type SchedulerConfig struct {
	Spec       string   `yaml:"spec"`
	WatchTerms []string `yaml:"watch_terms"`
}

// Enabled reports whether scheduled refresh is configured.
func (c SchedulerConfig) Enabled() bool { return c.Spec != "" }

// BatchConfig holds batch analysis limits.
type BatchConfig struct {
	MaxTerms    int `yaml:"max_terms"`
	Concurrency int `yaml:"concurrency"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	// batch requests run several pipelines
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "serpintel:"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 86400
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetimeSec <= 0 {
		c.Database.ConnMaxLifetimeSec = 300
	}
	if c.Serp.Provider == "" {
		c.Serp.Provider = SerpProviderFixture
	}
	if c.Serp.TimeoutSec <= 0 {
		c.Serp.TimeoutSec = 15
	}
	if c.Serp.MaxResults <= 0 {
		c.Serp.MaxResults = 10
	}
	if c.Serp.Retry.MaxAttempts <= 0 {
		c.Serp.Retry.MaxAttempts = SerpFetchAttempts
	}
	if c.Serp.Retry.InitialDelayMs <= 0 {
		c.Serp.Retry.InitialDelayMs = 1000
	}
	if c.Serp.Retry.MaxDelayMs <= 0 {
		c.Serp.Retry.MaxDelayMs = 10000
	}
	if c.Serp.Retry.Multiplier <= 0 {
		c.Serp.Retry.Multiplier = 2
	}
	if c.Intent.Classifier == "" {
		c.Intent.Classifier = "strategy"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = LLMProviderNone
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 60
	}
	if c.Batch.MaxTerms <= 0 {
		c.Batch.MaxTerms = 20
	}
	if c.Batch.Concurrency <= 0 {
		c.Batch.Concurrency = 4
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values must be non-negative")
	}
	switch c.Serp.Provider {
	case SerpProviderFixture:
	case SerpProviderHTTP:
		if c.Serp.APIKey == "" {
			return fmt.Errorf("serp.api_key is required for the http provider")
		}
	default:
		return fmt.Errorf("serp.provider must be %q or %q, got %q", SerpProviderHTTP, SerpProviderFixture, c.Serp.Provider)
	}
	if c.Serp.Retry.MaxAttempts != SerpFetchAttempts {
		return fmt.Errorf("serp.retry.max_attempts must be %d, got %d", SerpFetchAttempts, c.Serp.Retry.MaxAttempts)
	}
	if c.Serp.MaxResults < 1 || c.Serp.MaxResults > 100 {
		return fmt.Errorf("serp.max_results must be between 1 and 100, got %d", c.Serp.MaxResults)
	}
	switch c.Intent.Classifier {
	case "strategy", "basic":
	default:
		return fmt.Errorf("intent.classifier must be \"strategy\" or \"basic\", got %q", c.Intent.Classifier)
	}
	switch c.LLM.Provider {
	case LLMProviderNone:
	case LLMProviderOpenAI:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required for the openai provider")
		}
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", LLMProviderOpenAI, LLMProviderNone, c.LLM.Provider)
	}
	if c.Scheduler.Enabled() && len(c.Scheduler.WatchTerms) == 0 {
		return fmt.Errorf("scheduler.watch_terms is required when scheduler.spec is set")
	}
	if c.Batch.Concurrency > c.Batch.MaxTerms {
		return fmt.Errorf("batch.concurrency (%d) must not exceed batch.max_terms (%d)", c.Batch.Concurrency, c.Batch.MaxTerms)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
