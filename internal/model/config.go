package model

import (
	"fmt"
	"math"
	"time"
)

// Config holds the complete verification pipeline configuration. It is
// validated once at startup and passed by value after that; nothing reads
// configuration state during a check.
type Config struct {
	Weights     WeightsConfig     `yaml:"weights" json:"weights" mapstructure:"weights"`
	Risk        RiskConfig        `yaml:"risk" json:"risk" mapstructure:"risk"`
	Consistency ConsistencyConfig `yaml:"consistency" json:"consistency" mapstructure:"consistency"`
	LLM         LLMConfig         `yaml:"llm" json:"llm" mapstructure:"llm"`
	Embeddings  EmbeddingsConfig  `yaml:"embeddings" json:"embeddings" mapstructure:"embeddings"`
	Cache       CacheConfig       `yaml:"cache" json:"cache" mapstructure:"cache"`
	Store       StoreConfig       `yaml:"store" json:"store" mapstructure:"store"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency" mapstructure:"concurrency"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" json:"rate_limit" mapstructure:"rate_limit"`
	Output      OutputConfig      `yaml:"output" json:"output" mapstructure:"output"`
}

// WeightsConfig sets the relative contribution of each verification signal.
// The three weights must sum to 1.0.
type WeightsConfig struct {
	Citation    float64 `yaml:"citation" json:"citation" mapstructure:"citation"`
	NLI         float64 `yaml:"nli" json:"nli" mapstructure:"nli"`
	Consistency float64 `yaml:"consistency" json:"consistency" mapstructure:"consistency"`
}

// For returns the weight assigned to the given signal kind
func (w WeightsConfig) For(kind SignalKind) float64 {
	switch kind {
	case SignalCitation:
		return w.Citation
	case SignalNLI:
		return w.NLI
	case SignalConsistency:
		return w.Consistency
	default:
		return 0
	}
}

// RiskConfig sets the tier cut points on the final score
type RiskConfig struct {
	Medium float64 `yaml:"medium" json:"medium" mapstructure:"medium"` // Scores >= Medium are MEDIUM
	High   float64 `yaml:"high" json:"high" mapstructure:"high"`       // Scores >= High are HIGH
}

// ConsistencyConfig controls the regeneration-based consistency check
type ConsistencyConfig struct {
	Samples     int     `yaml:"samples" json:"samples" mapstructure:"samples"`                // Number of regenerated answers to compare
	Temperature float64 `yaml:"temperature" json:"temperature" mapstructure:"temperature"`    // Sampling temperature for regeneration
	MinLength   int     `yaml:"min_length" json:"min_length" mapstructure:"min_length"`       // Variants shorter than this are excluded
	MaxParallel int     `yaml:"max_parallel" json:"max_parallel" mapstructure:"max_parallel"` // Concurrent regeneration calls
}

// LLMConfig selects and configures the text-inference provider
type LLMConfig struct {
	Provider  string `yaml:"provider" json:"provider" mapstructure:"provider"` // openai, anthropic, or ollama
	Model     string `yaml:"model" json:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" json:"-" mapstructure:"-"` // From environment only, never serialized
	BaseURL   string `yaml:"base_url,omitempty" json:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" json:"timeout" mapstructure:"timeout"` // Seconds per call
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens" mapstructure:"max_tokens"`
}

// EmbeddingsConfig controls embedding-based similarity scoring. When disabled
// or unsupported by the provider, similarity falls back to lexical overlap.
type EmbeddingsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Model   string `yaml:"model" json:"model" mapstructure:"model"`
}

// CacheConfig controls verdict caching
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Backend string        `yaml:"backend" json:"backend" mapstructure:"backend"` // memory, disk, layered, or redis
	Dir     string        `yaml:"dir,omitempty" json:"dir,omitempty" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" json:"ttl" mapstructure:"ttl"`
	Redis   RedisConfig   `yaml:"redis" json:"redis" mapstructure:"redis"`
}

// RedisConfig configures the redis cache backend
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr" mapstructure:"addr"`
	Password string `yaml:"-" json:"-" mapstructure:"-"`
	DB       int    `yaml:"db" json:"db" mapstructure:"db"`
}

// StoreConfig controls the persistent verdict archive
type StoreConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	DSN     string `yaml:"-" json:"-" mapstructure:"-"` // From environment only, never serialized
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	Workers  int `yaml:"workers" json:"workers" mapstructure:"workers"`       // Batch worker count
	MaxCalls int `yaml:"max_calls" json:"max_calls" mapstructure:"max_calls"` // Concurrent judge calls per signal
}

// RateLimitConfig bounds the request rate against each provider
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst" mapstructure:"burst"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer" mapstructure:"include_footer"`
	Explain       bool `yaml:"explain" json:"explain" mapstructure:"explain"` // Generate an LLM explanation of each verdict
}

// DefaultConfig returns the baseline configuration
func DefaultConfig() *Config {
	return &Config{
		Weights: WeightsConfig{
			Citation:    0.4,
			NLI:         0.4,
			Consistency: 0.2,
		},
		Risk: RiskConfig{
			Medium: 0.3,
			High:   0.6,
		},
		Consistency: ConsistencyConfig{
			Samples:     2,
			Temperature: 0.3,
			MinLength:   10,
			MaxParallel: 2,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "",
			Timeout:   60,
			MaxTokens: 1024,
		},
		Embeddings: EmbeddingsConfig{
			Enabled: true,
			Model:   "text-embedding-3-small",
		},
		Cache: CacheConfig{
			Enabled: true,
			Backend: "memory",
			TTL:     24 * time.Hour,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Store: StoreConfig{
			Enabled: false,
		},
		Concurrency: ConcurrencyConfig{
			Workers:  4,
			MaxCalls: 4,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
			Explain:       false,
		},
	}
}

// weightTolerance absorbs float drift when checking that weights sum to 1.0
const weightTolerance = 1e-9

// Validate checks the configuration once, before any verification runs.
// A failure here is fatal: commands must refuse to start.
func (c *Config) Validate() error {
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"weights.citation", c.Weights.Citation},
		{"weights.nli", c.Weights.NLI},
		{"weights.consistency", c.Weights.Consistency},
	} {
		if w.value < 0 || w.value > 1 {
			return &ConfigurationError{Field: w.name, Reason: fmt.Sprintf("must be in [0,1], got %v", w.value)}
		}
	}

	sum := c.Weights.Citation + c.Weights.NLI + c.Weights.Consistency
	if math.Abs(sum-1.0) > weightTolerance {
		return &ConfigurationError{Field: "weights", Reason: fmt.Sprintf("must sum to 1.0, got %v", sum)}
	}

	if c.Risk.Medium <= 0 || c.Risk.Medium >= 1 {
		return &ConfigurationError{Field: "risk.medium", Reason: fmt.Sprintf("must be in (0,1), got %v", c.Risk.Medium)}
	}
	if c.Risk.High <= 0 || c.Risk.High >= 1 {
		return &ConfigurationError{Field: "risk.high", Reason: fmt.Sprintf("must be in (0,1), got %v", c.Risk.High)}
	}
	if c.Risk.Medium >= c.Risk.High {
		return &ConfigurationError{Field: "risk", Reason: fmt.Sprintf("medium cut (%v) must be below high cut (%v)", c.Risk.Medium, c.Risk.High)}
	}

	if c.Consistency.Samples < 1 {
		return &ConfigurationError{Field: "consistency.samples", Reason: fmt.Sprintf("must be at least 1, got %d", c.Consistency.Samples)}
	}
	if c.Consistency.Temperature < 0 || c.Consistency.Temperature > 2 {
		return &ConfigurationError{Field: "consistency.temperature", Reason: fmt.Sprintf("must be in [0,2], got %v", c.Consistency.Temperature)}
	}

	if c.LLM.Timeout <= 0 {
		return &ConfigurationError{Field: "llm.timeout", Reason: "must be positive"}
	}
	if c.LLM.MaxTokens <= 0 {
		return &ConfigurationError{Field: "llm.max_tokens", Reason: "must be positive"}
	}

	switch c.Cache.Backend {
	case "", "memory", "disk", "layered", "redis":
	default:
		return &ConfigurationError{Field: "cache.backend", Reason: fmt.Sprintf("unknown backend %q (supported: memory, disk, layered, redis)", c.Cache.Backend)}
	}

	if c.Concurrency.Workers < 1 {
		return &ConfigurationError{Field: "concurrency.workers", Reason: "must be at least 1"}
	}
	if c.Concurrency.MaxCalls < 1 {
		return &ConfigurationError{Field: "concurrency.max_calls", Reason: "must be at least 1"}
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		return &ConfigurationError{Field: "rate_limit.requests_per_second", Reason: "must be positive"}
	}
	if c.RateLimit.Burst < 1 {
		return &ConfigurationError{Field: "rate_limit.burst", Reason: "must be at least 1"}
	}

	return nil
}

// ConfigurationError reports an invalid weight, threshold, or sampling
// setting. It is raised at startup, never during a verification run.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}
