package model

import (
	"errors"
	"testing"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected default config to validate, got %v", err)
	}
}

func TestDefaultConfig_Weights(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Weights.Citation != 0.4 {
		t.Errorf("Expected citation weight 0.4, got %v", cfg.Weights.Citation)
	}
	if cfg.Weights.NLI != 0.4 {
		t.Errorf("Expected nli weight 0.4, got %v", cfg.Weights.NLI)
	}
	if cfg.Weights.Consistency != 0.2 {
		t.Errorf("Expected consistency weight 0.2, got %v", cfg.Weights.Consistency)
	}
}

func TestConfig_Validate_Rejections(t *testing.T) {
	tests := []struct {
		desc   string
		mutate func(*Config)
	}{
		{
			desc:   "weights not summing to one",
			mutate: func(c *Config) { c.Weights.Citation = 0.5 },
		},
		{
			desc:   "negative weight",
			mutate: func(c *Config) { c.Weights.NLI = -0.1; c.Weights.Citation = 0.9 },
		},
		{
			desc:   "weight above one",
			mutate: func(c *Config) { c.Weights.Citation = 1.2; c.Weights.NLI = -0.4 },
		},
		{
			desc:   "medium cut at zero",
			mutate: func(c *Config) { c.Risk.Medium = 0 },
		},
		{
			desc:   "high cut at one",
			mutate: func(c *Config) { c.Risk.High = 1 },
		},
		{
			desc:   "inverted risk cuts",
			mutate: func(c *Config) { c.Risk.Medium = 0.7 },
		},
		{
			desc:   "zero samples",
			mutate: func(c *Config) { c.Consistency.Samples = 0 },
		},
		{
			desc:   "negative temperature",
			mutate: func(c *Config) { c.Consistency.Temperature = -0.5 },
		},
		{
			desc:   "zero timeout",
			mutate: func(c *Config) { c.LLM.Timeout = 0 },
		},
		{
			desc:   "unknown cache backend",
			mutate: func(c *Config) { c.Cache.Backend = "memcached" },
		},
		{
			desc:   "zero workers",
			mutate: func(c *Config) { c.Concurrency.Workers = 0 },
		},
		{
			desc:   "zero rate",
			mutate: func(c *Config) { c.RateLimit.RequestsPerSecond = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Errorf("Expected ConfigurationError, got %T", err)
			}
		})
	}
}

func TestWeightsConfig_For(t *testing.T) {
	w := WeightsConfig{Citation: 0.4, NLI: 0.4, Consistency: 0.2}

	if got := w.For(SignalCitation); got != 0.4 {
		t.Errorf("Expected 0.4 for citation, got %v", got)
	}
	if got := w.For(SignalNLI); got != 0.4 {
		t.Errorf("Expected 0.4 for nli, got %v", got)
	}
	if got := w.For(SignalConsistency); got != 0.2 {
		t.Errorf("Expected 0.2 for consistency, got %v", got)
	}
	if got := w.For(SignalKind("entropy")); got != 0 {
		t.Errorf("Expected 0 for unknown kind, got %v", got)
	}
}

func TestConfigurationError_Message(t *testing.T) {
	err := &ConfigurationError{Field: "weights", Reason: "must sum to 1.0"}
	want := "invalid configuration: weights: must sum to 1.0"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}
