package ai

import (
	"github.com/hrygo/parley/internal/profile"
)

// LLMConfig holds the configuration for the summarization LLM.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	MaxRetries  int
}

// DefaultLLMConfig returns the default configuration.
func DefaultLLMConfig() *LLMConfig {
	return &LLMConfig{
		BaseURL:     "https://api.openai.com/v1",
		Model:       "gpt-4o-mini",
		MaxTokens:   2048,
		Temperature: 0.3,
		MaxRetries:  3,
	}
}

// ApplyDefaults fills unset fields with defaults.
func (c *LLMConfig) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 2048
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
}

// NewLLMConfigFromProfile builds an LLMConfig from the engine profile.
func NewLLMConfigFromProfile(p *profile.Profile) *LLMConfig {
	cfg := DefaultLLMConfig()
	cfg.APIKey = p.LLMAPIKey
	if p.LLMBaseURL != "" {
		cfg.BaseURL = p.LLMBaseURL
	}
	if p.LLMModel != "" {
		cfg.Model = p.LLMModel
	}
	return cfg
}
