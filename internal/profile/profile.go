package profile

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Profile is the configuration for the parley context engine.
type Profile struct {
	// Mode can be "prod" or "dev".
	Mode string
	// Data is the data directory used by the sqlite driver.
	Data string
	// DSN points to where parley stores its own data.
	DSN string
	// Driver is the database driver (sqlite or postgres).
	Driver string

	// LLM configuration for the summarization collaborator.
	LLMAPIKey  string // PARLEY_LLM_API_KEY
	LLMBaseURL string // PARLEY_LLM_BASE_URL (default: https://api.openai.com/v1)
	LLMModel   string // PARLEY_LLM_MODEL (default: gpt-4o-mini)

	// Context window configuration.
	ContextCeiling  int // PARLEY_CONTEXT_CEILING (default: 8000)
	ResponseReserve int // PARLEY_RESPONSE_RESERVE (default: 1000)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// FromEnv loads configuration from PARLEY_* environment variables.
func (p *Profile) FromEnv() {
	p.Mode = getEnvOrDefault("PARLEY_MODE", p.Mode)
	p.Data = getEnvOrDefault("PARLEY_DATA", p.Data)
	p.DSN = getEnvOrDefault("PARLEY_DSN", p.DSN)
	p.Driver = getEnvOrDefault("PARLEY_DRIVER", p.Driver)

	p.LLMAPIKey = getEnvOrDefault("PARLEY_LLM_API_KEY", p.LLMAPIKey)
	p.LLMBaseURL = getEnvOrDefault("PARLEY_LLM_BASE_URL", p.LLMBaseURL)
	p.LLMModel = getEnvOrDefault("PARLEY_LLM_MODEL", p.LLMModel)

	p.ContextCeiling = getEnvIntOrDefault("PARLEY_CONTEXT_CEILING", p.ContextCeiling)
	p.ResponseReserve = getEnvIntOrDefault("PARLEY_RESPONSE_RESERVE", p.ResponseReserve)
}

// Validate fills defaults and rejects unusable configurations.
func (p *Profile) Validate() error {
	if p.Mode == "" {
		p.Mode = "dev"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported database driver: %s", p.Driver)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}
	if p.LLMBaseURL == "" {
		p.LLMBaseURL = "https://api.openai.com/v1"
	}
	if p.LLMModel == "" {
		p.LLMModel = "gpt-4o-mini"
	}
	if p.ContextCeiling <= 0 {
		p.ContextCeiling = 8000
	}
	if p.ResponseReserve <= 0 {
		p.ResponseReserve = 1000
	}
	if p.ResponseReserve >= p.ContextCeiling {
		return errors.Errorf("response reserve %d must be below context ceiling %d", p.ResponseReserve, p.ContextCeiling)
	}
	return nil
}

// New creates a profile from the environment with defaults applied.
func New() (*Profile, error) {
	p := &Profile{}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid profile")
	}
	return p, nil
}
