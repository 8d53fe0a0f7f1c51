// Package config provides configuration helpers for voicedesk commands.
package config

import (
	"fmt"
	"os"
)

// Defaults for the agent process.
const (
	DefaultPort          = "8080"
	DefaultModel         = "moonshotai/kimi-k2-instruct-0905"
	DefaultCountryPrefix = "+49"
	DefaultOperatorEmail = "anfrage@kiempfang.de"

	GroqBaseURL       = "https://api.groq.com/openai/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	CalBaseURL        = "https://api.cal.com/v2"
)

// Getenv returns the value of the env var or the provided default.
func Getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Required returns the value of the env var.
// Exits with usage text if not set.
func Required(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "Error: %s environment variable is required\n", key)
		os.Exit(1)
	}
	return v
}

// Config holds process configuration resolved from the environment.
type Config struct {
	Port     string
	LogLevel string

	// Model provider. GroqKey selects the direct endpoint; OpenRouterKey
	// is the routed fallback.
	GroqKey       string
	OpenRouterKey string
	Model         string

	// Scheduling service.
	CalAPIKey      string
	CalBaseURL     string
	CalEventTypeID int

	// Booking policy.
	OperatorEmail string
	CountryPrefix string
}

// FromEnv resolves the process configuration from environment variables.
func FromEnv() Config {
	cfg := Config{
		Port:          Getenv("PORT", DefaultPort),
		LogLevel:      Getenv("LOG_LEVEL", "info"),
		GroqKey:       os.Getenv("GROQ_API_KEY"),
		OpenRouterKey: os.Getenv("OPENROUTER_API_KEY"),
		Model:         Getenv("LLM_MODEL", DefaultModel),
		CalAPIKey:     os.Getenv("CAL_API_KEY"),
		CalBaseURL:    Getenv("CAL_BASE_URL", CalBaseURL),
		OperatorEmail: Getenv("OPERATOR_EMAIL", DefaultOperatorEmail),
		CountryPrefix: Getenv("PHONE_COUNTRY_PREFIX", DefaultCountryPrefix),
	}
	if id := os.Getenv("CAL_EVENT_TYPE_ID"); id != "" {
		fmt.Sscanf(id, "%d", &cfg.CalEventTypeID)
	}
	return cfg
}

// Validate reports configuration problems that prevent startup.
func (c Config) Validate() error {
	if c.GroqKey == "" && c.OpenRouterKey == "" {
		return fmt.Errorf("config: GROQ_API_KEY or OPENROUTER_API_KEY required")
	}
	return nil
}
