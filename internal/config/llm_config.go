package config

import (
	"fmt"
	"os"
)

// LLMConfig holds configuration for the request body suggester
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // e.g., "openai"
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`    // e.g., "gpt-4o-mini"
	BaseURL     string  `yaml:"base_url"` // Optional, for compatible endpoints
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Configured reports whether enough is set to call the provider
func (c LLMConfig) Configured() bool {
	return c.APIKey != ""
}

// defaultLLMConfig seeds the fields whose zero value is a valid setting, so an
// explicit zero in the file survives decoding
func defaultLLMConfig() LLMConfig {
	return LLMConfig{Temperature: 0.2}
}

func (c *LLMConfig) applyEnv() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.APIKey = key
	}
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		c.BaseURL = base
	}
}

func (c *LLMConfig) applyDefaults() {
	if c.Provider == "" {
		c.Provider = "openai"
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 800
	}
}

// Validate checks the provider settings
func (c LLMConfig) Validate() error {
	if c.Provider != "openai" {
		return fmt.Errorf("unsupported LLM provider: %s", c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("LLM temperature must be between 0 and 2")
	}
	return nil
}
