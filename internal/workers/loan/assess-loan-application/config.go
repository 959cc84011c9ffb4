package assessloanapplication

import (
	"time"

	"loan-assessment-workers/internal/common/config"
)

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		BaseURL:     "https://api.openai.com",
		Model:       "gpt-4o-mini",
		Temperature: 0.1,
		MaxTokens:   2000,
		Timeout:     30 * time.Second,
	}
}

// ConfigFrom overlays the genai section of the worker configuration on the
// defaults. Zero values keep the default.
func ConfigFrom(genai config.GenAIConfig) *Config {
	cfg := LoadConfig()
	cfg.APIKey = genai.APIKey
	if genai.BaseURL != "" {
		cfg.BaseURL = genai.BaseURL
	}
	if genai.Model != "" {
		cfg.Model = genai.Model
	}
	if genai.Temperature != 0 {
		cfg.Temperature = genai.Temperature
	}
	if genai.MaxTokens != 0 {
		cfg.MaxTokens = genai.MaxTokens
	}
	if genai.Timeout != 0 {
		cfg.Timeout = time.Duration(genai.Timeout) * time.Millisecond
	}
	return cfg
}

func (c *Config) Enabled() bool {
	return c.APIKey != ""
}
