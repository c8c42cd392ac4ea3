package config

import "os"

// AIConfig holds all generator-related configuration
type AIConfig struct {
	APIKey  string `json:"-"` // Never serialize
	BaseURL string `json:"baseUrl"`

	// Model is tried first. FallbackModel is retried exactly once, and
	// only when the first attempt produced unparseable JSON.
	Model         string `json:"model"`
	FallbackModel string `json:"fallbackModel"`

	TimeoutMS int  `json:"timeoutMs"`
	Debug     bool `json:"debug"`
}

// DefaultAIConfig returns the default generator configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:        os.Getenv("AI_BUILDER_TOKEN"),
		BaseURL:       getEnv("AI_BUILDER_API_BASE", "https://space.ai-builders.com/backend"),
		Model:         getEnv("AI_BUILDER_MODEL", "grok-4-fast"),
		FallbackModel: getEnv("AI_BUILDER_FALLBACK_MODEL", "grok-4-fast"),
		TimeoutMS:     getEnvInt("AI_TIMEOUT_MS", 10000),
		Debug:         os.Getenv("DEBUG_AI") == "1",
	}
}

// IsEnabled returns true if the generator API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// Endpoint returns the chat completions endpoint
func (c *AIConfig) Endpoint() string {
	return c.BaseURL + "/v1/chat/completions"
}
