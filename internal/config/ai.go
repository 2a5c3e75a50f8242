package config

import (
	"os"
	"strconv"
)

// GeminiModels defines which Gemini models to use per generation pass
type GeminiModels struct {
	// Personality is for the first pass (mindset/values narrative)
	Personality string `json:"personality"`

	// Wellbeing is for the second pass (wellbeing/momentum narrative)
	Wellbeing string `json:"wellbeing"`

	// Communication is for the third pass (communication/conflict/love)
	Communication string `json:"communication"`
}

// AIConfig holds all generation-provider configuration
type AIConfig struct {
	APIKey  string       `json:"-"` // Never serialize
	BaseURL string       `json:"baseUrl"`
	Models  GeminiModels `json:"models"`

	// TimeoutMS bounds every provider call. The upstream API sets no
	// duration bound of its own, so a hung call is cut here and treated as
	// a fatal provider error.
	TimeoutMS int `json:"timeoutMs"`

	// MaxRetries is the per-pass retry budget for rate-limited calls.
	MaxRetries int `json:"maxRetries"`

	// RetryBaseDelayMS is multiplied by the attempt number for the backoff
	// wait between rate-limited attempts.
	RetryBaseDelayMS int `json:"retryBaseDelayMs"`
}

// DefaultAIConfig returns the environment-driven AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
		Models: GeminiModels{
			Personality:   getEnvOrDefault("GEMINI_MODEL_PERSONALITY", "gemini-2.0-flash"),
			Wellbeing:     getEnvOrDefault("GEMINI_MODEL_WELLBEING", "gemini-2.0-flash"),
			Communication: getEnvOrDefault("GEMINI_MODEL_COMMUNICATION", "gemini-2.0-flash"),
		},
		TimeoutMS:        getEnvInt("GEMINI_TIMEOUT_MS", 60000),
		MaxRetries:       getEnvInt("GEMINI_MAX_RETRIES", 2),
		RetryBaseDelayMS: getEnvInt("GEMINI_RETRY_BASE_DELAY_MS", 2000),
	}
}

// IsEnabled returns true if the provider is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
