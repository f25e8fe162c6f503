package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name     string       `json:"name"`
	Provider string       `json:"provider"`
	Source   APIKeySource `json:"source"`
	IsSet    bool         `json:"is_set"`
	Masked   string       `json:"masked,omitempty"` // e.g., "sk-...abc"
}

// CheckAPIKeys returns the status of every provider key.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("Anthropic API Key", "anthropic", cfg.Keys.Anthropic, EnvAnthropicKey, "TICKERSCAN_KEYS_ANTHROPIC"),
		checkKey("xAI API Key", "grok", cfg.Keys.XAI, EnvXAIKey, "TICKERSCAN_KEYS_XAI"),
		checkKey("OpenAI API Key", "openai", cfg.Keys.OpenAI, EnvOpenAIKey, "TICKERSCAN_KEYS_OPENAI"),
		checkKey("Gemini API Key", "gemini", cfg.Keys.Gemini, EnvGeminiKey, "TICKERSCAN_KEYS_GEMINI"),
		checkKey("Finnhub API Key", "news", cfg.Keys.Finnhub, EnvFinnhubKey, "TICKERSCAN_KEYS_FINNHUB"),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, provider, value string, envVars ...string) KeyStatus {
	status := KeyStatus{
		Name:     name,
		Provider: provider,
		IsSet:    value != "",
		Source:   KeySourceNone,
	}
	if value == "" {
		return status
	}

	status.Source = KeySourceConfig
	for _, env := range envVars {
		if os.Getenv(env) != "" {
			status.Source = KeySourceEnv
			break
		}
	}
	status.Masked = maskKey(value)
	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
