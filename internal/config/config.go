// Package config handles configuration loading for tickerscan.
// It supports YAML config files, a .env file and environment variable
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/seenimoa/tickerscan/pkg/models"
)

// Config represents the complete application configuration.
type Config struct {
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator" yaml:"orchestrator"`
	Providers    ProvidersConfig    `mapstructure:"providers"    yaml:"providers"`
	Keys         KeysConfig         `mapstructure:"keys"         yaml:"keys"`
	API          APIConfig          `mapstructure:"api"          yaml:"api"`
	Logging      LoggingConfig      `mapstructure:"logging"      yaml:"logging"`
}

// OrchestratorConfig configures the prompt-planning model call.
type OrchestratorConfig struct {
	Tier        string  `mapstructure:"tier"        yaml:"tier"` // "premium" or "fast"
	Model       string  `mapstructure:"model"       yaml:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"  yaml:"max_tokens"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	TimeoutSec  int     `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// Timeout returns the orchestrator call timeout.
func (o OrchestratorConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSec) * time.Second
}

// ProvidersConfig configures the downstream adapters.
type ProvidersConfig struct {
	TimeoutSec int           `mapstructure:"timeout_sec" yaml:"timeout_sec"` // per adapter
	Grok       ModelProvider `mapstructure:"grok"        yaml:"grok"`
	OpenAI     ModelProvider `mapstructure:"openai"      yaml:"openai"`
	Gemini     ModelProvider `mapstructure:"gemini"      yaml:"gemini"`
	News       NewsConfig    `mapstructure:"news"        yaml:"news"`
}

// Timeout returns the per-adapter dispatch timeout.
func (p ProvidersConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSec) * time.Second
}

// TimeoutFor returns the dispatch timeout of one provider slot. A slot
// without its own timeout_sec uses the shared one.
func (p ProvidersConfig) TimeoutFor(id models.ProviderID) time.Duration {
	var sec int
	switch id {
	case models.ProviderGrok:
		sec = p.Grok.TimeoutSec
	case models.ProviderOpenAI:
		sec = p.OpenAI.TimeoutSec
	case models.ProviderGemini:
		sec = p.Gemini.TimeoutSec
	case models.ProviderNews:
		sec = p.News.TimeoutSec
	}
	if sec <= 0 {
		return p.Timeout()
	}
	return time.Duration(sec) * time.Second
}

// ModelProvider configures one prompt-driven sentiment adapter.
type ModelProvider struct {
	Enabled     bool    `mapstructure:"enabled"     yaml:"enabled"`
	TimeoutSec  int     `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	Model       string  `mapstructure:"model"       yaml:"model"`
	BaseURL     string  `mapstructure:"base_url"    yaml:"base_url"`
	MaxTokens   int     `mapstructure:"max_tokens"  yaml:"max_tokens"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
}

// NewsConfig configures the news slot.
type NewsConfig struct {
	Enabled           bool   `mapstructure:"enabled"             yaml:"enabled"`
	TimeoutSec        int    `mapstructure:"timeout_sec"         yaml:"timeout_sec"`
	LookbackDays      int    `mapstructure:"lookback_days"       yaml:"lookback_days"`
	FinnhubURL        string `mapstructure:"finnhub_url"         yaml:"finnhub_url"`
	RequestsPerSecond int    `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	RSSFallback       bool   `mapstructure:"rss_fallback"        yaml:"rss_fallback"`
	RSSURL            string `mapstructure:"rss_url"             yaml:"rss_url"` // {query} placeholder
}

// KeysConfig holds provider credentials.
type KeysConfig struct {
	Anthropic string `mapstructure:"anthropic" yaml:"anthropic"`
	XAI       string `mapstructure:"xai"       yaml:"xai"`
	OpenAI    string `mapstructure:"openai"    yaml:"openai"`
	Gemini    string `mapstructure:"gemini"    yaml:"gemini"`
	Finnhub   string `mapstructure:"finnhub"   yaml:"finnhub"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	CacheTTL    int      `mapstructure:"cache_ttl"    yaml:"cache_ttl"` // seconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// Credentials returns the read-only credential set handed to requests.
func (c *Config) Credentials() models.Credentials {
	return models.Credentials{
		Anthropic: c.Keys.Anthropic,
		XAI:       c.Keys.XAI,
		OpenAI:    c.Keys.OpenAI,
		Gemini:    c.Keys.Gemini,
		Finnhub:   c.Keys.Finnhub,
	}
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.tickerscan/config.yaml (home directory)
//  3. /etc/tickerscan/config.yaml (system)
//
// A .env file in the working directory is loaded first. Environment
// variables override config file values.
// Format: TICKERSCAN_<SECTION>_<KEY>, e.g., TICKERSCAN_KEYS_XAI
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".tickerscan"))
	v.AddConfigPath("/etc/tickerscan")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("TICKERSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// loadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Orchestrator defaults
	v.SetDefault("orchestrator.tier", "fast")
	v.SetDefault("orchestrator.model", "")
	v.SetDefault("orchestrator.max_tokens", 1024)
	v.SetDefault("orchestrator.temperature", 0.3)
	v.SetDefault("orchestrator.timeout_sec", 30)

	// Provider defaults
	v.SetDefault("providers.timeout_sec", 45)
	for _, name := range []string{"grok", "openai", "gemini"} {
		v.SetDefault("providers."+name+".enabled", true)
		v.SetDefault("providers."+name+".timeout_sec", 0)
		v.SetDefault("providers."+name+".model", "")
		v.SetDefault("providers."+name+".base_url", "")
		v.SetDefault("providers."+name+".max_tokens", 800)
		v.SetDefault("providers."+name+".temperature", 0.2)
	}
	v.SetDefault("providers.news.enabled", true)
	v.SetDefault("providers.news.timeout_sec", 0)
	v.SetDefault("providers.news.lookback_days", 7)
	v.SetDefault("providers.news.finnhub_url", "https://finnhub.io/api/v1")
	v.SetDefault("providers.news.requests_per_second", 30)
	v.SetDefault("providers.news.rss_fallback", true)
	v.SetDefault("providers.news.rss_url", "https://news.google.com/rss/search?q={query}&hl=en-US&gl=US&ceid=US:en")

	// Keys are registered so TICKERSCAN_KEYS_* variables are picked up.
	for _, name := range []string{"anthropic", "xai", "openai", "gemini", "finnhub"} {
		v.SetDefault("keys."+name, "")
	}

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.cache_ttl", 300) // 5 minutes

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Conventional provider variables, checked after the TICKERSCAN_ ones.
const (
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvXAIKey       = "XAI_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvFinnhubKey   = "FINNHUB_API_KEY"
)

// overrideFromEnv explicitly reads provider keys from their conventional
// environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv(EnvAnthropicKey); key != "" {
		cfg.Keys.Anthropic = key
	}
	if key := os.Getenv(EnvXAIKey); key != "" {
		cfg.Keys.XAI = key
	}
	if key := os.Getenv(EnvOpenAIKey); key != "" {
		cfg.Keys.OpenAI = key
	}
	if key := os.Getenv(EnvGeminiKey); key != "" {
		cfg.Keys.Gemini = key
	}
	if key := os.Getenv(EnvFinnhubKey); key != "" {
		cfg.Keys.Finnhub = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
