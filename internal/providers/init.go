// Package providers builds the concrete adapters from configuration and
// registers them, in dispatch order, with a provider registry.
package providers

import (
	"context"

	"go.uber.org/zap"

	"github.com/seenimoa/tickerscan/internal/config"
	"github.com/seenimoa/tickerscan/internal/llm"
	"github.com/seenimoa/tickerscan/internal/provider"
	"github.com/seenimoa/tickerscan/internal/providers/finnhub"
	"github.com/seenimoa/tickerscan/internal/providers/llmsentiment"
	"github.com/seenimoa/tickerscan/internal/providers/rss"
	"github.com/seenimoa/tickerscan/pkg/models"
)

// BuildAdapters creates every enabled adapter. Adapters are registered
// even without a credential so they report NotConfigured per request.
func BuildAdapters(cfg *config.Config, logger *zap.Logger) (*provider.Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg, _ := provider.NewRegistry()

	prompted := []struct {
		id      models.ProviderID
		cfg     config.ModelProvider
		factory llm.Factory
	}{
		{models.ProviderGrok, cfg.Providers.Grok, GrokClient(cfg.Providers.Grok)},
		{models.ProviderOpenAI, cfg.Providers.OpenAI, OpenAIClient(cfg.Providers.OpenAI)},
		{models.ProviderGemini, cfg.Providers.Gemini, GeminiClient(cfg.Providers.Gemini)},
	}
	for _, p := range prompted {
		if !p.cfg.Enabled {
			logger.Info("adapter disabled", zap.String("provider", string(p.id)))
			continue
		}
		a, err := llmsentiment.New(p.id, p.factory, llmsentiment.Options{
			Model:       p.cfg.Model,
			MaxTokens:   p.cfg.MaxTokens,
			Temperature: p.cfg.Temperature,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(a); err != nil {
			return nil, err
		}
	}

	if news := cfg.Providers.News; news.Enabled {
		slot := NewNewsSlot(
			finnhub.New(finnhub.Options{
				BaseURL:           news.FinnhubURL,
				LookbackDays:      news.LookbackDays,
				RequestsPerSecond: news.RequestsPerSecond,
			}, logger),
			nil,
		)
		if news.RSSFallback {
			slot.fallback = rss.New(rss.Options{
				URLTemplate:  news.RSSURL,
				LookbackDays: news.LookbackDays,
			}, logger)
		}
		if err := reg.Register(slot); err != nil {
			return nil, err
		}
	}

	logger.Debug("adapters registered", zap.Int("count", reg.Len()))
	return reg, nil
}

// OrchestratorClient returns the factory for the orchestrator model.
func OrchestratorClient(cfg config.OrchestratorConfig) llm.Factory {
	return func(apiKey string) (llm.LLMProvider, error) {
		opts := []llm.AnthropicOption{}
		if cfg.MaxTokens > 0 {
			opts = append(opts, llm.WithAnthropicMaxTokens(cfg.MaxTokens))
		}
		return llm.NewAnthropicProvider(apiKey, opts...)
	}
}

// GrokClient returns the factory for xAI's API.
func GrokClient(cfg config.ModelProvider) llm.Factory {
	return func(apiKey string) (llm.LLMProvider, error) {
		return llm.NewXAIProvider(apiKey, openAIOptions(cfg)...)
	}
}

// OpenAIClient returns the factory for OpenAI's API.
func OpenAIClient(cfg config.ModelProvider) llm.Factory {
	return func(apiKey string) (llm.LLMProvider, error) {
		return llm.NewOpenAIProvider(apiKey, openAIOptions(cfg)...)
	}
}

// GeminiClient returns the factory for the Gemini API.
func GeminiClient(cfg config.ModelProvider) llm.Factory {
	return func(apiKey string) (llm.LLMProvider, error) {
		var opts []llm.GeminiOption
		if cfg.Model != "" {
			opts = append(opts, llm.WithGeminiModel(cfg.Model))
		}
		return llm.NewGeminiProvider(context.Background(), apiKey, opts...)
	}
}

func openAIOptions(cfg config.ModelProvider) []llm.OpenAIOption {
	var opts []llm.OpenAIOption
	if cfg.BaseURL != "" {
		opts = append(opts, llm.WithOpenAIBaseURL(cfg.BaseURL))
	}
	if cfg.Model != "" {
		opts = append(opts, llm.WithOpenAIModel(cfg.Model))
	}
	return opts
}
