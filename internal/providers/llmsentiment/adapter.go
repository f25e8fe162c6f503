// Package llmsentiment implements the prompt-driven sentiment adapters
// (Grok, OpenAI, Gemini). Each sends its tailored prompt to a chat model
// and validates the answer against the SentimentRecord schema.
package llmsentiment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seenimoa/tickerscan/internal/agent/prompts"
	"github.com/seenimoa/tickerscan/internal/cost"
	"github.com/seenimoa/tickerscan/internal/llm"
	"github.com/seenimoa/tickerscan/internal/provider"
	"github.com/seenimoa/tickerscan/pkg/models"
)

// Options tunes one adapter.
type Options struct {
	Model       string // overrides the default model of the provider
	MaxTokens   int
	Temperature float64
}

// Adapter is a chat-model sentiment source.
type Adapter struct {
	provider.BaseAdapter
	newClient    llm.Factory
	systemPrompt string
	rates        cost.Rates
	opts         Options
}

// New creates an adapter for one of the prompted providers.
func New(id models.ProviderID, factory llm.Factory, opts Options, logger *zap.Logger) (*Adapter, error) {
	system, ok := systemPrompts[id]
	if !ok {
		return nil, fmt.Errorf("llmsentiment: unsupported provider %q", id)
	}
	rates, known := cost.RatesFor(opts.Model, cost.ProviderRates[id])
	if !known && logger != nil {
		logger.Warn("no published rates for model, billing at provider default rates",
			zap.String("provider", string(id)), zap.String("model", opts.Model))
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 800
	}
	return &Adapter{
		BaseAdapter:  provider.NewBaseAdapter(id, logger),
		newClient:    factory,
		systemPrompt: system,
		rates:        rates,
		opts:         opts,
	}, nil
}

var systemPrompts = map[models.ProviderID]string{
	models.ProviderGrok:   prompts.GrokSystemPrompt,
	models.ProviderOpenAI: prompts.OpenAISystemPrompt,
	models.ProviderGemini: prompts.GeminiSystemPrompt,
}

// Model returns the model this adapter calls.
func (a *Adapter) Model() string { return a.rates.Model }

// Invoke sends the prompt and parses a SentimentRecord from the reply.
func (a *Adapter) Invoke(ctx context.Context, prompt string, req models.ResearchRequest) models.ProviderResult {
	key := req.Credentials.For(a.ID())
	if key == "" || a.newClient == nil {
		return a.NotConfigured()
	}
	start := time.Now()

	client, err := a.newClient(key)
	if err != nil {
		return a.Fail(err, start)
	}

	resp, err := client.Chat(ctx, []llm.Message{
		llm.SystemMessage(a.systemPrompt),
		llm.UserMessage(fmt.Sprintf("%s\n\nTicker: %s (%s), sector %s.", prompt, req.Symbol, req.CompanyName, req.Sector)),
	}, &llm.ChatOptions{
		Model:       a.rates.Model,
		MaxTokens:   a.opts.MaxTokens,
		Temperature: a.opts.Temperature,
	})
	if err != nil {
		return a.Fail(err, start)
	}

	// The call was billed whether or not its answer parses.
	usage := cost.Usage(int64(resp.Usage.PromptTokens), int64(resp.Usage.CompletionTokens), a.rates)

	rec, err := ParseRecord(resp.Content)
	if err != nil {
		res := a.Fail(err, start)
		res.Usage = &usage
		return res
	}
	return a.Succeed(rec, &usage, start)
}
