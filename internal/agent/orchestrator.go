// Package agent implements the prompt orchestrator: one call to a
// reasoning model that classifies the research subject and writes a
// tailored prompt for every downstream provider, with a deterministic
// local fallback whenever that call or its parsing fails.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seenimoa/tickerscan/internal/agent/prompts"
	"github.com/seenimoa/tickerscan/internal/cost"
	"github.com/seenimoa/tickerscan/internal/llm"
	"github.com/seenimoa/tickerscan/internal/provider"
	"github.com/seenimoa/tickerscan/pkg/models"
)

// OrchestratorConfig tunes the orchestration call.
type OrchestratorConfig struct {
	Tier        cost.Tier
	Model       string // overrides the tier's model when set
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// PromptOrchestrator produces OrchestratorInstructions for research requests.
type PromptOrchestrator struct {
	newClient llm.Factory
	cfg       OrchestratorConfig
	rates     cost.Rates
	logger    *zap.Logger
}

// NewPromptOrchestrator creates an orchestrator. A nil factory means every
// request takes the fallback path.
func NewPromptOrchestrator(factory llm.Factory, cfg OrchestratorConfig, logger *zap.Logger) *PromptOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	rates, ok := cost.OrchestratorRates[cfg.Tier]
	if !ok {
		cfg.Tier = cost.TierFast
		rates = cost.OrchestratorRates[cost.TierFast]
	}
	rates, known := cost.RatesFor(cfg.Model, rates)
	if !known {
		logger.Warn("no published rates for model, billing at tier rates",
			zap.String("model", cfg.Model), zap.String("tier", string(cfg.Tier)))
	}
	return &PromptOrchestrator{
		newClient: factory,
		cfg:       cfg,
		rates:     rates,
		logger:    logger.With(zap.String("component", "orchestrator")),
	}
}

// Model returns the model the orchestrator will call.
func (o *PromptOrchestrator) Model() string { return o.rates.Model }

// GeneratePrompts never fails: any error along the model path is logged
// and replaced by Fallback(req).
func (o *PromptOrchestrator) GeneratePrompts(ctx context.Context, req models.ResearchRequest) models.OrchestratorInstructions {
	log := o.logger.With(zap.String("symbol", req.Symbol))

	instr, err := o.fromModel(ctx, req)
	if err != nil {
		log.Warn("orchestrator fell back to template prompts",
			zap.String("error_kind", string(provider.Classify(err))),
			zap.Error(err))
		return Fallback(req)
	}

	log.Info("orchestrator produced prompts",
		zap.String("company_type", string(instr.CompanyType)),
		zap.Strings("key_topics", instr.KeyTopics),
		zap.Float64("cost_usd", instr.Usage.CostUSD))
	return instr
}

func (o *PromptOrchestrator) fromModel(ctx context.Context, req models.ResearchRequest) (models.OrchestratorInstructions, error) {
	key := req.Credentials.For(models.ProviderOrchestrator)
	if key == "" || o.newClient == nil {
		return models.OrchestratorInstructions{}, llm.ErrNoAPIKey
	}
	client, err := o.newClient(key)
	if err != nil {
		return models.OrchestratorInstructions{}, fmt.Errorf("create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	resp, err := client.Chat(ctx, []llm.Message{
		llm.SystemMessage(prompts.OrchestratorSystemPrompt),
		llm.UserMessage(prompts.OrchestratorUserPrompt(req.Symbol, req.CompanyName, req.Sector, req.CurrentPrice)),
	}, &llm.ChatOptions{
		Model:       o.rates.Model,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	})
	if err != nil {
		return models.OrchestratorInstructions{}, err
	}

	instr, err := ParseInstructions(resp.Content)
	if err != nil {
		return models.OrchestratorInstructions{}, err
	}
	usage := cost.Usage(int64(resp.Usage.PromptTokens), int64(resp.Usage.CompletionTokens), o.rates)
	instr.Usage = &usage
	return instr, nil
}

// orchestratorResponse mirrors the JSON object the model is asked for.
type orchestratorResponse struct {
	CompanyType  string   `json:"companyType"`
	KeyTopics    []string `json:"keyTopics"`
	GrokPrompt   string   `json:"grokPrompt"`
	OpenAIPrompt string   `json:"openaiPrompt"`
	GeminiPrompt string   `json:"geminiPrompt"`
}

// ParseInstructions extracts model-sourced instructions from free text.
// Every field is required; an unknown company type or a blank prompt is a
// schema error.
func ParseInstructions(text string) (models.OrchestratorInstructions, error) {
	var raw orchestratorResponse
	if err := provider.DecodeObject(text, &raw); err != nil {
		return models.OrchestratorInstructions{}, err
	}

	ct, ok := models.ParseCompanyType(raw.CompanyType)
	if !ok {
		return models.OrchestratorInstructions{}, provider.SchemaError("companyType", "unknown value %q", raw.CompanyType)
	}

	topics := make([]string, 0, len(raw.KeyTopics))
	for _, t := range raw.KeyTopics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	if len(topics) == 0 {
		return models.OrchestratorInstructions{}, provider.SchemaError("keyTopics", "missing or empty")
	}

	set := map[models.ProviderID]string{
		models.ProviderGrok:   strings.TrimSpace(raw.GrokPrompt),
		models.ProviderOpenAI: strings.TrimSpace(raw.OpenAIPrompt),
		models.ProviderGemini: strings.TrimSpace(raw.GeminiPrompt),
	}
	for _, id := range models.PromptedProviders {
		if set[id] == "" {
			return models.OrchestratorInstructions{}, provider.SchemaError(string(id)+"Prompt", "missing or empty")
		}
	}

	return models.OrchestratorInstructions{
		CompanyType: ct,
		KeyTopics:   topics,
		Prompts:     set,
		Source:      models.SourceModel,
	}, nil
}
