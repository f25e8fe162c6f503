package agent

import (
	"github.com/seenimoa/tickerscan/internal/agent/prompts"
	"github.com/seenimoa/tickerscan/pkg/models"
)

// Fallback returns the deterministic instructions used when the
// orchestrator model cannot be used. It is total and carries no usage.
func Fallback(req models.ResearchRequest) models.OrchestratorInstructions {
	return models.OrchestratorInstructions{
		CompanyType: models.CompanyOther,
		KeyTopics:   []string{req.CompanyName, req.Symbol, "stock", "earnings"},
		Prompts: map[models.ProviderID]string{
			models.ProviderGrok:   prompts.FallbackGrokPrompt(req.Symbol, req.CompanyName),
			models.ProviderOpenAI: prompts.FallbackOpenAIPrompt(req.Symbol, req.CompanyName),
			models.ProviderGemini: prompts.FallbackGeminiPrompt(req.Symbol, req.CompanyName),
		},
		Source: models.SourceFallback,
	}
}
