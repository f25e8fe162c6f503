package prompts

import (
	"strings"
	"testing"
)

// ── Orchestrator ──

func TestOrchestratorUserPrompt(t *testing.T) {
	p := OrchestratorUserPrompt("ATYR", "aTyr Pharma", "biotech", 6.42)
	for _, want := range []string{"ATYR", "aTyr Pharma", "biotech", "$6.42", "companyType", "keyTopics", "grokPrompt", "openaiPrompt", "geminiPrompt", "Example 1"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

// ── Sentiment analysts ──

func TestSystemPromptsCarrySchema(t *testing.T) {
	for name, p := range map[string]string{
		"grok":   GrokSystemPrompt,
		"openai": OpenAISystemPrompt,
		"gemini": GeminiSystemPrompt,
	} {
		for _, field := range []string{"score", "confidence", "sentimentBreakdown", "topTakes", "retailVsInstitutional"} {
			if !strings.Contains(p, field) {
				t.Errorf("%s prompt missing field %q", name, field)
			}
		}
	}
}

// ── Fallback templates ──

func TestFallbackPromptsReferenceSubject(t *testing.T) {
	for name, p := range map[string]string{
		"grok":   FallbackGrokPrompt("ATYR", "aTyr Pharma"),
		"openai": FallbackOpenAIPrompt("ATYR", "aTyr Pharma"),
		"gemini": FallbackGeminiPrompt("ATYR", "aTyr Pharma"),
	} {
		if !strings.Contains(p, "ATYR") || !strings.Contains(p, "aTyr Pharma") {
			t.Errorf("%s fallback = %q", name, p)
		}
	}
}
