package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/seenimoa/tickerscan/internal/cost"
	"github.com/seenimoa/tickerscan/internal/llm"
	"github.com/seenimoa/tickerscan/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Mock provider
// ════════════════════════════════════════════════════════════════════

type mockProvider struct {
	mu     sync.Mutex
	calls  int
	lastOp *llm.ChatOptions
	fn     func(ctx context.Context, messages []llm.Message) (*llm.Response, error)
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Chat(ctx context.Context, messages []llm.Message, opts *llm.ChatOptions) (*llm.Response, error) {
	m.mu.Lock()
	m.calls++
	m.lastOp = opts
	m.mu.Unlock()
	return m.fn(ctx, messages)
}

func replying(content string, in, out int) *mockProvider {
	return &mockProvider{fn: func(_ context.Context, _ []llm.Message) (*llm.Response, error) {
		return &llm.Response{
			Content: content,
			Usage:   llm.Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out},
		}, nil
	}}
}

func failing(err error) *mockProvider {
	return &mockProvider{fn: func(_ context.Context, _ []llm.Message) (*llm.Response, error) {
		return nil, err
	}}
}

func factoryFor(p llm.LLMProvider) llm.Factory {
	return func(string) (llm.LLMProvider, error) { return p, nil }
}

func atyrRequest(withKey bool) models.ResearchRequest {
	creds := models.Credentials{}
	if withKey {
		creds.Anthropic = "sk-ant-test"
	}
	return models.NewResearchRequest("ATYR", "aTyr Pharma", "biotech", 6.42, creds)
}

const goodPlan = `Here is the plan:
{"companyType":"biotech","keyTopics":["efzofitimod","sarcoidosis trial"," "],
 "grokPrompt":"Analyze X posts on $ATYR","openaiPrompt":"Summarize ATYR news",
 "geminiPrompt":"Review retail forums on ATYR"}`

func assertFallback(t *testing.T, got models.OrchestratorInstructions, req models.ResearchRequest) {
	t.Helper()
	want := Fallback(req)
	if got.Source != models.SourceFallback || !got.IsFallback() {
		t.Errorf("Source = %q, want fallback", got.Source)
	}
	if got.CompanyType != models.CompanyOther {
		t.Errorf("CompanyType = %q, want other", got.CompanyType)
	}
	if strings.Join(got.KeyTopics, "|") != strings.Join(want.KeyTopics, "|") {
		t.Errorf("KeyTopics = %v, want %v", got.KeyTopics, want.KeyTopics)
	}
	if got.Usage != nil {
		t.Errorf("Usage = %+v, want nil on fallback", got.Usage)
	}
	for _, id := range models.PromptedProviders {
		if got.PromptFor(id) != want.PromptFor(id) {
			t.Errorf("prompt %s = %q", id, got.PromptFor(id))
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// Success path
// ════════════════════════════════════════════════════════════════════

func TestGeneratePromptsFromModel(t *testing.T) {
	mock := replying(goodPlan, 1000, 200)
	o := NewPromptOrchestrator(factoryFor(mock), OrchestratorConfig{Tier: cost.TierPremium}, nil)

	got := o.GeneratePrompts(context.Background(), atyrRequest(true))

	if got.Source != models.SourceModel {
		t.Fatalf("Source = %q, want model", got.Source)
	}
	if got.CompanyType != models.CompanyBiotech {
		t.Errorf("CompanyType = %q", got.CompanyType)
	}
	if len(got.KeyTopics) != 2 {
		t.Errorf("KeyTopics = %v, want blanks dropped", got.KeyTopics)
	}
	if got.PromptFor(models.ProviderGrok) != "Analyze X posts on $ATYR" {
		t.Errorf("grok prompt = %q", got.PromptFor(models.ProviderGrok))
	}
	if got.Usage == nil {
		t.Fatal("expected usage on success path")
	}
	// 1000/1000*0.003 + 200/1000*0.015 = 0.006
	if got.Usage.CostUSD != 0.006 || got.Usage.InputUnits != 1000 || got.Usage.OutputUnits != 200 {
		t.Errorf("Usage = %+v", got.Usage)
	}
	if mock.lastOp == nil || mock.lastOp.Model != cost.OrchestratorRates[cost.TierPremium].Model {
		t.Errorf("model option = %+v", mock.lastOp)
	}
}

func TestOrchestratorModelOverride(t *testing.T) {
	o := NewPromptOrchestrator(nil, OrchestratorConfig{Tier: "nonsense", Model: "claude-custom"}, nil)
	if o.Model() != "claude-custom" {
		t.Errorf("Model = %q", o.Model())
	}
	if o.cfg.Tier != cost.TierFast {
		t.Errorf("Tier = %q, want fast", o.cfg.Tier)
	}
}

func TestOrchestratorOverrideBillsAtModelRates(t *testing.T) {
	mock := replying(goodPlan, 1000, 200)
	o := NewPromptOrchestrator(factoryFor(mock), OrchestratorConfig{Tier: cost.TierFast, Model: "claude-sonnet-4-20250514"}, nil)

	got := o.GeneratePrompts(context.Background(), atyrRequest(true))

	if got.Usage == nil {
		t.Fatal("expected usage on success path")
	}
	// premium prices despite the fast tier: 1000/1000*0.003 + 200/1000*0.015 = 0.006
	if got.Usage.CostUSD != 0.006 {
		t.Errorf("CostUSD = %v, want 0.006", got.Usage.CostUSD)
	}
	if mock.lastOp == nil || mock.lastOp.Model != "claude-sonnet-4-20250514" {
		t.Errorf("model option = %+v", mock.lastOp)
	}
}

// ════════════════════════════════════════════════════════════════════
// Fallback path
// ════════════════════════════════════════════════════════════════════

func TestGeneratePromptsFallback(t *testing.T) {
	tests := []struct {
		name    string
		factory llm.Factory
		withKey bool
	}{
		{"no credential", factoryFor(replying(goodPlan, 1, 1)), false},
		{"nil factory", nil, true},
		{"factory error", func(string) (llm.LLMProvider, error) { return nil, errors.New("bad config") }, true},
		{"transport failure", factoryFor(failing(llm.ErrProviderDown)), true},
		{"auth failure", factoryFor(failing(llm.ErrUnauthorized)), true},
		{"no json", factoryFor(replying("I cannot help with that.", 50, 10)), true},
		{"missing prompts", factoryFor(replying(`{"companyType":"tech","keyTopics":["ai"]}`, 50, 10)), true},
		{"bad company type", factoryFor(replying(`{"companyType":"crypto","keyTopics":["a"],"grokPrompt":"a","openaiPrompt":"b","geminiPrompt":"c"}`, 50, 10)), true},
		{"empty topics", factoryFor(replying(`{"companyType":"tech","keyTopics":[],"grokPrompt":"a","openaiPrompt":"b","geminiPrompt":"c"}`, 50, 10)), true},
		{"truncated json", factoryFor(replying(`{"companyType":"tech","keyTopics":["a"`, 50, 10)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := atyrRequest(tt.withKey)
			o := NewPromptOrchestrator(tt.factory, OrchestratorConfig{}, nil)
			assertFallback(t, o.GeneratePrompts(context.Background(), req), req)
		})
	}
}

func TestGeneratePromptsTimeoutFallsBack(t *testing.T) {
	hung := &mockProvider{fn: func(ctx context.Context, _ []llm.Message) (*llm.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	o := NewPromptOrchestrator(factoryFor(hung), OrchestratorConfig{Timeout: 20 * time.Millisecond}, nil)

	req := atyrRequest(true)
	start := time.Now()
	got := o.GeneratePrompts(context.Background(), req)
	if time.Since(start) > time.Second {
		t.Error("orchestrator did not honor its timeout")
	}
	assertFallback(t, got, req)
}

func TestFallbackDeterministic(t *testing.T) {
	req := atyrRequest(false)
	a, b := Fallback(req), Fallback(req)
	if strings.Join(a.KeyTopics, ",") != "aTyr Pharma,ATYR,stock,earnings" {
		t.Errorf("KeyTopics = %v", a.KeyTopics)
	}
	for _, id := range models.PromptedProviders {
		if a.PromptFor(id) != b.PromptFor(id) {
			t.Errorf("%s prompt not deterministic", id)
		}
		if !strings.Contains(a.PromptFor(id), "ATYR") || !strings.Contains(a.PromptFor(id), "aTyr Pharma") {
			t.Errorf("%s prompt = %q", id, a.PromptFor(id))
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// Parsing
// ════════════════════════════════════════════════════════════════════

func TestParseInstructionsCaseInsensitiveType(t *testing.T) {
	got, err := ParseInstructions(`{"companyType":" Finance ","keyTopics":["rates"],"grokPrompt":"g","openaiPrompt":"o","geminiPrompt":"m"}`)
	if err != nil {
		t.Fatalf("ParseInstructions: %v", err)
	}
	if got.CompanyType != models.CompanyFinance {
		t.Errorf("CompanyType = %q", got.CompanyType)
	}
}
