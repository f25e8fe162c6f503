package research

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/seenimoa/tickerscan/internal/agent"
	"github.com/seenimoa/tickerscan/internal/aggregate"
	"github.com/seenimoa/tickerscan/internal/config"
	"github.com/seenimoa/tickerscan/internal/cost"
	"github.com/seenimoa/tickerscan/internal/dispatch"
	"github.com/seenimoa/tickerscan/internal/llm"
	"github.com/seenimoa/tickerscan/internal/provider"
	"github.com/seenimoa/tickerscan/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

type unreachable struct{}

func (unreachable) Name() string { return "anthropic" }

func (unreachable) Chat(context.Context, []llm.Message, *llm.ChatOptions) (*llm.Response, error) {
	return nil, fmt.Errorf("%w: dial tcp: connection refused", llm.ErrProviderDown)
}

type planner struct{ content string }

func (planner) Name() string { return "anthropic" }

func (p planner) Chat(context.Context, []llm.Message, *llm.ChatOptions) (*llm.Response, error) {
	return &llm.Response{Content: p.content, Usage: llm.Usage{PromptTokens: 1200, CompletionTokens: 400}}, nil
}

type recordingAdapter struct {
	id  models.ProviderID
	res func() models.ProviderResult

	mu     sync.Mutex
	prompt string
	calls  int
}

func (r *recordingAdapter) ID() models.ProviderID { return r.id }

func (r *recordingAdapter) Invoke(_ context.Context, prompt string, _ models.ResearchRequest) models.ProviderResult {
	r.mu.Lock()
	r.prompt = prompt
	r.calls++
	r.mu.Unlock()
	return r.res()
}

func newEngine(t *testing.T, client llm.LLMProvider, adapters ...provider.Adapter) *Engine {
	t.Helper()
	reg, err := provider.NewRegistry(adapters...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	factory := func(string) (llm.LLMProvider, error) { return client, nil }
	orch := agent.NewPromptOrchestrator(factory, agent.OrchestratorConfig{Tier: cost.TierFast, Timeout: time.Second}, nil)
	disp := dispatch.New(reg, dispatch.Options{Timeout: time.Second}, nil)
	return NewEngine(orch, disp, aggregate.New(nil), nil)
}

func sentimentAdapter(id models.ProviderID, score float64) *recordingAdapter {
	return &recordingAdapter{id: id, res: func() models.ProviderResult {
		usage := cost.Usage(500, 200, cost.ProviderRates[id])
		return models.SuccessResult(id, &models.SentimentRecord{Score: score, Label: models.LabelNeutral}, &usage)
	}}
}

var creds = models.Credentials{Anthropic: "sk-ant", XAI: "xai", OpenAI: "sk", Gemini: "gm"}

// ════════════════════════════════════════════════════════════════════
// End-to-end
// ════════════════════════════════════════════════════════════════════

func TestScanWithUnreachableOrchestrator(t *testing.T) {
	grok := sentimentAdapter(models.ProviderGrok, 0.6)
	openai := &recordingAdapter{id: models.ProviderOpenAI, res: func() models.ProviderResult {
		return models.FailedResult(models.ProviderOpenAI, models.ErrorRateLimited, "429")
	}}
	gemini := sentimentAdapter(models.ProviderGemini, 0.2)
	e := newEngine(t, unreachable{}, grok, openai, gemini)

	req := models.NewResearchRequest("ATYR", "aTyr Pharma", "biotech", 6.42, creds)

	var mu sync.Mutex
	var events []EventType
	report, err := e.Scan(context.Background(), req, func(ev Event) {
		mu.Lock()
		events = append(events, ev.Type)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	fallback := agent.Fallback(req)
	for _, a := range []*recordingAdapter{grok, openai, gemini} {
		if a.calls != 1 {
			t.Errorf("%s invoked %d times", a.id, a.calls)
		}
		if a.prompt != fallback.PromptFor(a.id) {
			t.Errorf("%s prompt = %q, want fallback %q", a.id, a.prompt, fallback.PromptFor(a.id))
		}
	}

	if report.Instructions.Source != models.SourceFallback || report.Instructions.CompanyType != models.CompanyOther {
		t.Errorf("Instructions = %+v", report.Instructions)
	}
	for _, c := range report.CostBreakdown {
		if c.Stage == models.StageOrchestration {
			t.Errorf("fallback orchestration was billed: %+v", c)
		}
	}
	if len(report.CostBreakdown) != 2 {
		t.Errorf("CostBreakdown = %+v", report.CostBreakdown)
	}
	if report.ProviderStatus[models.ProviderOpenAI] != models.StatusFailed {
		t.Errorf("openai status = %q", report.ProviderStatus[models.ProviderOpenAI])
	}
	if report.Aggregate == nil || report.Aggregate.Score != 0.4 || report.Aggregate.Label != models.LabelBullish {
		t.Errorf("Aggregate = %+v", report.Aggregate)
	}

	if len(events) != 5 || events[0] != EventPlanned || events[4] != EventComplete {
		t.Errorf("events = %v", events)
	}
}

func TestScanWithModelInstructions(t *testing.T) {
	plan := `Here is the plan:
{"companyType":"biotech","keyTopics":["efzofitimod","sarcoidosis trial"],
 "grokPrompt":"X posts on $ATYR trial","openaiPrompt":"News on aTyr (ATYR)","geminiPrompt":"Reddit on ATYR"}`
	grok := sentimentAdapter(models.ProviderGrok, -0.5)
	e := newEngine(t, planner{content: plan}, grok)

	req := models.NewResearchRequest("ATYR", "aTyr Pharma", "biotech", 6.42, creds)
	report, err := e.Scan(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if grok.prompt != "X posts on $ATYR trial" {
		t.Errorf("grok prompt = %q", grok.prompt)
	}
	if report.Instructions.Source != models.SourceModel || report.Instructions.CompanyType != models.CompanyBiotech {
		t.Errorf("Instructions = %+v", report.Instructions)
	}
	want := cost.Cost(1200, 400, cost.OrchestratorRates[cost.TierFast]).
		Add(cost.Cost(500, 200, cost.ProviderRates[models.ProviderGrok])).
		InexactFloat64()
	if report.TotalCostUSD != want {
		t.Errorf("TotalCostUSD = %v, want %v", report.TotalCostUSD, want)
	}
	if report.Aggregate.Label != models.LabelBearish {
		t.Errorf("Label = %q", report.Aggregate.Label)
	}
}

func TestScanNoCredentials(t *testing.T) {
	notConfigured := func(id models.ProviderID) *recordingAdapter {
		return &recordingAdapter{id: id, res: func() models.ProviderResult { return models.NotConfiguredResult(id) }}
	}
	e := newEngine(t, unreachable{},
		notConfigured(models.ProviderGrok), notConfigured(models.ProviderOpenAI), notConfigured(models.ProviderGemini))

	report, err := e.Scan(context.Background(), models.NewResearchRequest("ATYR", "", "", 0, models.Credentials{}), nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if report.Aggregate != nil {
		t.Errorf("Aggregate = %+v, want nil", report.Aggregate)
	}
	if len(report.ProviderStatus) != 3 || report.TotalCostUSD != 0 {
		t.Errorf("status = %v cost = %v", report.ProviderStatus, report.TotalCostUSD)
	}
}

func TestScanRejectsInvalidSymbol(t *testing.T) {
	e := newEngine(t, unreachable{})
	_, err := e.Scan(context.Background(), models.NewResearchRequest("  ", "", "", 0, models.Credentials{}), nil)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestNewEngineFromConfig(t *testing.T) {
	enabled := config.ModelProvider{Enabled: true}
	cfg := &config.Config{
		Orchestrator: config.OrchestratorConfig{Tier: "premium", TimeoutSec: 5},
		Providers: config.ProvidersConfig{
			TimeoutSec: 5,
			Grok:       enabled,
			OpenAI:     enabled,
			Gemini:     config.ModelProvider{Enabled: true, TimeoutSec: 2},
			News:       config.NewsConfig{Enabled: true, LookbackDays: 7},
		},
	}

	e, err := NewEngineFromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngineFromConfig: %v", err)
	}
	if got := e.Providers(); len(got) != 4 {
		t.Errorf("Providers = %v", got)
	}
	if e.OrchestratorModel() != cost.OrchestratorRates[cost.TierPremium].Model {
		t.Errorf("OrchestratorModel = %q", e.OrchestratorModel())
	}

	// Without any credential every slot is NotConfigured and the
	// orchestrator falls back, with no network access.
	report, err := e.Scan(context.Background(), models.NewResearchRequest("ATYR", "", "", 0, models.Credentials{}), nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	for id, s := range report.ProviderStatus {
		if s != models.StatusNotConfigured {
			t.Errorf("%s = %q", id, s)
		}
	}
	if report.Instructions.Source != models.SourceFallback {
		t.Errorf("Source = %q", report.Instructions.Source)
	}
}
