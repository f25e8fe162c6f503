// Package research runs the full pipeline for one request: the prompt
// orchestrator, the concurrent dispatch to every adapter, and the
// aggregation into a CompositeReport.
package research

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/seenimoa/tickerscan/internal/agent"
	"github.com/seenimoa/tickerscan/internal/aggregate"
	"github.com/seenimoa/tickerscan/internal/config"
	"github.com/seenimoa/tickerscan/internal/cost"
	"github.com/seenimoa/tickerscan/internal/dispatch"
	"github.com/seenimoa/tickerscan/internal/providers"
	"github.com/seenimoa/tickerscan/pkg/models"
	"github.com/seenimoa/tickerscan/pkg/utils"
)

// ErrInvalidRequest is returned for requests the pipeline cannot run.
var ErrInvalidRequest = errors.New("research: invalid request")

// EventType names a pipeline progress event.
type EventType string

const (
	EventPlanned  EventType = "planned"
	EventSettled  EventType = "settled"
	EventComplete EventType = "complete"
)

// Event reports pipeline progress. Exactly one of the payload fields is set.
type Event struct {
	Type         EventType                   `json:"type"`
	Symbol       string                      `json:"symbol"`
	Instructions *models.InstructionsSummary `json:"instructions,omitempty"`
	Result       *models.ProviderResult      `json:"result,omitempty"`
	Report       *models.CompositeReport     `json:"report,omitempty"`
}

// Listener receives progress events. Calls are serialized.
type Listener func(Event)

// Engine wires the three stages together.
type Engine struct {
	orchestrator *agent.PromptOrchestrator
	dispatcher   *dispatch.Dispatcher
	aggregator   *aggregate.Aggregator
	logger       *zap.Logger
}

// NewEngine assembles an engine from ready-made stages.
func NewEngine(o *agent.PromptOrchestrator, d *dispatch.Dispatcher, a *aggregate.Aggregator, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{orchestrator: o, dispatcher: d, aggregator: a, logger: logger}
}

// NewEngineFromConfig builds every stage from configuration.
func NewEngineFromConfig(cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg, err := providers.BuildAdapters(cfg, logger)
	if err != nil {
		return nil, err
	}

	timeouts := make(map[models.ProviderID]time.Duration)
	for _, id := range reg.IDs() {
		timeouts[id] = cfg.Providers.TimeoutFor(id)
	}

	orch := agent.NewPromptOrchestrator(providers.OrchestratorClient(cfg.Orchestrator), agent.OrchestratorConfig{
		Tier:        cost.ParseTier(cfg.Orchestrator.Tier),
		Model:       cfg.Orchestrator.Model,
		MaxTokens:   cfg.Orchestrator.MaxTokens,
		Temperature: cfg.Orchestrator.Temperature,
		Timeout:     cfg.Orchestrator.Timeout(),
	}, logger)
	disp := dispatch.New(reg, dispatch.Options{Timeout: cfg.Providers.Timeout(), Timeouts: timeouts}, logger)
	return NewEngine(orch, disp, aggregate.New(logger), logger), nil
}

// Providers returns the dispatched provider slots in report order.
func (e *Engine) Providers() []models.ProviderID {
	return e.dispatcher.Providers()
}

// Scan runs one research request. It only fails on an invalid request;
// provider failures are reported inside the returned report.
func (e *Engine) Scan(ctx context.Context, req models.ResearchRequest, listen Listener) (*models.CompositeReport, error) {
	if err := utils.ValidateSymbol(req.Symbol); err != nil {
		return nil, errors.Join(ErrInvalidRequest, err)
	}
	if listen == nil {
		listen = func(Event) {}
	}
	log := e.logger.With(zap.String("symbol", req.Symbol))
	start := time.Now()

	instr := e.orchestrator.GeneratePrompts(ctx, req)
	listen(Event{Type: EventPlanned, Symbol: req.Symbol, Instructions: &models.InstructionsSummary{
		CompanyType: instr.CompanyType,
		KeyTopics:   instr.KeyTopics,
		Source:      instr.Source,
	}})

	results := e.dispatcher.Dispatch(ctx, instr, req, func(res models.ProviderResult) {
		listen(Event{Type: EventSettled, Symbol: req.Symbol, Result: &res})
	})

	report := e.aggregator.Synthesize(req, instr, results)
	listen(Event{Type: EventComplete, Symbol: req.Symbol, Report: report})

	log.Info("scan complete",
		zap.String("instructions", string(instr.Source)),
		zap.Int("succeeded", len(report.Succeeded())),
		zap.Float64("cost_usd", report.TotalCostUSD),
		zap.Duration("duration", time.Since(start)))
	return report, nil
}

// OrchestratorModel names the model used for planning, for status output.
func (e *Engine) OrchestratorModel() string {
	return e.orchestrator.Model()
}
