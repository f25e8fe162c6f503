// Package aggregate merges the settled provider results of one research
// request into a CompositeReport.
package aggregate

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seenimoa/tickerscan/internal/analysis/sentiment"
	"github.com/seenimoa/tickerscan/internal/cost"
	"github.com/seenimoa/tickerscan/pkg/models"
)

// Aggregator builds composite reports. It holds no per-request state.
type Aggregator struct {
	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock sets the time source used for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithIDGenerator sets the report ID source.
func WithIDGenerator(fn func() string) Option {
	return func(a *Aggregator) { a.newID = fn }
}

// New creates an Aggregator.
func New(logger *zap.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Aggregator{
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logger.With(zap.String("component", "aggregator")),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Synthesize builds the report for one request. It never fails: with no
// succeeded provider the report simply carries no Aggregate. The total
// cost covers the orchestration call (absent on the fallback path) and
// every metered adapter call, billed or not.
func (a *Aggregator) Synthesize(req models.ResearchRequest, instr models.OrchestratorInstructions, results []models.ProviderResult) *models.CompositeReport {
	var ledger cost.Ledger
	ledger.Record(models.StageOrchestration, models.ProviderOrchestrator, instr.Usage)

	status := make(map[models.ProviderID]models.Status, len(results))
	kept := make([]models.ProviderResult, len(results))
	for i, res := range results {
		status[res.Provider] = res.Status
		kept[i] = res
		ledger.Record(models.StageDispatch, res.Provider, res.Usage)
	}

	report := &models.CompositeReport{
		ID:          a.newID(),
		Symbol:      req.Symbol,
		CompanyName: req.CompanyName,
		Instructions: models.InstructionsSummary{
			CompanyType: instr.CompanyType,
			KeyTopics:   append([]string(nil), instr.KeyTopics...),
			Source:      instr.Source,
		},
		ProviderStatus: status,
		Results:        kept,
		Aggregate:      Summarize(results),
		TotalCostUSD:   ledger.TotalUSD(),
		CostBreakdown:  ledger.Entries(),
		GeneratedAt:    a.now().UTC(),
	}

	fields := []zap.Field{
		zap.String("symbol", req.Symbol),
		zap.Int("providers", len(results)),
		zap.Float64("cost_usd", report.TotalCostUSD),
	}
	if report.Aggregate != nil {
		fields = append(fields,
			zap.Float64("score", report.Aggregate.Score),
			zap.String("label", string(report.Aggregate.Label)))
	}
	a.logger.Info("report synthesized", fields...)
	return report
}

// Summarize returns the unweighted mean of the scores of succeeded
// providers, labeled by the shared threshold rule, or nil when no
// succeeded provider carries a score. Confidence is averaged over the
// sentiment records only and is informational.
func Summarize(results []models.ProviderResult) *models.AggregateSentiment {
	var (
		sum, confSum float64
		confN        int
		contributors []models.ProviderID
	)
	for _, res := range results {
		if !res.Succeeded() {
			continue
		}
		score, ok := res.Payload.SentimentScore()
		if !ok {
			continue
		}
		sum += score
		contributors = append(contributors, res.Provider)
		if rec, ok := res.Payload.(*models.SentimentRecord); ok {
			confSum += rec.Confidence
			confN++
		}
	}
	if len(contributors) == 0 {
		return nil
	}

	score := sentiment.Round(sum / float64(len(contributors)))
	agg := &models.AggregateSentiment{
		Score:        score,
		Label:        sentiment.LabelForScore(score),
		Contributors: contributors,
	}
	if confN > 0 {
		agg.MeanConfidence = sentiment.Round(confSum / float64(confN))
	}
	return agg
}
