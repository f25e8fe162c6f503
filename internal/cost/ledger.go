// Package cost converts metered unit counts into USD and accumulates the
// per-stage contributions of a research request.
package cost

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/tickerscan/pkg/models"
)

// Precision is the number of decimal places costs are rounded to.
const Precision = 4

var thousand = decimal.NewFromInt(1000)

// Rates are a provider tier's published USD prices per thousand units.
type Rates struct {
	Model             string
	InputPerThousand  decimal.Decimal
	OutputPerThousand decimal.Decimal
}

// NewRates builds Rates from float prices.
func NewRates(model string, inputPerThousand, outputPerThousand float64) Rates {
	return Rates{
		Model:             model,
		InputPerThousand:  decimal.NewFromFloat(inputPerThousand),
		OutputPerThousand: decimal.NewFromFloat(outputPerThousand),
	}
}

// Tier selects the orchestrator model class.
type Tier string

const (
	TierPremium Tier = "premium"
	TierFast    Tier = "fast"
)

// OrchestratorRates holds the two orchestrator tiers.
var OrchestratorRates = map[Tier]Rates{
	TierPremium: NewRates("claude-sonnet-4-20250514", 0.003, 0.015),
	TierFast:    NewRates("claude-3-5-haiku-latest", 0.00025, 0.00125),
}

// ProviderRates holds the rates of the metered downstream providers.
var ProviderRates = map[models.ProviderID]Rates{
	models.ProviderGrok:   NewRates("grok-3-mini", 0.002, 0.010),
	models.ProviderOpenAI: NewRates("gpt-4o-mini", 0.00015, 0.0006),
	models.ProviderGemini: NewRates("gemini-2.0-flash", 0.000075, 0.0003),
}

// ModelRates holds published prices keyed by model family prefix. A model
// name matches the longest key it starts with, so dated releases such as
// "gpt-4o-mini-2024-07-18" resolve to their family.
var ModelRates = map[string]Rates{
	"claude-opus-4":     NewRates("claude-opus-4", 0.015, 0.075),
	"claude-sonnet-4":   NewRates("claude-sonnet-4", 0.003, 0.015),
	"claude-3-7-sonnet": NewRates("claude-3-7-sonnet", 0.003, 0.015),
	"claude-3-5-sonnet": NewRates("claude-3-5-sonnet", 0.003, 0.015),
	"claude-3-5-haiku":  NewRates("claude-3-5-haiku", 0.00025, 0.00125),
	"claude-haiku-4-5":  NewRates("claude-haiku-4-5", 0.001, 0.005),
	"grok-3-mini":       NewRates("grok-3-mini", 0.002, 0.010),
	"grok-3":            NewRates("grok-3", 0.003, 0.015),
	"grok-4":            NewRates("grok-4", 0.003, 0.015),
	"gpt-4o-mini":       NewRates("gpt-4o-mini", 0.00015, 0.0006),
	"gpt-4o":            NewRates("gpt-4o", 0.0025, 0.010),
	"gpt-4.1-mini":      NewRates("gpt-4.1-mini", 0.0004, 0.0016),
	"gpt-4.1":           NewRates("gpt-4.1", 0.002, 0.008),
	"gemini-2.0-flash":  NewRates("gemini-2.0-flash", 0.000075, 0.0003),
	"gemini-2.5-flash":  NewRates("gemini-2.5-flash", 0.0003, 0.0025),
	"gemini-2.5-pro":    NewRates("gemini-2.5-pro", 0.00125, 0.010),
	"gemini-1.5-pro":    NewRates("gemini-1.5-pro", 0.00125, 0.005),
}

// RatesFor returns the prices of model. When no ModelRates key matches, it
// returns fallback renamed to model and reports false. An empty model
// returns fallback unchanged.
func RatesFor(model string, fallback Rates) (Rates, bool) {
	if model == "" {
		return fallback, true
	}
	best := ""
	for prefix := range ModelRates {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		fallback.Model = model
		return fallback, false
	}
	r := ModelRates[best]
	r.Model = model
	return r, true
}

// ParseTier returns the tier for s, defaulting to TierFast.
func ParseTier(s string) Tier {
	if Tier(s) == TierPremium {
		return TierPremium
	}
	return TierFast
}

// Cost returns inputUnits/1000*input + outputUnits/1000*output rounded to
// Precision places. Negative counts are treated as zero.
func Cost(inputUnits, outputUnits int64, r Rates) decimal.Decimal {
	in := decimal.NewFromInt(max(inputUnits, 0)).Div(thousand).Mul(r.InputPerThousand)
	out := decimal.NewFromInt(max(outputUnits, 0)).Div(thousand).Mul(r.OutputPerThousand)
	return in.Add(out).Round(Precision)
}

// Usage builds a TokenUsage whose CostUSD is derived from the counts.
func Usage(inputUnits, outputUnits int64, r Rates) models.TokenUsage {
	return models.TokenUsage{
		InputUnits:  inputUnits,
		OutputUnits: outputUnits,
		CostUSD:     Cost(inputUnits, outputUnits, r).InexactFloat64(),
	}
}

// Ledger accumulates cost entries for one request. It is not safe for
// concurrent use.
type Ledger struct {
	entries []models.CostEntry
	total   decimal.Decimal
}

// Record adds usage for a stage. A nil usage (the stage did not run a
// metered call) is ignored.
func (l *Ledger) Record(stage string, provider models.ProviderID, usage *models.TokenUsage) {
	if usage == nil {
		return
	}
	l.entries = append(l.entries, models.CostEntry{Stage: stage, Provider: provider, Usage: *usage})
	l.total = l.total.Add(decimal.NewFromFloat(usage.CostUSD))
}

// Entries returns a copy of the recorded entries.
func (l *Ledger) Entries() []models.CostEntry {
	out := make([]models.CostEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Total returns the summed cost rounded to Precision places.
func (l *Ledger) Total() decimal.Decimal {
	return l.total.Round(Precision)
}

// TotalUSD returns Total as a float.
func (l *Ledger) TotalUSD() float64 {
	return l.Total().InexactFloat64()
}
