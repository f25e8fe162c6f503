package models

import "time"

// AggregateSentiment is the composite opinion across succeeded providers.
type AggregateSentiment struct {
	Score          float64      `json:"score"`
	Label          Label        `json:"label"`
	Contributors   []ProviderID `json:"contributors"`
	MeanConfidence float64      `json:"mean_confidence,omitempty"`
}

// CostEntry is one metered contribution to a report's total cost.
type CostEntry struct {
	Stage    string     `json:"stage"`
	Provider ProviderID `json:"provider"`
	Usage    TokenUsage `json:"usage"`
}

// Stage names used in cost breakdowns.
const (
	StageOrchestration = "orchestration"
	StageDispatch      = "dispatch"
)

// InstructionsSummary is the part of OrchestratorInstructions kept in a report.
type InstructionsSummary struct {
	CompanyType CompanyType       `json:"company_type"`
	KeyTopics   []string          `json:"key_topics"`
	Source      InstructionSource `json:"source"`
}

// CompositeReport is the final artifact of a research request. Aggregate
// is nil when no provider produced an opinion.
type CompositeReport struct {
	ID             string                `json:"id"`
	Symbol         string                `json:"symbol"`
	CompanyName    string                `json:"company_name"`
	Instructions   InstructionsSummary   `json:"instructions"`
	ProviderStatus map[ProviderID]Status `json:"provider_status"`
	Results        []ProviderResult      `json:"results"`
	Aggregate      *AggregateSentiment   `json:"aggregate,omitempty"`
	TotalCostUSD   float64               `json:"total_cost_usd"`
	CostBreakdown  []CostEntry           `json:"cost_breakdown"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

// Result returns the settled result of the given provider.
func (r *CompositeReport) Result(id ProviderID) (ProviderResult, bool) {
	for _, res := range r.Results {
		if res.Provider == id {
			return res, true
		}
	}
	return ProviderResult{}, false
}

// Succeeded returns the providers that settled with a payload, in result
// order.
func (r *CompositeReport) Succeeded() []ProviderID {
	var ids []ProviderID
	for _, res := range r.Results {
		if res.Succeeded() {
			ids = append(ids, res.Provider)
		}
	}
	return ids
}
