package models

import (
	"strings"

	"github.com/seenimoa/tickerscan/pkg/utils"
)

// DefaultSector is used when a research request carries no sector.
const DefaultSector = "Unknown"

// CompanyType is the orchestrator's classification of the research subject.
type CompanyType string

const (
	CompanyBiotech    CompanyType = "biotech"
	CompanyTech       CompanyType = "tech"
	CompanyFinance    CompanyType = "finance"
	CompanyRetail     CompanyType = "retail"
	CompanyEnergy     CompanyType = "energy"
	CompanyHealthcare CompanyType = "healthcare"
	CompanyIndustrial CompanyType = "industrial"
	CompanyOther      CompanyType = "other"
)

// CompanyTypes lists the closed set of company classifications.
var CompanyTypes = []CompanyType{
	CompanyBiotech, CompanyTech, CompanyFinance, CompanyRetail,
	CompanyEnergy, CompanyHealthcare, CompanyIndustrial, CompanyOther,
}

// ParseCompanyType matches s (case-insensitive) against the closed set.
func ParseCompanyType(s string) (CompanyType, bool) {
	v := CompanyType(strings.ToLower(strings.TrimSpace(s)))
	for _, ct := range CompanyTypes {
		if ct == v {
			return ct, true
		}
	}
	return "", false
}

// Credentials holds the opaque per-provider API keys. An empty value means
// the provider is not configured.
type Credentials struct {
	Anthropic string `json:"-"`
	XAI       string `json:"-"`
	OpenAI    string `json:"-"`
	Gemini    string `json:"-"`
	Finnhub   string `json:"-"`
}

// For returns the credential used by the given provider.
func (c Credentials) For(id ProviderID) string {
	switch id {
	case ProviderOrchestrator:
		return c.Anthropic
	case ProviderGrok:
		return c.XAI
	case ProviderOpenAI:
		return c.OpenAI
	case ProviderGemini:
		return c.Gemini
	case ProviderNews:
		return c.Finnhub
	}
	return ""
}

// ResearchRequest describes one user-initiated scan. Build it with
// NewResearchRequest and do not modify it afterwards.
type ResearchRequest struct {
	Symbol       string      `json:"symbol"`
	CompanyName  string      `json:"company_name"`
	Sector       string      `json:"sector"`
	CurrentPrice float64     `json:"current_price"`
	Credentials  Credentials `json:"-"`
}

// NewResearchRequest normalizes its inputs: the symbol goes through
// utils.NormalizeSymbol, a blank company name falls back to the symbol and
// a blank sector to DefaultSector.
func NewResearchRequest(symbol, companyName, sector string, price float64, creds Credentials) ResearchRequest {
	symbol = utils.NormalizeSymbol(symbol)
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		companyName = symbol
	}
	sector = strings.TrimSpace(sector)
	if sector == "" {
		sector = DefaultSector
	}
	return ResearchRequest{
		Symbol:       symbol,
		CompanyName:  companyName,
		Sector:       sector,
		CurrentPrice: price,
		Credentials:  creds,
	}
}

// TokenUsage records metered units for one paid call. CostUSD is always
// computed by the cost ledger from the unit counts.
type TokenUsage struct {
	InputUnits  int64   `json:"input_units"`
	OutputUnits int64   `json:"output_units"`
	CostUSD     float64 `json:"cost_usd"`
}

// InstructionSource tells whether instructions came from the model or
// from the local fallback generator.
type InstructionSource string

const (
	SourceModel    InstructionSource = "model"
	SourceFallback InstructionSource = "fallback"
)

// OrchestratorInstructions is the prompt set produced once per request.
type OrchestratorInstructions struct {
	CompanyType CompanyType           `json:"company_type"`
	KeyTopics   []string              `json:"key_topics"`
	Prompts     map[ProviderID]string `json:"prompts"`
	Usage       *TokenUsage           `json:"usage,omitempty"`
	Source      InstructionSource     `json:"source"`
}

// PromptFor returns the tailored prompt for a downstream provider.
func (o OrchestratorInstructions) PromptFor(id ProviderID) string {
	return o.Prompts[id]
}

// IsFallback reports whether the instructions were produced locally.
func (o OrchestratorInstructions) IsFallback() bool {
	return o.Source == SourceFallback
}
