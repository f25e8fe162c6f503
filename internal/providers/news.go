package providers

import (
	"context"

	"github.com/seenimoa/tickerscan/internal/provider"
	"github.com/seenimoa/tickerscan/pkg/models"
)

// NewsSlot fills the news provider slot: the keyed primary source when a
// Finnhub credential is present, otherwise the keyless fallback if one is
// configured, otherwise NotConfigured.
type NewsSlot struct {
	primary  provider.Adapter
	fallback provider.Adapter
}

// NewNewsSlot creates a news slot. fallback may be nil.
func NewNewsSlot(primary, fallback provider.Adapter) *NewsSlot {
	return &NewsSlot{primary: primary, fallback: fallback}
}

func (s *NewsSlot) ID() models.ProviderID { return models.ProviderNews }

// Invoke routes the call to the source selected by the credentials.
func (s *NewsSlot) Invoke(ctx context.Context, prompt string, req models.ResearchRequest) models.ProviderResult {
	switch {
	case req.Credentials.For(models.ProviderNews) != "" && s.primary != nil:
		return s.primary.Invoke(ctx, prompt, req)
	case s.fallback != nil:
		return s.fallback.Invoke(ctx, prompt, req)
	default:
		return models.NotConfiguredResult(models.ProviderNews)
	}
}
