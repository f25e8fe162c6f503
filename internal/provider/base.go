package provider

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/seenimoa/tickerscan/pkg/models"
)

// BaseAdapter provides common functionality for adapter implementations.
// Embed it in concrete adapters to get result construction, logging and
// optional rate limiting.
type BaseAdapter struct {
	id      models.ProviderID
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewBaseAdapter creates a base adapter. A nil logger is replaced by a
// no-op logger.
func NewBaseAdapter(id models.ProviderID, logger *zap.Logger) BaseAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BaseAdapter{id: id, logger: logger.With(zap.String("provider", string(id)))}
}

// WithRateLimit attaches a token-bucket limiter consulted by RateLimit.
func (b *BaseAdapter) WithRateLimit(limiter *rate.Limiter) {
	b.limiter = limiter
}

func (b *BaseAdapter) ID() models.ProviderID { return b.id }

// Logger returns the adapter-scoped logger.
func (b *BaseAdapter) Logger() *zap.Logger { return b.logger }

// RateLimit waits for a request slot. Without a limiter it returns at once.
func (b *BaseAdapter) RateLimit(ctx context.Context) error {
	if b.limiter == nil {
		return nil
	}
	return b.limiter.Wait(ctx)
}

// NotConfigured returns the fast-path result for a missing credential.
func (b *BaseAdapter) NotConfigured() models.ProviderResult {
	b.logger.Debug("skipping adapter without credential")
	return models.NotConfiguredResult(b.id)
}

// Fail converts err into a classified failed result.
func (b *BaseAdapter) Fail(err error, started time.Time) models.ProviderResult {
	kind := Classify(err)
	b.logger.Warn("adapter call failed",
		zap.String("error_kind", string(kind)),
		zap.Duration("duration", time.Since(started)),
		zap.Error(err))
	res := models.FailedResult(b.id, kind, err.Error())
	res.Duration = time.Since(started)
	return res
}

// Succeed builds a successful result.
func (b *BaseAdapter) Succeed(payload models.Payload, usage *models.TokenUsage, started time.Time) models.ProviderResult {
	res := models.SuccessResult(b.id, payload, usage)
	res.Duration = time.Since(started)
	fields := []zap.Field{zap.Duration("duration", res.Duration)}
	if usage != nil {
		fields = append(fields, zap.Float64("cost_usd", usage.CostUSD))
	}
	b.logger.Debug("adapter call succeeded", fields...)
	return res
}
