// Package dispatch fans a prompt set out to every registered adapter and
// joins on full completion. Each adapter runs under its own deadline; a
// slow adapter settles as TimedOut without holding up or canceling its
// siblings.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/tickerscan/internal/provider"
	"github.com/seenimoa/tickerscan/pkg/models"
)

// DefaultTimeout bounds an adapter call when no timeout is configured.
const DefaultTimeout = 45 * time.Second

// Observer receives each result as its slot settles. Calls are serialized.
type Observer func(models.ProviderResult)

// Options configures a Dispatcher.
type Options struct {
	// Timeout is the per-adapter deadline.
	Timeout time.Duration
	// Timeouts overrides Timeout for individual providers.
	Timeouts map[models.ProviderID]time.Duration
}

// Dispatcher invokes the adapters of a registry concurrently.
type Dispatcher struct {
	registry *provider.Registry
	opts     Options
	logger   *zap.Logger
}

// New creates a dispatcher over the registry's adapters.
func New(registry *provider.Registry, opts Options, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Dispatcher{
		registry: registry,
		opts:     opts,
		logger:   logger.With(zap.String("component", "dispatcher")),
	}
}

// TimeoutFor returns the deadline applied to a provider's call.
func (d *Dispatcher) TimeoutFor(id models.ProviderID) time.Duration {
	if t, ok := d.opts.Timeouts[id]; ok && t > 0 {
		return t
	}
	return d.opts.Timeout
}

// Providers returns the dispatched provider IDs in result order.
func (d *Dispatcher) Providers() []models.ProviderID {
	return d.registry.IDs()
}

// Dispatch invokes every adapter with its prompt from instr and returns
// one result per adapter, in registry order, once all have settled.
// Canceling ctx signals every outstanding call; unsettled slots are then
// reported as canceled.
func (d *Dispatcher) Dispatch(ctx context.Context, instr models.OrchestratorInstructions, req models.ResearchRequest, observe Observer) []models.ProviderResult {
	adapters := d.registry.Adapters()
	results := make([]models.ProviderResult, len(adapters))
	log := d.logger.With(zap.String("symbol", req.Symbol))
	start := time.Now()

	var (
		g       errgroup.Group
		notify  sync.Mutex
		settled = func(res models.ProviderResult) {
			if observe == nil {
				return
			}
			notify.Lock()
			defer notify.Unlock()
			observe(res)
		}
	)

	for i, a := range adapters {
		g.Go(func() error {
			res := d.invoke(ctx, a, instr.PromptFor(a.ID()), req)
			results[i] = res
			log.Debug("adapter settled",
				zap.String("provider", string(res.Provider)),
				zap.String("status", string(res.Status)),
				zap.Duration("duration", res.Duration))
			settled(res)
			return nil
		})
	}
	_ = g.Wait()

	log.Info("dispatch complete",
		zap.Int("adapters", len(results)),
		zap.Int("succeeded", countSucceeded(results)),
		zap.Duration("duration", time.Since(start)))
	return results
}

// invoke runs one adapter under its own deadline. The call runs in its own
// goroutine so a hung adapter that ignores its context is abandoned when
// the deadline passes rather than waited on.
func (d *Dispatcher) invoke(ctx context.Context, a provider.Adapter, prompt string, req models.ResearchRequest) models.ProviderResult {
	id := a.ID()
	timeout := d.TimeoutFor(id)
	slotCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	start := time.Now()

	done := make(chan models.ProviderResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- models.FailedResult(id, models.ErrorTransport, fmt.Sprintf("adapter panic: %v", r))
			}
		}()
		done <- a.Invoke(slotCtx, prompt, req)
	}()

	res := await(ctx, slotCtx, id, timeout, done)
	res.Provider = id
	if res.Duration == 0 {
		res.Duration = time.Since(start)
	}
	return res
}

// await waits for the adapter's result or the end of its slot. A result
// that is already delivered when the slot ends is kept.
func await(parent, slotCtx context.Context, id models.ProviderID, timeout time.Duration, done <-chan models.ProviderResult) models.ProviderResult {
	var res models.ProviderResult
	select {
	case res = <-done:
	case <-slotCtx.Done():
		select {
		case res = <-done:
		default:
			return expired(parent, id, timeout)
		}
	}
	// An adapter that gave up because its context ended is reported the
	// same way as one that was abandoned.
	if !res.Succeeded() && slotCtx.Err() != nil {
		usage := res.Usage
		res = expired(parent, id, timeout)
		res.Usage = usage
	}
	return res
}

// expired distinguishes the caller abandoning the request from the slot
// missing its own deadline.
func expired(parent context.Context, id models.ProviderID, timeout time.Duration) models.ProviderResult {
	if err := parent.Err(); err != nil {
		return models.FailedResult(id, models.ErrorCanceled, err.Error())
	}
	return models.TimedOutResult(id, timeout)
}

func countSucceeded(results []models.ProviderResult) int {
	n := 0
	for _, r := range results {
		if r.Succeeded() {
			n++
		}
	}
	return n
}
