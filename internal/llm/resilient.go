// File path: internal/llm/resilient.go
package llm

import (
	"context"
	"sync/atomic"

	"github.com/mtorres-dev/hackmate/internal/common"
	"github.com/mtorres-dev/hackmate/internal/llm/providers"
)

// minChatLength is the shortest chat completion treated as a real answer.
// Anything at or below it counts as degenerate and trips the fallback.
const minChatLength = 10

// Resilient composes the real provider with the deterministic local
// fallback. The fallback flag transitions REAL->FALLBACK monotonically
// during generation calls; only an explicit successful health check resets
// it. Two concurrent requests both observing REAL and both failing over is
// a benign, idempotent race, so an atomic flag is the only synchronization.
type Resilient struct {
	real           providers.Provider
	fallback       *providers.LocalProvider
	fallbackActive atomic.Bool
}

// NewResilient wraps a real provider, which may be nil when construction
// of the real backend failed; the facade then starts in fallback mode.
func NewResilient(real providers.Provider) *Resilient {
	r := &Resilient{real: real, fallback: providers.NewLocalProvider()}
	if real == nil {
		common.Logger().Warn("llm: real provider unavailable, starting in fallback mode")
		r.fallbackActive.Store(true)
	}
	return r
}

func (r *Resilient) Chat(ctx context.Context, messages []providers.Message) (string, error) {
	if r.real != nil && !r.fallbackActive.Load() {
		text, err := r.real.Chat(ctx, messages)
		if err == nil && len(text) > minChatLength {
			return text, nil
		}
		common.Logger().Warn("llm: real chat degraded, switching to fallback", "provider", r.real.Name(), "error", err)
		r.fallbackActive.Store(true)
	}
	return r.fallback.Chat(ctx, messages)
}

func (r *Resilient) Embed(ctx context.Context, input []string) ([][]float32, error) {
	if r.real != nil && !r.fallbackActive.Load() {
		vectors, err := r.real.Embed(ctx, input)
		if err == nil && len(vectors) == len(input) && len(input) > 0 {
			return vectors, nil
		}
		if err == nil && len(input) == 0 {
			return vectors, nil
		}
		common.Logger().Warn("llm: real embedding degraded, switching to fallback", "provider", r.real.Name(), "error", err)
		r.fallbackActive.Store(true)
	}
	return r.fallback.Embed(ctx, input)
}

// HealthCheck probes the real backend and is the only path back from
// fallback to the real provider. The facade itself is always healthy: the
// local fallback cannot fail.
func (r *Resilient) HealthCheck(ctx context.Context) bool {
	if r.real != nil {
		vectors, err := r.real.Embed(ctx, []string{"ping"})
		if err == nil && len(vectors) > 0 && len(vectors[0]) > 0 {
			if r.fallbackActive.Swap(false) {
				common.Logger().Info("llm: real provider recovered, leaving fallback mode", "provider", r.real.Name())
			}
			return true
		}
		common.Logger().Warn("llm: health check against real provider failed", "error", err)
	}
	r.fallbackActive.Store(true)
	return true
}

// FallbackActive reports whether generation calls are currently served by
// the local fallback.
func (r *Resilient) FallbackActive() bool {
	return r.fallbackActive.Load()
}

func (r *Resilient) Name() string {
	if r.real != nil && !r.fallbackActive.Load() {
		return r.real.Name()
	}
	return r.fallback.Name()
}

var _ providers.Provider = (*Resilient)(nil)
