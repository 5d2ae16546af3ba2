package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/ragroute/internal/worker"
)

// GenerationService is the limiter key for generation calls
const GenerationService = "generation"

// RateLimited waits on a shared limiter before each completion
type RateLimited struct {
	Generator
	limiter *worker.Limiter
}

// NewRateLimited wraps g; a nil limiter returns g unchanged
func NewRateLimited(g Generator, limiter *worker.Limiter) Generator {
	if g == nil || limiter == nil {
		return g
	}
	return &RateLimited{Generator: g, limiter: limiter}
}

func (r *RateLimited) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := r.limiter.Wait(ctx, GenerationService); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return r.Generator.Complete(ctx, req)
}
