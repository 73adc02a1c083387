package ai

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/themescope/internal/core/ports/driven"
)

// Ensure the decorators implement their interfaces.
var (
	_ driven.LLMService       = (*rateLimitedLLM)(nil)
	_ driven.EmbeddingService = (*rateLimitedEmbedding)(nil)
)

// newLimiter returns a token bucket for requestsPerSecond, or nil when
// rate limiting is disabled. Burst is one request so concurrent theme
// workers are spaced evenly.
func newLimiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
}

// rateLimitedLLM waits for a token before every remote call.
type rateLimitedLLM struct {
	driven.LLMService
	limiter *rate.Limiter
}

// WithLLMRateLimit wraps svc so calls are spaced by requestsPerSecond.
// A non-positive rate returns svc unchanged.
func WithLLMRateLimit(svc driven.LLMService, requestsPerSecond float64) driven.LLMService {
	limiter := newLimiter(requestsPerSecond)
	if svc == nil || limiter == nil {
		return svc
	}
	return &rateLimitedLLM{LLMService: svc, limiter: limiter}
}

func (r *rateLimitedLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.LLMService.Generate(ctx, prompt, opts)
}

func (r *rateLimitedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.LLMService.Chat(ctx, messages, opts)
}

// rateLimitedEmbedding waits for a token before every remote call.
type rateLimitedEmbedding struct {
	driven.EmbeddingService
	limiter *rate.Limiter
}

// WithEmbeddingRateLimit wraps svc so calls are spaced by requestsPerSecond.
// A non-positive rate returns svc unchanged.
func WithEmbeddingRateLimit(svc driven.EmbeddingService, requestsPerSecond float64) driven.EmbeddingService {
	limiter := newLimiter(requestsPerSecond)
	if svc == nil || limiter == nil {
		return svc
	}
	return &rateLimitedEmbedding{EmbeddingService: svc, limiter: limiter}
}

func (r *rateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.EmbeddingService.Embed(ctx, text)
}

func (r *rateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.EmbeddingService.EmbedBatch(ctx, texts)
}
