package pipeline

import (
	"context"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/llm"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/worker"
)

// limitedProvider applies the per-provider rate limit in front of every
// inference call. Every component downstream of the pipeline talks to the
// provider through this wrapper.
type limitedProvider struct {
	provider llm.Provider
	limiter  *worker.Limiter
}

func newLimitedProvider(provider llm.Provider, limiter *worker.Limiter) *limitedProvider {
	return &limitedProvider{
		provider: provider,
		limiter:  limiter,
	}
}

func (p *limitedProvider) Name() string {
	return p.provider.Name()
}

func (p *limitedProvider) IsAvailable(ctx context.Context) bool {
	return p.provider.IsAvailable(ctx)
}

func (p *limitedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := p.limiter.Wait(ctx, p.provider.Name()); err != nil {
		return nil, err
	}
	return p.provider.Complete(ctx, req)
}

// limitedEmbedder applies the same rate limit to embedding calls
type limitedEmbedder struct {
	embedder llm.Embedder
	limiter  *worker.Limiter
	name     string
}

func newLimitedEmbedder(embedder llm.Embedder, limiter *worker.Limiter, name string) *limitedEmbedder {
	return &limitedEmbedder{
		embedder: embedder,
		limiter:  limiter,
		name:     name,
	}
}

func (e *limitedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.limiter.Wait(ctx, e.name); err != nil {
		return nil, err
	}
	return e.embedder.Embed(ctx, texts)
}
