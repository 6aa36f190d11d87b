// Package qa turns retrieved paper chunks into grounded, cited answers.
package qa

import (
	"context"
	"fmt"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/llm"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/verify"
)

// Result is one generated answer with its parsed citations line
type Result struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Citations  string `json:"citations"`
	Model      string `json:"model,omitempty"`
	TokensUsed int    `json:"tokens_used,omitempty"`
}

// Generator produces answers from retrieved context chunks
type Generator struct {
	provider llm.Provider
}

// NewGenerator creates an answer generator backed by the given provider
func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

// Generate answers the question deterministically from the given chunks.
// With no chunks there is nothing to ground an answer in, so a canned
// response comes back without an inference call.
func (g *Generator) Generate(ctx context.Context, question string, chunks []model.ContextChunk) (*Result, error) {
	return g.GenerateWithTemperature(ctx, question, chunks, 0)
}

// GenerateWithTemperature answers the question under the given sampling
// temperature. The consistency check uses this to draw answer variants.
func (g *Generator) GenerateWithTemperature(ctx context.Context, question string, chunks []model.ContextChunk, temperature float64) (*Result, error) {
	if len(chunks) == 0 {
		return &Result{
			Question:  question,
			Answer:    NoContextAnswer,
			Citations: NoContextCitations,
		}, nil
	}

	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		System:      qaSystemPrompt,
		Prompt:      BuildQAPrompt(question, chunks),
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	answer, citations := ParseResponse(resp.Text)

	return &Result{
		Question:   question,
		Answer:     answer,
		Citations:  citations,
		Model:      resp.Model,
		TokensUsed: resp.TokensUsed,
	}, nil
}

// RegenerateFunc adapts the generator for consistency sampling: each call
// re-answers the question from the same chunks at the given temperature and
// returns only the answer body.
func (g *Generator) RegenerateFunc(chunks []model.ContextChunk, temperature float64) verify.RegenerateFunc {
	return func(ctx context.Context, question string) (string, error) {
		result, err := g.GenerateWithTemperature(ctx, question, chunks, temperature)
		if err != nil {
			return "", err
		}
		return result.Answer, nil
	}
}
