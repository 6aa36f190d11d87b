package semantic

import (
	"context"
	"fmt"
	"math"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/llm"
)

// EmbeddingSimilarity scores texts by cosine similarity of their embedding
// vectors. One Embed call covers both texts.
type EmbeddingSimilarity struct {
	embedder llm.Embedder
}

// NewEmbeddingSimilarity creates an embedding-backed similarity scorer
func NewEmbeddingSimilarity(embedder llm.Embedder) *EmbeddingSimilarity {
	return &EmbeddingSimilarity{embedder: embedder}
}

// Score implements Similarity
func (s *EmbeddingSimilarity) Score(ctx context.Context, a, b string) (float64, error) {
	vectors, err := s.embedder.Embed(ctx, []string{a, b})
	if err != nil {
		return 0, fmt.Errorf("embed texts: %w", err)
	}
	if len(vectors) != 2 {
		return 0, fmt.Errorf("expected 2 vectors, got %d", len(vectors))
	}

	return Cosine(vectors[0], vectors[1]), nil
}

// Cosine returns the cosine similarity of two vectors, clamped to [0,1].
// Mismatched or zero-norm vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case cos < 0:
		return 0
	case cos > 1:
		return 1
	default:
		return cos
	}
}
