// Package semantic scores agreement between two texts. The consistency
// verifier uses it to compare an original answer against regenerated ones.
package semantic

import "context"

// Similarity scores how closely two texts agree, in [0,1].
// 1 means the texts say the same thing, 0 means no overlap at all.
type Similarity interface {
	Score(ctx context.Context, a, b string) (float64, error)
}
