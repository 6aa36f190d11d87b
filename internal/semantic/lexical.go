package semantic

import (
	"context"
	"strings"
)

// LexicalSimilarity scores two texts by longest-common-subsequence overlap of
// their lowercased word tokens. It makes no external calls, which makes it
// the fallback when embeddings are disabled or unsupported by the provider.
type LexicalSimilarity struct{}

// NewLexicalSimilarity creates a lexical similarity scorer
func NewLexicalSimilarity() *LexicalSimilarity {
	return &LexicalSimilarity{}
}

// Score implements Similarity
func (s *LexicalSimilarity) Score(ctx context.Context, a, b string) (float64, error) {
	return LexicalRatio(a, b), nil
}

// LexicalRatio returns 2*LCS/(len(a)+len(b)) over word tokens, in [0,1].
// Two empty texts are identical by convention; one empty text matches nothing.
func LexicalRatio(a, b string) float64 {
	ta := tokenize(a)
	tb := tokenize(b)

	if len(ta) == 0 && len(tb) == 0 {
		return 1.0
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	lcs := lcsLength(ta, tb)
	return 2.0 * float64(lcs) / float64(len(ta)+len(tb))
}

func tokenize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?()[]\"'")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// lcsLength computes the longest common subsequence length with a two-row
// table, keeping memory linear in the shorter input.
func lcsLength(a, b []string) int {
	if len(b) > len(a) {
		a, b = b, a
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
