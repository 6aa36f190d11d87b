package semantic

import (
	"context"
	"math"
	"testing"
)

func TestLexicalRatio_IdenticalTexts(t *testing.T) {
	text := "The model uses eight attention heads per layer."

	if got := LexicalRatio(text, text); got != 1.0 {
		t.Errorf("Expected 1.0 for identical texts, got %v", got)
	}
}

func TestLexicalRatio_CaseAndPunctuation(t *testing.T) {
	a := "The model uses eight attention heads."
	b := "the model uses eight attention heads"

	if got := LexicalRatio(a, b); got != 1.0 {
		t.Errorf("Expected 1.0 ignoring case and punctuation, got %v", got)
	}
}

func TestLexicalRatio_DisjointTexts(t *testing.T) {
	a := "alpha beta gamma"
	b := "delta epsilon zeta"

	if got := LexicalRatio(a, b); got != 0.0 {
		t.Errorf("Expected 0.0 for disjoint texts, got %v", got)
	}
}

func TestLexicalRatio_BothEmpty(t *testing.T) {
	if got := LexicalRatio("", ""); got != 1.0 {
		t.Errorf("Expected 1.0 for two empty texts, got %v", got)
	}
}

func TestLexicalRatio_OneEmpty(t *testing.T) {
	if got := LexicalRatio("some text", ""); got != 0.0 {
		t.Errorf("Expected 0.0 when one text is empty, got %v", got)
	}
}

func TestLexicalRatio_PartialOverlap(t *testing.T) {
	// LCS of [the model uses attention] and [the model applies attention]
	// is 3 tokens, so the ratio is 2*3/(4+4) = 0.75
	a := "the model uses attention"
	b := "the model applies attention"

	got := LexicalRatio(a, b)
	if math.Abs(got-0.75) > 1e-9 {
		t.Errorf("Expected 0.75, got %v", got)
	}
}

func TestLexicalRatio_Symmetric(t *testing.T) {
	a := "training required twelve days on eight GPUs"
	b := "the paper reports twelve days of training"

	if LexicalRatio(a, b) != LexicalRatio(b, a) {
		t.Error("Expected ratio to be symmetric")
	}
}

func TestLexicalRatio_RangeProperty(t *testing.T) {
	pairs := [][2]string{
		{"a b c", "a b c d e"},
		{"one two", "two one"},
		{"completely different", "nothing shared here"},
		{"", "x"},
	}

	for _, p := range pairs {
		got := LexicalRatio(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("Ratio out of range for %q vs %q: %v", p[0], p[1], got)
		}
	}
}

func TestLexicalSimilarity_Score(t *testing.T) {
	s := NewLexicalSimilarity()

	got, err := s.Score(context.Background(), "same words here", "same words here")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != 1.0 {
		t.Errorf("Expected 1.0, got %v", got)
	}
}
