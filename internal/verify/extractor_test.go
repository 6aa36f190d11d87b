package verify

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/llm"
)

// scriptedRule maps a prompt substring to a canned response
type scriptedRule struct {
	match string
	text  string
	err   error
}

// scriptedProvider implements llm.Provider for testing. Rules are evaluated
// in order; the first match wins.
type scriptedProvider struct {
	rules    []scriptedRule
	fallback string
	calls    atomic.Int32
}

func (p *scriptedProvider) Name() string {
	return "scripted"
}

func (p *scriptedProvider) IsAvailable(ctx context.Context) bool {
	return true
}

func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.calls.Add(1)
	for _, rule := range p.rules {
		if strings.Contains(req.Prompt, rule.match) {
			if rule.err != nil {
				return nil, rule.err
			}
			return &llm.CompletionResponse{Text: rule.text, Model: "scripted-model", TokensUsed: 10}, nil
		}
	}
	return &llm.CompletionResponse{Text: p.fallback, Model: "scripted-model", TokensUsed: 10}, nil
}

func TestClaimExtractor_Extract_Success(t *testing.T) {
	provider := &scriptedProvider{
		rules: []scriptedRule{
			{
				match: "Extract 3-5 key factual claims",
				text:  `["The model uses eight attention heads", "Training took twelve days"]`,
			},
		},
	}

	extractor := NewClaimExtractor(provider)
	answer := "The model uses eight attention heads. Training took twelve days."

	claims, err := extractor.Extract(context.Background(), answer)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(claims) != 2 {
		t.Fatalf("Expected 2 claims, got %d", len(claims))
	}
	if claims[0].Text != "The model uses eight attention heads" {
		t.Errorf("Unexpected first claim: %q", claims[0].Text)
	}
	if claims[0].AnswerHash == "" {
		t.Error("Expected answer hash to be set")
	}
	if claims[0].Sentence != 0 {
		t.Errorf("Expected first claim to map to sentence 0, got %d", claims[0].Sentence)
	}
	if claims[1].Sentence != 1 {
		t.Errorf("Expected second claim to map to sentence 1, got %d", claims[1].Sentence)
	}
}

func TestClaimExtractor_Extract_FencedResponse(t *testing.T) {
	provider := &scriptedProvider{
		fallback: "```json\n[\"claim one\", \"claim two\"]\n```",
	}

	extractor := NewClaimExtractor(provider)

	claims, err := extractor.Extract(context.Background(), "Some answer text here.")
	if err != nil {
		t.Fatalf("Expected fenced JSON to parse, got %v", err)
	}
	if len(claims) != 2 {
		t.Errorf("Expected 2 claims, got %d", len(claims))
	}
}

func TestClaimExtractor_Extract_EmptyAnswer(t *testing.T) {
	provider := &scriptedProvider{}
	extractor := NewClaimExtractor(provider)

	claims, err := extractor.Extract(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Expected no error for empty answer, got %v", err)
	}
	if len(claims) != 0 {
		t.Errorf("Expected no claims, got %d", len(claims))
	}
	if provider.calls.Load() != 0 {
		t.Errorf("Expected no inference call for empty answer, got %d", provider.calls.Load())
	}
}

func TestClaimExtractor_Extract_ProviderError(t *testing.T) {
	provider := &scriptedProvider{
		rules: []scriptedRule{
			{match: "Extract", err: errors.New("connection refused")},
		},
	}

	extractor := NewClaimExtractor(provider)

	_, err := extractor.Extract(context.Background(), "Some answer.")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Errorf("Expected ExtractionError, got %T", err)
	}
}

func TestClaimExtractor_Extract_UnparseableResponse(t *testing.T) {
	provider := &scriptedProvider{
		fallback: "I could not find any claims in this answer.",
	}

	extractor := NewClaimExtractor(provider)

	_, err := extractor.Extract(context.Background(), "Some answer.")
	if err == nil {
		t.Fatal("Expected error for unparseable response, got nil")
	}

	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Errorf("Expected ExtractionError, got %T", err)
	}
}

func TestClaimExtractor_Extract_EmptyList(t *testing.T) {
	provider := &scriptedProvider{
		fallback: "[]",
	}

	extractor := NewClaimExtractor(provider)

	_, err := extractor.Extract(context.Background(), "Some answer.")
	if err == nil {
		t.Fatal("Expected error for empty claim list, got nil")
	}
}

func TestParseClaimList_SurroundingProse(t *testing.T) {
	claims, err := parseClaimList(`Here are the claims: ["a", "b", "c"] as requested.`)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(claims) != 3 {
		t.Errorf("Expected 3 claims, got %d", len(claims))
	}
}
