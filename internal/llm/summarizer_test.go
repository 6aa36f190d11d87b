package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	response  *CompletionResponse
	err       error
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func testVerdict() model.HallucinationVerdict {
	return model.HallucinationVerdict{
		Question: "How many attention heads does the model use?",
		Answer:   "The model uses eight attention heads. [Chunk 2]",
		Score:    0.72,
		Tier:     model.TierHigh,
		Flagged:  true,
		Contributions: []model.Contribution{
			{Kind: model.SignalCitation, Weight: 0.4, Score: 1.0, Weighted: 0.4},
			{Kind: model.SignalNLI, Weight: 0.4, Score: 0.5, Weighted: 0.2},
			{Kind: model.SignalConsistency, Weight: 0.2, Score: 0.6, Weighted: 0.12},
		},
	}
}

func testChunks() []model.ContextChunk {
	return []model.ContextChunk{
		{ID: 1, Content: "The architecture stacks six identical layers."},
		{ID: 2, Content: "Each layer employs eight parallel attention heads."},
	}
}

func TestNewSummarizer_DisabledProvider(t *testing.T) {
	config := Config{
		Provider: "", // Empty = disabled
	}

	summarizer, err := NewSummarizer(config)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summarizer.provider != nil {
		t.Error("Expected provider to be nil when disabled")
	}

	if summarizer.IsEnabled() {
		t.Error("Expected summarizer to be disabled")
	}

	if summarizer.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}
}

func TestSummarizer_Explain_Disabled(t *testing.T) {
	summarizer := &Summarizer{
		provider: nil,
		config:   Config{},
	}

	summary, err := summarizer.Explain(context.Background(), testVerdict(), testChunks())

	if err != nil {
		t.Errorf("Expected no error when disabled, got %v", err)
	}

	if summary == nil {
		t.Fatal("Expected summary object")
	}

	if summary.Enabled {
		t.Error("Expected summary to be marked as disabled")
	}

	if summary.Text != "" {
		t.Error("Expected no text when disabled")
	}
}

func TestSummarizer_Explain_ProviderUnavailable(t *testing.T) {
	mockProvider := &MockProvider{
		name:      "test-provider",
		available: false, // Provider not available
	}

	summarizer := &Summarizer{
		provider: mockProvider,
		config:   Config{},
	}

	summary, err := summarizer.Explain(context.Background(), testVerdict(), testChunks())

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if summary == nil {
		t.Fatal("Expected summary object with warnings")
	}

	if summary.Enabled {
		t.Error("Expected summary to be marked as disabled")
	}

	if len(summary.Warnings) == 0 {
		t.Error("Expected warning about provider unavailability")
	}

	// Check warning message
	found := false
	for _, warning := range summary.Warnings {
		if strings.Contains(warning, "not available") {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected warning to mention provider unavailability")
	}
}

func TestSummarizer_Explain_Success(t *testing.T) {
	mockProvider := &MockProvider{
		name:      "test-provider",
		available: true,
		response: &CompletionResponse{
			Text:       "The answer cites Chunk 2, which was judged unsupported, and its claims could not be verified.",
			Model:      "test-model",
			TokensUsed: 150,
		},
	}

	summarizer := &Summarizer{
		provider: mockProvider,
		config:   Config{Model: "test-model"},
	}

	summary, err := summarizer.Explain(context.Background(), testVerdict(), testChunks())

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summary == nil {
		t.Fatal("Expected summary to be generated")
	}

	if !summary.Enabled {
		t.Error("Expected summary to be enabled")
	}

	if summary.Provider != "test-provider" {
		t.Errorf("Expected provider 'test-provider', got '%s'", summary.Provider)
	}

	if summary.Model != "test-model" {
		t.Errorf("Expected model 'test-model', got '%s'", summary.Model)
	}

	if summary.Text == "" {
		t.Error("Expected explanation text")
	}

	// Check warnings include token usage and reference verification
	foundTokens := false
	foundRefs := false
	for _, warning := range summary.Warnings {
		if strings.Contains(warning, "Tokens used") {
			foundTokens = true
		}
		if strings.Contains(warning, "Verified") && strings.Contains(warning, "references") {
			foundRefs = true
		}
	}

	if !foundTokens {
		t.Error("Expected warning about tokens used")
	}

	if !foundRefs {
		t.Error("Expected warning about verified chunk references")
	}
}

func TestSummarizer_Explain_ProviderError(t *testing.T) {
	mockProvider := &MockProvider{
		name:      "test-provider",
		available: true,
		err:       &mockError{msg: "API rate limit exceeded"},
	}

	summarizer := &Summarizer{
		provider: mockProvider,
		config:   Config{Model: "test-model"},
	}

	summary, err := summarizer.Explain(context.Background(), testVerdict(), testChunks())

	// Should not fail the verdict, just return a summary with warnings
	if err != nil {
		t.Errorf("Expected no error (graceful degradation), got %v", err)
	}

	if summary == nil {
		t.Fatal("Expected summary with error warning")
	}

	if !summary.Enabled {
		t.Error("Expected summary to be marked as enabled (but failed)")
	}

	if len(summary.Warnings) == 0 {
		t.Fatal("Expected warning about generation failure")
	}

	// Check warning mentions the error
	found := false
	for _, warning := range summary.Warnings {
		if strings.Contains(warning, "failed") && strings.Contains(warning, "rate limit") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected warning to mention error: %v", summary.Warnings)
	}
}

func TestSummarizer_Explain_CitationLeak(t *testing.T) {
	mockProvider := &MockProvider{
		name:      "test-provider",
		available: true,
		response: &CompletionResponse{
			Text:  "The answer relies on Chunk 9, which discusses the training corpus.",
			Model: "test-model",
		},
	}

	summarizer := &Summarizer{
		provider: mockProvider,
		config:   Config{},
	}

	// Chunk 9 is not in the supplied context
	summary, err := summarizer.Explain(context.Background(), testVerdict(), testChunks())

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summary.Text != "" {
		t.Error("Expected leaked explanation to be discarded")
	}

	found := false
	for _, warning := range summary.Warnings {
		if strings.Contains(warning, "citation leak") && strings.Contains(warning, "Chunk 9") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected citation leak warning, got %v", summary.Warnings)
	}
}

func TestRenderSeparateMarkdown_Success(t *testing.T) {
	summary := &model.VerdictSummary{
		Enabled:  true,
		Provider: "openai",
		Model:    "gpt-4-turbo",
		Text:     "This is the generated explanation content.",
		Warnings: []string{
			"Tokens used: 150",
			"Verified 2 chunk references against the supplied context",
		},
	}

	md := RenderSeparateMarkdown(summary)

	if md == "" {
		t.Fatal("Expected markdown to be generated")
	}

	// Check required sections
	requiredSections := []string{
		"# LLM Explanation",
		"GENERATED CONTENT",
		"openai",
		"gpt-4-turbo",
		"This is the generated explanation content.",
		"## Notes",
		"Tokens used: 150",
	}

	for _, section := range requiredSections {
		if !strings.Contains(md, section) {
			t.Errorf("Expected markdown to contain '%s'", section)
		}
	}

	// Check disclaimer is present
	if !strings.Contains(md, "determined independently") {
		t.Error("Expected disclaimer about independence from the LLM")
	}
}

func TestRenderSeparateMarkdown_NoText(t *testing.T) {
	summary := &model.VerdictSummary{
		Enabled:  true,
		Provider: "test-provider",
		Text:     "",
	}

	md := RenderSeparateMarkdown(summary)

	if !strings.Contains(md, "No explanation generated") {
		t.Error("Expected message about no explanation")
	}
}

func TestBuildExplainPrompt_BasicStructure(t *testing.T) {
	verdict := testVerdict()
	verdict.Degraded = []string{"nli: claim extraction failed"}

	prompt := BuildExplainPrompt(verdict, testChunks())

	// Check required elements
	requiredElements := []string{
		"CRITICAL RULES",
		"ONLY reference these context chunks",
		"Chunk 1",
		"Chunk 2",
		"DO NOT reference chunks",
		"How many attention heads does the model use?",
		"0.72",
		"HIGH",
		"citation",
		"nli",
		"consistency",
		"Degraded signals",
		"GROUNDING QUALITY, not truth",
	}

	for _, element := range requiredElements {
		if !strings.Contains(prompt, element) {
			t.Errorf("Expected prompt to contain '%s'", element)
		}
	}
}

func TestBuildExplainPrompt_NoChunks(t *testing.T) {
	prompt := BuildExplainPrompt(testVerdict(), nil)

	if !strings.Contains(prompt, "No context chunks available") {
		t.Error("Expected message about no context chunks")
	}
}

func TestBuildExplainPrompt_ManyChunks(t *testing.T) {
	chunks := make([]model.ContextChunk, 25)
	for i := range chunks {
		chunks[i] = model.ContextChunk{ID: i, Content: "text"}
	}

	prompt := BuildExplainPrompt(testVerdict(), chunks)

	// Should limit to 20 chunks and show "... and X more"
	if !strings.Contains(prompt, "and 5 more chunks") {
		t.Error("Expected truncation message for many chunks")
	}

	if !strings.Contains(prompt, "Chunk 0") {
		t.Error("Expected first chunk label to be in prompt")
	}
}

func TestExtractChunkRefs(t *testing.T) {
	text := "The claim rests on Chunk 3 and chunk 12, while [Chunk 3] is repeated."

	ids := extractChunkRefs(text)

	if len(ids) != 2 {
		t.Fatalf("Expected 2 distinct refs, got %d: %v", len(ids), ids)
	}
	if ids[0] != 3 || ids[1] != 12 {
		t.Errorf("Expected [3 12], got %v", ids)
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Provider != "" {
		t.Errorf("Expected provider to be empty (disabled), got '%s'", config.Provider)
	}

	if config.Timeout <= 0 {
		t.Error("Expected positive timeout")
	}

	if config.MaxTokens <= 0 {
		t.Error("Expected positive max tokens")
	}

	if config.EmbeddingModel == "" {
		t.Error("Expected a default embedding model")
	}
}

func TestSummarizer_IsEnabled(t *testing.T) {
	disabled := &Summarizer{
		provider: nil,
	}

	if disabled.IsEnabled() {
		t.Error("Expected IsEnabled() to return false when provider is nil")
	}

	enabled := &Summarizer{
		provider: &MockProvider{name: "test"},
	}

	if !enabled.IsEnabled() {
		t.Error("Expected IsEnabled() to return true when provider exists")
	}
}

func TestSummarizer_ProviderName(t *testing.T) {
	disabled := &Summarizer{
		provider: nil,
	}

	if disabled.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}

	enabled := &Summarizer{
		provider: &MockProvider{name: "test-provider"},
	}

	if enabled.ProviderName() != "test-provider" {
		t.Errorf("Expected provider name 'test-provider', got '%s'", enabled.ProviderName())
	}
}

func TestJoinLabels_Empty(t *testing.T) {
	result := joinLabels([]string{})

	if !strings.Contains(result, "No context chunks available") {
		t.Error("Expected message about no chunks")
	}
}

func TestJoinLabels_Few(t *testing.T) {
	labels := []string{"Chunk 1", "Chunk 2"}

	result := joinLabels(labels)

	for _, label := range labels {
		if !strings.Contains(result, label) {
			t.Errorf("Expected result to contain %s", label)
		}
	}
}

// Mock error type for testing
type mockError struct {
	msg string
}

func (e *mockError) Error() string {
	return e.msg
}
