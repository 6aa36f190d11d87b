package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
)

func sampleVerdict() *model.HallucinationVerdict {
	return &model.HallucinationVerdict{
		ID:       "v-1",
		Question: "How many attention heads?",
		Answer:   "Eight [Chunk 1].",
		Provider: "ollama",
		Model:    "llama3.1:8b",
		Score:    0.72,
		Tier:     model.TierHigh,
		Flagged:  true,
		Contributions: []model.Contribution{
			{Kind: model.SignalCitation, Weight: 0.4, Score: 1.0, Weighted: 0.4},
			{Kind: model.SignalNLI, Weight: 0.4, Score: 0.5, Weighted: 0.2},
			{Kind: model.SignalConsistency, Weight: 0.2, Score: 0.6, Weighted: 0.12},
		},
		Signals: []model.VerificationSignal{
			{
				Kind:        model.SignalCitation,
				Score:       1.0,
				Description: "answer carries no citations",
			},
			{
				Kind:  model.SignalNLI,
				Score: 0.5,
				Claims: []model.ClaimCheck{
					{Claim: "The model has eight heads.", Verdict: model.NLINotEnoughInfo, Risk: 0.5},
				},
			},
			{
				Kind:  model.SignalConsistency,
				Score: 0.6,
				Samples: []model.SampleCheck{
					{Index: 0, Similarity: 0.4},
					{Index: 1, Excluded: true, Error: "regeneration failed"},
				},
			},
		},
		Degraded:  []string{"consistency: 1 of 2 regeneration samples failed and were excluded"},
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRenderer_RenderJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdict.json")

	if err := NewRenderer(true).RenderJSON(sampleVerdict(), path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected file, got %v", err)
	}

	var decoded model.HallucinationVerdict
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if decoded.Score != 0.72 || decoded.Tier != model.TierHigh {
		t.Errorf("Expected round-tripped verdict, got %.2f/%s", decoded.Score, decoded.Tier)
	}
}

func TestRenderer_RenderMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdict.md")

	if err := NewRenderer(true).RenderMarkdown(sampleVerdict(), path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected file, got %v", err)
	}
	md := string(data)

	for _, want := range []string{
		"# Hallucination Check",
		"**Risk:** HIGH (score 0.72)",
		"flagged for review",
		"## Signal Breakdown",
		"### Citations",
		"### Claims",
		"### Self-Consistency",
		"## Degraded Signals",
		"sample 1 excluded: regeneration failed",
		"paperqa v0.1.0",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q", want)
		}
	}
}

func TestRenderer_RenderMarkdown_NoFooter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdict.md")

	if err := NewRenderer(false).RenderMarkdown(sampleVerdict(), path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "paperqa v") {
		t.Error("Expected no footer when disabled")
	}
}

func TestRenderer_RenderLLMMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdict.llm.md")

	if err := NewRenderer(true).RenderLLMMarkdown("# LLM Explanation\n\ntext\n", path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected file, got %v", err)
	}
	if !strings.HasPrefix(string(data), "# LLM Explanation") {
		t.Errorf("Expected explanation markdown, got %q", string(data))
	}
}
