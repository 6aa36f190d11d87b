package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
)

// Summarizer produces an optional natural-language explanation of a verdict.
// The explanation is generated after scoring and never feeds back into it.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer from LLM configuration.
// An empty provider name yields a disabled summarizer, not an error.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	return &Summarizer{
		provider: provider,
		config:   config,
	}, nil
}

// NewSummarizerWithProvider wraps an already-constructed provider
func NewSummarizerWithProvider(provider Provider, config Config) *Summarizer {
	return &Summarizer{
		provider: provider,
		config:   config,
	}
}

// IsEnabled returns true if a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s.provider != nil
}

// ProviderName returns the active provider's name, or "" when disabled
func (s *Summarizer) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// Explain generates a plain-language explanation of the verdict. Failures
// degrade to a summary with warnings; they never fail the verdict itself.
func (s *Summarizer) Explain(ctx context.Context, verdict model.HallucinationVerdict, chunks []model.ContextChunk) (*model.VerdictSummary, error) {
	summary := &model.VerdictSummary{
		Enabled:   s.IsEnabled(),
		Provider:  s.ProviderName(),
		CreatedAt: time.Now().UTC(),
	}

	if !s.IsEnabled() {
		summary.Warnings = append(summary.Warnings, "LLM explanation not enabled")
		return summary, nil
	}

	if !s.provider.IsAvailable(ctx) {
		summary.Enabled = false
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("LLM provider %s is not available", s.ProviderName()))
		return summary, nil
	}

	resp, err := s.provider.Complete(ctx, CompletionRequest{
		System:      "You are a careful assistant that explains hallucination-verification verdicts. You describe how the score arose from the recorded evidence and you never speculate beyond it.",
		Prompt:      BuildExplainPrompt(verdict, chunks),
		MaxTokens:   s.config.MaxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("LLM explanation failed: %v", err))
		return summary, nil
	}

	text := strings.TrimSpace(resp.Text)

	// Strict evidence mode: the explanation may only reference chunks that
	// were actually supplied. A leaked reference discards the whole text.
	allowed := make(map[int]bool, len(chunks))
	for _, c := range chunks {
		allowed[c.ID] = true
	}
	for _, id := range extractChunkRefs(text) {
		if !allowed[id] {
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("citation leak: explanation referenced Chunk %d, which is not in the supplied context", id))
			return summary, nil
		}
	}

	summary.Text = text
	summary.Model = resp.Model
	summary.Warnings = append(summary.Warnings, fmt.Sprintf("Tokens used: %d", resp.TokensUsed))
	summary.Warnings = append(summary.Warnings, fmt.Sprintf("Verified %d chunk references against the supplied context", len(extractChunkRefs(text))))

	return summary, nil
}

// BuildExplainPrompt constructs the explanation prompt with a strict chunk allowlist
func BuildExplainPrompt(verdict model.HallucinationVerdict, chunks []model.ContextChunk) string {
	labels := make([]string, 0, len(chunks))
	for _, c := range chunks {
		labels = append(labels, c.Label())
	}

	prompt := fmt.Sprintf(`You are explaining a hallucination-verification verdict. The verdict evaluates how well a generated answer is grounded in retrieved paper context - it NEVER asserts truth about the world.

CRITICAL RULES:
1. You may ONLY reference these context chunks:
%s

2. DO NOT reference chunks, sections, or pages beyond this list.
3. If a signal was degraded, state that explicitly.
4. Describe GROUNDING QUALITY, not truth. Use phrases like:
   - "The answer cites chunks that do not support it..."
   - "Claims were contradicted by the context..."
   - "Regenerated answers diverged from the original..."
5. Never say "the answer is correct" or "incorrect" - only describe evidence.

Verdict:
- Question: %s
- Hallucination score: %.2f (%s)
- Flagged: %t

Signal breakdown:
`, joinLabels(labels), verdict.Question, verdict.Score, verdict.Tier, verdict.Flagged)

	for _, c := range verdict.Contributions {
		prompt += fmt.Sprintf("- %s: score %.2f, weight %.2f, contribution %.2f\n", c.Kind, c.Score, c.Weight, c.Weighted)
	}

	if len(verdict.Degraded) > 0 {
		prompt += "\nDegraded signals:\n"
		for _, d := range verdict.Degraded {
			prompt += fmt.Sprintf("- %s\n", d)
		}
	}

	prompt += "\nProvide a 3-4 sentence explanation of why the answer received this score."

	return prompt
}

// chunkRefPattern matches chunk references in generated explanations
var chunkRefPattern = regexp.MustCompile(`(?i)chunk\s+(\d+)`)

// extractChunkRefs extracts the distinct chunk IDs referenced in text
func extractChunkRefs(text string) []int {
	matches := chunkRefPattern.FindAllStringSubmatch(text, -1)

	seen := make(map[int]bool)
	var ids []int
	for _, m := range matches {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	return ids
}

func joinLabels(labels []string) string {
	if len(labels) == 0 {
		return "(No context chunks available)"
	}
	result := ""
	for i, label := range labels {
		if i >= 20 { // Limit to first 20 to avoid token bloat
			result += fmt.Sprintf("\n... and %d more chunks", len(labels)-20)
			break
		}
		result += fmt.Sprintf("\n- %s", label)
	}
	return result
}

// RenderSeparateMarkdown renders the explanation as a standalone Markdown
// document, clearly marked as generated content.
func RenderSeparateMarkdown(summary *model.VerdictSummary) string {
	var sb strings.Builder

	sb.WriteString("# LLM Explanation\n\n")
	sb.WriteString("> **GENERATED CONTENT.** This explanation was written by a language model.\n")
	sb.WriteString("> The hallucination score and tier were determined independently of this text.\n\n")

	if summary.Text != "" {
		sb.WriteString(summary.Text)
		sb.WriteString("\n\n")
		if summary.Provider != "" {
			sb.WriteString(fmt.Sprintf("*Generated by %s", summary.Provider))
			if summary.Model != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", summary.Model))
			}
			sb.WriteString("*\n\n")
		}
	} else {
		sb.WriteString("No explanation generated.\n\n")
	}

	if len(summary.Warnings) > 0 {
		sb.WriteString("## Notes\n\n")
		for _, w := range summary.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
	}

	return sb.String()
}
