package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
)

const version = "0.1.0"

// Renderer writes verdicts as JSON, Markdown, and terminal summaries
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the verdict as indented JSON
func (r *Renderer) RenderJSON(verdict *model.HallucinationVerdict, path string) error {
	data, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal verdict: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report of the verdict
func (r *Renderer) RenderMarkdown(verdict *model.HallucinationVerdict, path string) error {
	var sb strings.Builder

	sb.WriteString("# Hallucination Check\n\n")
	sb.WriteString(fmt.Sprintf("**Question:** %s\n\n", verdict.Question))
	sb.WriteString(fmt.Sprintf("**Answer:** %s\n\n", verdict.Answer))

	flag := ""
	if verdict.Flagged {
		flag = " ⚠ flagged for review"
	}
	sb.WriteString(fmt.Sprintf("**Risk:** %s (score %.2f)%s\n\n", verdict.Tier, verdict.Score, flag))

	if verdict.Provider != "" {
		sb.WriteString(fmt.Sprintf("Checked with %s", verdict.Provider))
		if verdict.Model != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", verdict.Model))
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Signal Breakdown\n\n")
	sb.WriteString("| Signal | Score | Weight | Contribution |\n")
	sb.WriteString("|--------|-------|--------|-------------|\n")
	for _, c := range verdict.Contributions {
		sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.3f |\n", c.Kind, c.Score, c.Weight, c.Weighted))
	}
	sb.WriteString("\n")

	for _, signal := range verdict.Signals {
		r.writeSignalSection(&sb, signal)
	}

	if verdict.IsDegraded() {
		sb.WriteString("## Degraded Signals\n\n")
		sb.WriteString("These signals used a documented fallback instead of a full computation:\n\n")
		for _, d := range verdict.Degraded {
			sb.WriteString(fmt.Sprintf("- %s\n", d))
		}
		sb.WriteString("\n")
	}

	if r.includeFooter {
		sb.WriteString("---\n\n")
		sb.WriteString(fmt.Sprintf("*Generated by paperqa v%s at %s*\n", version, verdict.CreatedAt.Format("2006-01-02 15:04:05 MST")))
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (r *Renderer) writeSignalSection(sb *strings.Builder, signal model.VerificationSignal) {
	switch signal.Kind {
	case model.SignalCitation:
		sb.WriteString("### Citations\n\n")
	case model.SignalNLI:
		sb.WriteString("### Claims\n\n")
	case model.SignalConsistency:
		sb.WriteString("### Self-Consistency\n\n")
	default:
		sb.WriteString(fmt.Sprintf("### %s\n\n", signal.Kind))
	}

	if signal.Description != "" {
		sb.WriteString(signal.Description)
		sb.WriteString("\n\n")
	}

	for _, c := range signal.Citations {
		status := "supported"
		switch {
		case !c.Resolved:
			status = "unresolved"
		case c.Failed:
			status = "check failed"
		case !c.Supported:
			status = "unsupported"
		}
		sb.WriteString(fmt.Sprintf("- `%s` → %s", c.Marker, status))
		if c.Detail != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", c.Detail))
		}
		sb.WriteString("\n")
	}
	if len(signal.Citations) > 0 {
		sb.WriteString("\n")
	}

	for _, c := range signal.Claims {
		sb.WriteString(fmt.Sprintf("- **%s**: %s", c.Verdict, c.Claim))
		if c.Explanation != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", c.Explanation))
		}
		sb.WriteString("\n")
	}
	if len(signal.Claims) > 0 {
		sb.WriteString("\n")
	}

	for _, s := range signal.Samples {
		if s.Excluded {
			sb.WriteString(fmt.Sprintf("- sample %d excluded: %s\n", s.Index, s.Error))
		} else {
			sb.WriteString(fmt.Sprintf("- sample %d similarity %.2f\n", s.Index, s.Similarity))
		}
	}
	if len(signal.Samples) > 0 {
		sb.WriteString("\n")
	}
}

// RenderLLMMarkdown writes pre-rendered LLM explanation markdown to a file
func (r *Renderer) RenderLLMMarkdown(markdown string, path string) error {
	if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints a short verdict summary to stdout
func (r *Renderer) RenderSummary(verdict *model.HallucinationVerdict) {
	fmt.Println()
	flag := ""
	if verdict.Flagged {
		flag = "  ⚠ flagged for review"
	}
	fmt.Printf("Verdict: %s (score %.2f)%s\n", verdict.Tier, verdict.Score, flag)

	for _, c := range verdict.Contributions {
		fmt.Printf("  %-12s %.2f × %.2f = %.3f\n", c.Kind, c.Score, c.Weight, c.Weighted)
	}

	if verdict.IsDegraded() {
		fmt.Println("\nDegraded signals:")
		for _, d := range verdict.Degraded {
			fmt.Printf("  - %s\n", d)
		}
	}

	if verdict.Cached {
		fmt.Println("\n(served from cache)")
	}
	fmt.Println()
}
