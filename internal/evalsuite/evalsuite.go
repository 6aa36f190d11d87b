// Package evalsuite runs benchmark cases through verification and
// aggregates the outcomes into a suite summary.
package evalsuite

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/worker"
)

// Case is one benchmark entry: a verification case plus the tier the
// suite author expects it to land in.
type Case struct {
	worker.Case
	ExpectTier model.RiskTier `json:"expect_tier,omitempty"`
}

// CaseResult is the per-case row of a suite run
type CaseResult struct {
	ID         string         `json:"id"`
	Question   string         `json:"question"`
	Score      float64        `json:"score"`
	Tier       model.RiskTier `json:"tier,omitempty"`
	ExpectTier model.RiskTier `json:"expect_tier,omitempty"`
	TierMatch  bool           `json:"tier_match,omitempty"`
	Flagged    bool           `json:"flagged,omitempty"`
	Degraded   bool           `json:"degraded,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Summary aggregates a full suite run
type Summary struct {
	Total          int                    `json:"total"`
	Completed      int                    `json:"completed"`
	Failed         int                    `json:"failed"`
	AvgScore       float64                `json:"avg_score"`
	Tiers          map[model.RiskTier]int `json:"tiers"`
	Flagged        int                    `json:"flagged"`
	Degraded       int                    `json:"degraded"`
	ExpectedTotal  int                    `json:"expected_total,omitempty"`
	ExpectedMatch  int                    `json:"expected_match,omitempty"`
	ElapsedSeconds float64                `json:"elapsed_seconds"`
	Cases          []CaseResult           `json:"cases"`
}

// Runner executes benchmark cases concurrently against a checker
type Runner struct {
	checker     worker.Checker
	concurrency int
}

// NewRunner creates a runner. Concurrency below 1 is raised to 1.
func NewRunner(checker worker.Checker, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{checker: checker, concurrency: concurrency}
}

// Run verifies every case and aggregates the outcomes. Per-case failures
// are recorded as failed rows, not returned as errors.
func (r *Runner) Run(ctx context.Context, cases []Case) *Summary {
	start := time.Now()

	workerCases := make([]worker.Case, len(cases))
	for i, c := range cases {
		workerCases[i] = c.Case
	}

	processor := worker.NewBatchProcessor(r.checker, r.concurrency)
	results := processor.ProcessCases(ctx, workerCases)

	summary := &Summary{
		Total: len(cases),
		Tiers: make(map[model.RiskTier]int),
		Cases: make([]CaseResult, 0, len(cases)),
	}

	var scoreSum float64
	for i, res := range results {
		row := CaseResult{
			ID:         cases[i].ID,
			Question:   cases[i].Question,
			ExpectTier: cases[i].ExpectTier,
		}

		switch {
		case res.Error != nil:
			summary.Failed++
			row.Error = res.Error.Error()
		case res.Verdict != nil:
			summary.Completed++
			scoreSum += res.Verdict.Score
			summary.Tiers[res.Verdict.Tier]++

			row.Score = res.Verdict.Score
			row.Tier = res.Verdict.Tier
			row.Flagged = res.Verdict.Flagged
			row.Degraded = res.Verdict.IsDegraded()
			if row.Flagged {
				summary.Flagged++
			}
			if row.Degraded {
				summary.Degraded++
			}
			if cases[i].ExpectTier != "" {
				summary.ExpectedTotal++
				if res.Verdict.Tier == cases[i].ExpectTier {
					summary.ExpectedMatch++
					row.TierMatch = true
				}
			}
		}

		summary.Cases = append(summary.Cases, row)
	}

	if summary.Completed > 0 {
		summary.AvgScore = scoreSum / float64(summary.Completed)
	}
	summary.ElapsedSeconds = time.Since(start).Seconds()

	return summary
}

// ReadSuite loads benchmark cases from a file of JSON objects, one per
// line. Blank lines and lines starting with # are skipped.
func ReadSuite(path string) ([]Case, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open suite file: %w", err)
	}
	defer file.Close()

	var cases []Case
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "{") {
			return nil, fmt.Errorf("suite case on line %d is not a JSON object", lineNum)
		}

		var c Case
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return nil, fmt.Errorf("parse suite case on line %d: %w", lineNum, err)
		}
		if strings.TrimSpace(c.Question) == "" {
			return nil, fmt.Errorf("suite case on line %d has no question", lineNum)
		}
		if c.ID == "" {
			c.ID = fmt.Sprintf("case-%d", len(cases)+1)
		}
		cases = append(cases, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read suite file: %w", err)
	}

	return cases, nil
}

// WriteJSON writes the summary as indented JSON
func (s *Summary) WriteJSON(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Format renders the summary as a human-readable block
func (s *Summary) Format() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Cases:      %d (%d completed, %d failed)\n", s.Total, s.Completed, s.Failed)
	fmt.Fprintf(&sb, "Avg score:  %.3f\n", s.AvgScore)
	fmt.Fprintf(&sb, "Tiers:      LOW %d / MEDIUM %d / HIGH %d\n",
		s.Tiers[model.TierLow], s.Tiers[model.TierMedium], s.Tiers[model.TierHigh])
	fmt.Fprintf(&sb, "Flagged:    %d\n", s.Flagged)
	fmt.Fprintf(&sb, "Degraded:   %d\n", s.Degraded)
	if s.ExpectedTotal > 0 {
		fmt.Fprintf(&sb, "Tier match: %d/%d (%.0f%%)\n",
			s.ExpectedMatch, s.ExpectedTotal, 100*float64(s.ExpectedMatch)/float64(s.ExpectedTotal))
	}
	fmt.Fprintf(&sb, "Elapsed:    %.1fs\n", s.ElapsedSeconds)

	return sb.String()
}
