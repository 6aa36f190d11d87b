package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
)

// Case is one question to verify. Answer may be empty, in which case the
// checker generates one from the chunks first.
type Case struct {
	ID       string               `json:"id,omitempty"`
	Question string               `json:"question"`
	Answer   string               `json:"answer,omitempty"`
	Chunks   []model.ContextChunk `json:"chunks,omitempty"`
}

// Checker defines the interface for verifying a single case
type Checker interface {
	CheckCase(ctx context.Context, c Case) (*model.HallucinationVerdict, error)
}

// VerifyJob represents one case verification job
type VerifyJob struct {
	Case    Case
	Checker Checker
}

// Execute executes the verification job
func (j *VerifyJob) Execute(ctx context.Context) Result {
	verdict, err := j.Checker.CheckCase(ctx, j.Case)
	return &VerifyResult{
		Case:    j.Case,
		Verdict: verdict,
		Error:   err,
	}
}

// VerifyResult represents the result of a case verification
type VerifyResult struct {
	Case    Case
	Verdict *model.HallucinationVerdict
	Error   error
}

// GetError returns the error from the verification result
func (r *VerifyResult) GetError() error {
	return r.Error
}

// BatchProcessor verifies multiple cases concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessCases verifies the cases concurrently. Results are index-aligned
// with the input.
func (b *BatchProcessor) ProcessCases(ctx context.Context, cases []Case) []*VerifyResult {
	if len(cases) == 0 {
		return []*VerifyResult{}
	}

	jobs := make([]Job, len(cases))
	for i, c := range cases {
		jobs[i] = &VerifyJob{Case: c, Checker: b.checker}
	}

	pool := NewPool(b.concurrency)
	results := pool.Run(ctx, jobs)

	verifyResults := make([]*VerifyResult, len(results))
	for i, result := range results {
		if vr, ok := result.(*VerifyResult); ok {
			verifyResults[i] = vr
			continue
		}
		// Cancelled before the job started
		verifyResults[i] = &VerifyResult{
			Case:  cases[i],
			Error: result.GetError(),
		}
	}

	return verifyResults
}

// ProcessFile reads cases from a file and verifies them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*VerifyResult, error) {
	cases, err := ReadCases(filePath)
	if err != nil {
		return nil, fmt.Errorf("read cases: %w", err)
	}

	return b.ProcessCases(ctx, cases), nil
}

// ReadCases reads cases from a file, one per line. A line holding a JSON
// object is a full case; any other non-empty line is a bare question.
// Blank lines and # comments are skipped.
func ReadCases(filePath string) ([]Case, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var cases []Case

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var c Case
		if strings.HasPrefix(line, "{") {
			if err := json.Unmarshal([]byte(line), &c); err != nil {
				return nil, fmt.Errorf("parse case on line %d: %w", lineNo, err)
			}
			if strings.TrimSpace(c.Question) == "" {
				return nil, fmt.Errorf("case on line %d has no question", lineNo)
			}
		} else {
			c = Case{Question: line}
		}

		if c.ID == "" {
			c.ID = fmt.Sprintf("case-%d", len(cases)+1)
		}
		cases = append(cases, c)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return cases, nil
}
