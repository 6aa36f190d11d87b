package verify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/llm"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/semantic"
)

// Detector runs the full multi-signal hallucination check for one answered
// question: claim extraction, three concurrent verifiers, then aggregation.
type Detector struct {
	extractor  *ClaimExtractor
	verifiers  []Verifier
	aggregator *Aggregator
}

// NewDetector wires the three standard verifiers from configuration.
// The config must already be validated.
func NewDetector(provider llm.Provider, similarity semantic.Similarity, cfg *model.Config) *Detector {
	return &Detector{
		extractor: NewClaimExtractor(provider),
		verifiers: []Verifier{
			NewCitationVerifier(provider, cfg.Concurrency.MaxCalls),
			NewNLIVerifier(provider, cfg.Concurrency.MaxCalls),
			NewConsistencyVerifier(similarity, cfg.Consistency.Samples, cfg.Consistency.MinLength, cfg.Consistency.MaxParallel),
		},
		aggregator: NewAggregator(cfg.Weights, cfg.Risk),
	}
}

// NewDetectorWithVerifiers wires an explicit verifier set, for callers that
// swap or extend the standard three.
func NewDetectorWithVerifiers(extractor *ClaimExtractor, aggregator *Aggregator, verifiers ...Verifier) *Detector {
	return &Detector{
		extractor:  extractor,
		verifiers:  verifiers,
		aggregator: aggregator,
	}
}

// Request is one verification job: an answered question plus the context the
// answer was generated from.
type Request struct {
	Question string
	Answer   string
	Chunks   []model.ContextChunk

	// Citations, when nil, are extracted from the answer text
	Citations []model.CitationMarker

	// Regenerate re-answers the question for the consistency check
	Regenerate RegenerateFunc
}

// Check produces a verdict for the request. Per-signal failures degrade into
// the verdict; only cancellation aborts the run, and a cancelled run never
// yields a partial verdict.
func (d *Detector) Check(ctx context.Context, req Request) (*model.HallucinationVerdict, error) {
	start := time.Now()

	citations := req.Citations
	if citations == nil {
		citations = ExtractCitations(req.Answer)
	}

	claims, claimErr := d.extractor.Extract(ctx, req.Answer)
	if claimErr != nil {
		slog.Warn("claim extraction failed", "error", claimErr, "answer_len", len(req.Answer))
	}

	input := Input{
		Question:   req.Question,
		Answer:     req.Answer,
		Chunks:     req.Chunks,
		Citations:  citations,
		Claims:     claims,
		ClaimErr:   claimErr,
		Regenerate: req.Regenerate,
	}

	signals := make([]model.VerificationSignal, len(d.verifiers))

	var wg sync.WaitGroup
	for i, verifier := range d.verifiers {
		wg.Add(1)
		go func(idx int, v Verifier) {
			defer wg.Done()

			signal, err := v.Verify(ctx, input)
			if err != nil {
				// A verifier that cannot produce a signal still yields one:
				// maximal uncertainty, marked degraded.
				signal = model.VerificationSignal{
					Kind:           v.Kind(),
					Score:          0.5,
					Description:    "verifier failed",
					Degraded:       true,
					DegradedReason: err.Error(),
				}
			}
			signals[idx] = signal

			slog.Debug("signal computed",
				"kind", string(signal.Kind),
				"score", fmt.Sprintf("%.3f", signal.Score),
				"degraded", signal.Degraded,
			)
		}(i, verifier)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("verification cancelled: %w", err)
	}

	verdict := d.aggregator.Aggregate(signals)
	verdict.ID = uuid.NewString()
	verdict.Question = req.Question
	verdict.Answer = req.Answer
	verdict.CreatedAt = time.Now().UTC()

	slog.Debug("verdict aggregated",
		"id", verdict.ID,
		"score", fmt.Sprintf("%.3f", verdict.Score),
		"tier", string(verdict.Tier),
		"degraded", len(verdict.Degraded),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &verdict, nil
}
