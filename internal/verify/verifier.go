// Package verify implements multi-signal hallucination detection for
// generated paper answers. Three independent verifiers each produce a risk
// signal from the same immutable input snapshot; an aggregator fuses the
// signals into a single verdict.
package verify

import (
	"context"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
)

// Verifier produces one verification signal from an input snapshot.
// Implementations must tolerate per-call failures by degrading the signal
// rather than returning an error; a returned error means the verifier could
// not produce a signal at all.
type Verifier interface {
	// Kind identifies the signal this verifier produces
	Kind() model.SignalKind

	// Verify computes the signal for the given input
	Verify(ctx context.Context, input Input) (model.VerificationSignal, error)
}

// RegenerateFunc re-answers the original question under sampling. The QA
// layer supplies it; the consistency verifier calls it once per sample.
type RegenerateFunc func(ctx context.Context, question string) (string, error)

// Input is the read-only snapshot every verifier works from. The detector
// assembles it once per check; nothing mutates it afterwards, so the three
// verifiers can read it concurrently.
type Input struct {
	Question  string
	Answer    string
	Chunks    []model.ContextChunk
	Citations []model.CitationMarker
	Claims    []model.Claim

	// ClaimErr is the claim-extraction failure, if any. Claim-dependent
	// verifiers degrade to their fallback score when it is set.
	ClaimErr error

	// Regenerate re-answers the question for consistency sampling
	Regenerate RegenerateFunc
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
