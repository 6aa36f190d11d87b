package verify

import (
	"fmt"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
)

// ExtractionError reports a failed claim decomposition. Claim-dependent
// verifiers treat it as "claims unknown" and fall back; it never aborts a
// verification run.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("claim extraction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("claim extraction failed: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// VerificationCallError reports a failed inference or embedding call inside a
// verifier, carrying the signal it belongs to. Individual call failures are
// absorbed into degraded per-item results rather than propagated.
type VerificationCallError struct {
	Signal model.SignalKind
	Op     string
	Err    error
}

func (e *VerificationCallError) Error() string {
	return fmt.Sprintf("%s verification call failed (%s): %v", e.Signal, e.Op, e.Err)
}

func (e *VerificationCallError) Unwrap() error {
	return e.Err
}
