package model

import (
	"fmt"
	"strings"
)

// Claim is one atomic factual assertion decomposed from a generated answer.
// Each claim must be checkable against the paper context on its own.
type Claim struct {
	Text       string `json:"text"`                  // The assertion itself
	Sentence   int    `json:"sentence,omitempty"`    // Originating sentence index in the answer, if located
	AnswerHash string `json:"answer_hash,omitempty"` // Digest of the answer the claim was drawn from
}

// NLIVerdict is the outcome of checking a single claim against the context.
type NLIVerdict string

const (
	// NLISupported means the context entails the claim
	NLISupported NLIVerdict = "SUPPORTED"

	// NLIContradicted means the context contradicts the claim
	NLIContradicted NLIVerdict = "CONTRADICTED"

	// NLINotEnoughInfo means the context neither supports nor contradicts the claim
	NLINotEnoughInfo NLIVerdict = "NOT_ENOUGH_INFO"
)

// Risk maps a verdict to its hallucination risk weight: a supported claim is
// safe, an unverifiable one counts half, a contradicted one counts in full.
func (v NLIVerdict) Risk() float64 {
	switch v {
	case NLISupported:
		return 0.0
	case NLIContradicted:
		return 1.0
	default:
		return 0.5
	}
}

// ParseNLIVerdict normalizes a model-emitted verdict string. Models phrase
// the middle category several ways, all of which collapse to NOT_ENOUGH_INFO.
func ParseNLIVerdict(s string) (NLIVerdict, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	switch normalized {
	case "SUPPORTED", "IMPLIED", "ENTAILED":
		return NLISupported, nil
	case "CONTRADICTED", "REFUTED":
		return NLIContradicted, nil
	case "NOT_ENOUGH_INFO", "NOT_MENTIONED", "NO_EVIDENCE", "NEUTRAL", "UNKNOWN":
		return NLINotEnoughInfo, nil
	default:
		return "", fmt.Errorf("unrecognized NLI verdict: %q", s)
	}
}
