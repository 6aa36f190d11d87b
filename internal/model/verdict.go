package model

import "time"

// SignalKind identifies one of the independent verification signals
type SignalKind string

const (
	SignalCitation    SignalKind = "citation"    // Citation resolution and support checking
	SignalNLI         SignalKind = "nli"         // Per-claim natural language inference
	SignalConsistency SignalKind = "consistency" // Regeneration self-consistency
)

// RiskTier is the categorical interpretation of a hallucination score
type RiskTier string

const (
	TierLow    RiskTier = "LOW"
	TierMedium RiskTier = "MEDIUM"
	TierHigh   RiskTier = "HIGH"
)

// TierFor maps a score to its tier. Cut points belong to the upper tier:
// a score exactly at Medium is MEDIUM, exactly at High is HIGH.
func TierFor(score float64, r RiskConfig) RiskTier {
	switch {
	case score >= r.High:
		return TierHigh
	case score >= r.Medium:
		return TierMedium
	default:
		return TierLow
	}
}

// VerificationSignal is the complete result of one verifier: a risk score in
// [0,1] plus the per-item evidence that produced it. A degraded signal used a
// documented fallback instead of a full computation and says why.
type VerificationSignal struct {
	Kind           SignalKind             `json:"kind"`
	Score          float64                `json:"score"`
	Description    string                 `json:"description,omitempty"`
	Degraded       bool                   `json:"degraded,omitempty"`
	DegradedReason string                 `json:"degraded_reason,omitempty"`
	Citations      []CitationCheck        `json:"citations,omitempty"`
	Claims         []ClaimCheck           `json:"claims,omitempty"`
	Samples        []SampleCheck          `json:"samples,omitempty"`
	Data           map[string]interface{} `json:"data,omitempty"`
}

// CitationCheck records the outcome for a single citation marker
type CitationCheck struct {
	Marker    string `json:"marker"`           // Marker text as it appeared in the answer
	ChunkID   int    `json:"chunk_id"`         // Referenced chunk
	Resolved  bool   `json:"resolved"`         // Chunk exists in the supplied context
	Supported bool   `json:"supported"`        // Chunk content supports the attached statement
	Detail    string `json:"detail,omitempty"` // Judge explanation or failure description
	Failed    bool   `json:"failed,omitempty"` // The support check call itself failed
}

// ClaimCheck records the NLI outcome for a single claim
type ClaimCheck struct {
	Claim       string     `json:"claim"`
	Verdict     NLIVerdict `json:"verdict"`
	Risk        float64    `json:"risk"`
	Explanation string     `json:"explanation,omitempty"`
	Failed      bool       `json:"failed,omitempty"` // The verification call itself failed
}

// SampleCheck records one regenerated answer and its similarity to the original
type SampleCheck struct {
	Index      int     `json:"index"`
	Similarity float64 `json:"similarity"`
	Excluded   bool    `json:"excluded,omitempty"` // Sample failed and was left out of the mean
	Error      string  `json:"error,omitempty"`
}

// Contribution is one signal's share of the final score
type Contribution struct {
	Kind     SignalKind `json:"kind"`
	Weight   float64    `json:"weight"`
	Score    float64    `json:"score"`
	Weighted float64    `json:"weighted"` // Weight * Score
}

// HallucinationVerdict is the final output of a verification run: the fused
// score, its tier, and the full per-signal breakdown that produced it.
type HallucinationVerdict struct {
	ID            string               `json:"id"`
	Question      string               `json:"question"`
	Answer        string               `json:"answer"`
	Provider      string               `json:"provider,omitempty"`
	Model         string               `json:"model,omitempty"`
	Score         float64              `json:"score"`
	Tier          RiskTier             `json:"tier"`
	Flagged       bool                 `json:"flagged"`
	Contributions []Contribution       `json:"contributions"`
	Signals       []VerificationSignal `json:"signals"`
	Degraded      []string             `json:"degraded,omitempty"` // Which signals fell back, and why
	Summary       *VerdictSummary      `json:"summary,omitempty"`
	Cached        bool                 `json:"cached,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// IsDegraded reports whether any signal in the verdict used a fallback
func (v *HallucinationVerdict) IsDegraded() bool {
	return len(v.Degraded) > 0
}

// Signal returns the signal of the given kind, or nil if absent
func (v *HallucinationVerdict) Signal(kind SignalKind) *VerificationSignal {
	for i := range v.Signals {
		if v.Signals[i].Kind == kind {
			return &v.Signals[i]
		}
	}
	return nil
}

// VerdictSummary is an optional LLM-written explanation of a verdict.
// It is generated after aggregation and never affects the score.
type VerdictSummary struct {
	Enabled   bool      `json:"enabled"`
	Provider  string    `json:"provider,omitempty"`
	Model     string    `json:"model,omitempty"`
	Text      string    `json:"text,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
