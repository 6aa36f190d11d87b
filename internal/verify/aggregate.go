package verify

import (
	"fmt"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
)

// Aggregator fuses verification signals into a single verdict. It is a pure
// combination step: it never re-derives or adjusts signals, and identical
// inputs always produce an identical result.
type Aggregator struct {
	weights model.WeightsConfig
	risk    model.RiskConfig
}

// NewAggregator creates an aggregator with validated weights and risk cuts
func NewAggregator(weights model.WeightsConfig, risk model.RiskConfig) *Aggregator {
	return &Aggregator{
		weights: weights,
		risk:    risk,
	}
}

// Aggregate combines the given signals into a verdict. Signal scores are
// clamped to [0,1] before weighting; a signal of unknown kind gets weight 0.
// Identity fields (ID, question, timestamps) are left for the caller to stamp.
func (a *Aggregator) Aggregate(signals []model.VerificationSignal) model.HallucinationVerdict {
	contributions := make([]model.Contribution, 0, len(signals))
	kept := make([]model.VerificationSignal, 0, len(signals))

	final := 0.0
	var degraded []string

	for _, s := range signals {
		s.Score = clamp01(s.Score)
		weight := a.weights.For(s.Kind)

		contribution := model.Contribution{
			Kind:     s.Kind,
			Weight:   weight,
			Score:    s.Score,
			Weighted: weight * s.Score,
		}
		contributions = append(contributions, contribution)
		kept = append(kept, s)

		final += contribution.Weighted

		if s.Degraded {
			degraded = append(degraded, fmt.Sprintf("%s: %s", s.Kind, s.DegradedReason))
		}
	}

	final = clamp01(final)
	tier := model.TierFor(final, a.risk)

	return model.HallucinationVerdict{
		Score:         final,
		Tier:          tier,
		Flagged:       tier == model.TierHigh,
		Contributions: contributions,
		Signals:       kept,
		Degraded:      degraded,
	}
}
