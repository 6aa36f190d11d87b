package verify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/semantic"
)

// ConsistencyVerifier regenerates the answer under sampling and measures how
// far the variants drift from the original. Confident grounded answers come
// back stable; fabricated details tend to change between samples.
// The signal score is 1 - mean(similarity), over the samples that succeeded.
type ConsistencyVerifier struct {
	similarity  semantic.Similarity
	samples     int
	minLength   int
	maxParallel int
}

// NewConsistencyVerifier creates a consistency verifier that draws the given
// number of samples. The sample count has a floor of 1.
func NewConsistencyVerifier(similarity semantic.Similarity, samples, minLength, maxParallel int) *ConsistencyVerifier {
	if samples < 1 {
		samples = 1
	}
	if minLength <= 0 {
		minLength = 10
	}
	if maxParallel <= 0 {
		maxParallel = 2
	}
	return &ConsistencyVerifier{
		similarity:  similarity,
		samples:     samples,
		minLength:   minLength,
		maxParallel: maxParallel,
	}
}

// Kind implements Verifier
func (v *ConsistencyVerifier) Kind() model.SignalKind {
	return model.SignalConsistency
}

// Verify implements Verifier. Failed samples are excluded from the mean.
// If every sample fails there is nothing to measure, and the signal degrades
// to the neutral fallback 0.5.
func (v *ConsistencyVerifier) Verify(ctx context.Context, input Input) (model.VerificationSignal, error) {
	if input.Regenerate == nil {
		return model.VerificationSignal{
			Kind:           model.SignalConsistency,
			Score:          0.5,
			Description:    "no regeneration available",
			Degraded:       true,
			DegradedReason: "no regeneration function supplied",
			Data: map[string]interface{}{
				"fallback": 0.5,
			},
		}, nil
	}

	samples := make([]model.SampleCheck, v.samples)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, v.maxParallel)

	for i := 0; i < v.samples; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				samples[idx] = model.SampleCheck{
					Index:    idx,
					Excluded: true,
					Error:    "regeneration cancelled",
				}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			samples[idx] = v.drawSample(ctx, idx, input)
		}(i)
	}

	wg.Wait()

	var sum float64
	valid := 0
	for _, s := range samples {
		if s.Excluded {
			continue
		}
		sum += s.Similarity
		valid++
	}

	if valid == 0 {
		return model.VerificationSignal{
			Kind:           model.SignalConsistency,
			Score:          0.5,
			Description:    "no usable regeneration samples",
			Degraded:       true,
			DegradedReason: fmt.Sprintf("all %d regeneration samples failed", v.samples),
			Samples:        samples,
			Data: map[string]interface{}{
				"samples":  v.samples,
				"excluded": v.samples,
				"fallback": 0.5,
			},
		}, nil
	}

	meanSimilarity := sum / float64(valid)
	score := clamp01(1 - meanSimilarity)

	signal := model.VerificationSignal{
		Kind:        model.SignalConsistency,
		Score:       score,
		Description: fmt.Sprintf("mean similarity %.2f across %d samples", meanSimilarity, valid),
		Samples:     samples,
		Data: map[string]interface{}{
			"samples":         v.samples,
			"excluded":        v.samples - valid,
			"mean_similarity": meanSimilarity,
			"formula":         "1 - mean(similarity(original, variant))",
		},
	}

	if valid < v.samples {
		signal.Degraded = true
		signal.DegradedReason = fmt.Sprintf("%d of %d regeneration samples failed and were excluded", v.samples-valid, v.samples)
	}

	return signal, nil
}

// drawSample regenerates the answer once and scores it against the original
func (v *ConsistencyVerifier) drawSample(ctx context.Context, idx int, input Input) model.SampleCheck {
	sample := model.SampleCheck{Index: idx}

	variant, err := input.Regenerate(ctx, input.Question)
	if err != nil {
		callErr := &VerificationCallError{Signal: model.SignalConsistency, Op: "regenerate answer", Err: err}
		sample.Excluded = true
		sample.Error = callErr.Error()
		return sample
	}

	if len(strings.TrimSpace(variant)) < v.minLength {
		sample.Excluded = true
		sample.Error = fmt.Sprintf("variant shorter than %d characters", v.minLength)
		return sample
	}

	similarity, err := v.similarity.Score(ctx, input.Answer, variant)
	if err != nil {
		callErr := &VerificationCallError{Signal: model.SignalConsistency, Op: "score similarity", Err: err}
		sample.Excluded = true
		sample.Error = callErr.Error()
		return sample
	}

	sample.Similarity = clamp01(similarity)
	return sample
}
