package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/llm"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
)

// NLIVerifier checks each extracted claim against the full context with an
// entailment judge call. The signal score is the mean per-claim risk:
// supported 0, not enough info 0.5, contradicted 1.
type NLIVerifier struct {
	provider   llm.Provider
	maxWorkers int
}

// NewNLIVerifier creates an NLI verifier.
// maxWorkers bounds concurrent entailment calls.
func NewNLIVerifier(provider llm.Provider, maxWorkers int) *NLIVerifier {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &NLIVerifier{
		provider:   provider,
		maxWorkers: maxWorkers,
	}
}

// Kind implements Verifier
func (v *NLIVerifier) Kind() model.SignalKind {
	return model.SignalNLI
}

// Verify implements Verifier. An answer that asserts nothing carries no
// claim-level risk, so zero claims score 0.0. When claim extraction failed
// upstream the claims are unknown, which is maximal uncertainty: the signal
// degrades to 0.5.
func (v *NLIVerifier) Verify(ctx context.Context, input Input) (model.VerificationSignal, error) {
	if input.ClaimErr != nil {
		return model.VerificationSignal{
			Kind:           model.SignalNLI,
			Score:          0.5,
			Description:    "claims unknown, scored as maximal uncertainty",
			Degraded:       true,
			DegradedReason: input.ClaimErr.Error(),
			Data: map[string]interface{}{
				"fallback": 0.5,
			},
		}, nil
	}

	if len(input.Claims) == 0 {
		return model.VerificationSignal{
			Kind:        model.SignalNLI,
			Score:       0.0,
			Description: "answer asserts no checkable claims",
			Data: map[string]interface{}{
				"claims":  0,
				"formula": "no claims => 0.0",
			},
		}, nil
	}

	contextText := JoinChunks(input.Chunks)
	checks := make([]model.ClaimCheck, len(input.Claims))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, v.maxWorkers)

	for i, claim := range input.Claims {
		wg.Add(1)
		go func(idx int, c model.Claim) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				checks[idx] = model.ClaimCheck{
					Claim:       c.Text,
					Verdict:     model.NLINotEnoughInfo,
					Risk:        model.NLINotEnoughInfo.Risk(),
					Explanation: "verification cancelled",
					Failed:      true,
				}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			checks[idx] = v.checkClaim(ctx, c, contextText)
		}(i, claim)
	}

	wg.Wait()

	var sum float64
	counts := map[model.NLIVerdict]int{}
	failed := 0
	for _, check := range checks {
		sum += check.Risk
		counts[check.Verdict]++
		if check.Failed {
			failed++
		}
	}

	score := sum / float64(len(checks))

	signal := model.VerificationSignal{
		Kind:        model.SignalNLI,
		Score:       score,
		Description: fmt.Sprintf("%d claims: %d supported, %d contradicted, %d unverifiable", len(checks), counts[model.NLISupported], counts[model.NLIContradicted], counts[model.NLINotEnoughInfo]),
		Claims:      checks,
		Data: map[string]interface{}{
			"claims":       len(checks),
			"supported":    counts[model.NLISupported],
			"contradicted": counts[model.NLIContradicted],
			"unverifiable": counts[model.NLINotEnoughInfo],
			"formula":      "mean(supported=0, not_enough_info=0.5, contradicted=1)",
		},
	}

	if failed > 0 {
		signal.Degraded = true
		signal.DegradedReason = fmt.Sprintf("%d claim checks failed and were scored as NOT_ENOUGH_INFO", failed)
	}

	return signal, nil
}

// nliResponse is the JSON shape the entailment prompt requests
type nliResponse struct {
	Verdict     string `json:"verdict"`
	Explanation string `json:"explanation"`
}

// checkClaim runs one entailment call. A failed call or unparseable response
// scores the claim NOT_ENOUGH_INFO and marks the check failed.
func (v *NLIVerifier) checkClaim(ctx context.Context, claim model.Claim, contextText string) model.ClaimCheck {
	check := model.ClaimCheck{
		Claim: claim.Text,
	}

	fallback := func(detail string) model.ClaimCheck {
		check.Verdict = model.NLINotEnoughInfo
		check.Risk = model.NLINotEnoughInfo.Risk()
		check.Explanation = detail
		check.Failed = true
		return check
	}

	resp, err := v.provider.Complete(ctx, llm.CompletionRequest{
		System:      judgeSystemPrompt,
		Prompt:      NLIPrompt(claim.Text, contextText),
		Temperature: 0,
	})
	if err != nil {
		callErr := &VerificationCallError{Signal: model.SignalNLI, Op: "entailment check", Err: err}
		return fallback(callErr.Error())
	}

	parsed, err := parseNLIResponse(resp.Text)
	if err != nil {
		return fallback(fmt.Sprintf("unparseable entailment response: %v", err))
	}

	verdict, err := model.ParseNLIVerdict(parsed.Verdict)
	if err != nil {
		return fallback(err.Error())
	}

	check.Verdict = verdict
	check.Risk = verdict.Risk()
	check.Explanation = parsed.Explanation
	return check
}

func parseNLIResponse(text string) (*nliResponse, error) {
	raw, ok := findJSON(text, '{', '}')
	if !ok {
		return nil, errors.New("no JSON object in response")
	}

	var resp nliResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, err
	}
	if resp.Verdict == "" {
		return nil, errors.New("response has no verdict field")
	}

	return &resp, nil
}
