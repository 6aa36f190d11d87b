package verify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/llm"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
)

// ClaimExtractor decomposes a generated answer into atomic checkable claims
// using a deterministic judge call.
type ClaimExtractor struct {
	provider llm.Provider
}

// NewClaimExtractor creates a claim extractor backed by the given provider
func NewClaimExtractor(provider llm.Provider) *ClaimExtractor {
	return &ClaimExtractor{provider: provider}
}

// Extract returns the answer's factual claims. An empty answer yields no
// claims and no call. Failures come back as *ExtractionError.
func (e *ClaimExtractor) Extract(ctx context.Context, answer string) ([]model.Claim, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return []model.Claim{}, nil
	}

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		System:      judgeSystemPrompt,
		Prompt:      ClaimExtractionPrompt(answer),
		Temperature: 0,
	})
	if err != nil {
		return nil, &ExtractionError{Reason: "inference call", Err: err}
	}

	texts, err := parseClaimList(resp.Text)
	if err != nil {
		return nil, &ExtractionError{Reason: "parse response", Err: err}
	}

	digest := answerDigest(answer)
	sentences := splitSentences(answer)

	claims := make([]model.Claim, 0, len(texts))
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		claims = append(claims, model.Claim{
			Text:       text,
			Sentence:   sentenceIndex(sentences, text),
			AnswerHash: digest,
		})
	}

	if len(claims) == 0 {
		return nil, &ExtractionError{Reason: "empty claim list", Err: errors.New("model returned no claims")}
	}

	return claims, nil
}

// parseClaimList pulls a JSON string array out of a model response,
// tolerating markdown fences and surrounding prose.
func parseClaimList(text string) ([]string, error) {
	raw, ok := findJSON(text, '[', ']')
	if !ok {
		return nil, errors.New("no JSON array in response")
	}

	var claims []string
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		return nil, err
	}

	return claims, nil
}

// sentenceIndex locates which answer sentence a claim was drawn from.
// Claims are often rephrased, so a miss returns 0 rather than an error.
func sentenceIndex(sentences []string, claim string) int {
	needle := strings.ToLower(strings.TrimRight(claim, "."))

	for i, s := range sentences {
		if strings.Contains(strings.ToLower(s), needle) {
			return i
		}
	}
	return 0
}

func answerDigest(answer string) string {
	sum := sha256.Sum256([]byte(answer))
	return hex.EncodeToString(sum[:8])
}
