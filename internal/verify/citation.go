package verify

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/llm"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
)

// citationPattern matches chunk references in answers: "[Chunk 3]",
// "(Chunk 12)", or a bare "Chunk 7".
var citationPattern = regexp.MustCompile(`(?i)[\[(]?\s*chunk\s+(\d+)\s*[\])]?`)

// ExtractCitations pulls every chunk reference out of the answer, attaching
// each marker to the sentence it appears in. Repeated markers are kept:
// each assertion of support is checked on its own.
func ExtractCitations(answer string) []model.CitationMarker {
	var markers []model.CitationMarker

	for si, sentence := range splitSentences(answer) {
		for _, m := range citationPattern.FindAllStringSubmatch(sentence, -1) {
			id, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			markers = append(markers, model.CitationMarker{
				ChunkID:   id,
				Raw:       strings.TrimSpace(m[0]),
				Statement: stripCitations(sentence),
				Sentence:  si,
			})
		}
	}

	return markers
}

// stripCitations removes chunk markers so the support prompt sees clean prose
func stripCitations(sentence string) string {
	cleaned := citationPattern.ReplaceAllString(sentence, "")
	return strings.Join(strings.Fields(cleaned), " ")
}

var sentenceBoundary = regexp.MustCompile(`[.!?]+\s+`)

// splitSentences breaks text into trimmed, non-empty sentences
func splitSentences(text string) []string {
	parts := sentenceBoundary.Split(text, -1)

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// CitationVerifier checks that every cited chunk exists in the supplied
// context and actually supports the statement its marker is attached to.
// The signal score is the fraction of citations that fail either test.
type CitationVerifier struct {
	provider   llm.Provider
	maxWorkers int
}

// NewCitationVerifier creates a citation verifier.
// maxWorkers bounds concurrent support-check calls.
func NewCitationVerifier(provider llm.Provider, maxWorkers int) *CitationVerifier {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &CitationVerifier{
		provider:   provider,
		maxWorkers: maxWorkers,
	}
}

// Kind implements Verifier
func (v *CitationVerifier) Kind() model.SignalKind {
	return model.SignalCitation
}

// Verify implements Verifier. An answer with no citations asserts no support
// at all and scores the maximum 1.0: unverifiable is treated as risky, never
// as safe.
func (v *CitationVerifier) Verify(ctx context.Context, input Input) (model.VerificationSignal, error) {
	if len(input.Citations) == 0 {
		return model.VerificationSignal{
			Kind:        model.SignalCitation,
			Score:       1.0,
			Description: "answer carries no citations",
			Data: map[string]interface{}{
				"total":   0,
				"formula": "no citations => 1.0",
			},
		}, nil
	}

	chunks := make(map[int]model.ContextChunk, len(input.Chunks))
	for _, c := range input.Chunks {
		chunks[c.ID] = c
	}

	checks := make([]model.CitationCheck, len(input.Citations))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, v.maxWorkers)

	for i, marker := range input.Citations {
		chunk, ok := chunks[marker.ChunkID]
		if !ok {
			// Marker points at a chunk that was never retrieved
			checks[i] = model.CitationCheck{
				Marker:  marker.Raw,
				ChunkID: marker.ChunkID,
				Detail:  "cited chunk is not in the retrieved context",
			}
			continue
		}

		wg.Add(1)
		go func(idx int, m model.CitationMarker, c model.ContextChunk) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				checks[idx] = model.CitationCheck{
					Marker:   m.Raw,
					ChunkID:  m.ChunkID,
					Resolved: true,
					Detail:   "support check cancelled",
					Failed:   true,
				}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			checks[idx] = v.checkSupport(ctx, input, m, c)
		}(i, marker, chunk)
	}

	wg.Wait()

	unsupported := 0
	failed := 0
	for _, check := range checks {
		if !check.Supported {
			unsupported++
		}
		if check.Failed {
			failed++
		}
	}

	score := float64(unsupported) / float64(len(checks))

	signal := model.VerificationSignal{
		Kind:        model.SignalCitation,
		Score:       score,
		Description: fmt.Sprintf("%d of %d citations unsupported", unsupported, len(checks)),
		Citations:   checks,
		Data: map[string]interface{}{
			"total":       len(checks),
			"unsupported": unsupported,
			"formula":     "unsupported_citations / total_citations",
		},
	}

	if failed > 0 {
		signal.Degraded = true
		signal.DegradedReason = fmt.Sprintf("%d support checks failed and were counted as unsupported", failed)
	}

	return signal, nil
}

// checkSupport runs one judge call for a resolved citation
func (v *CitationVerifier) checkSupport(ctx context.Context, input Input, m model.CitationMarker, chunk model.ContextChunk) model.CitationCheck {
	statement := m.Statement
	if statement == "" {
		statement = input.Answer
	}

	check := model.CitationCheck{
		Marker:   m.Raw,
		ChunkID:  m.ChunkID,
		Resolved: true,
	}

	resp, err := v.provider.Complete(ctx, llm.CompletionRequest{
		System:      judgeSystemPrompt,
		Prompt:      SupportCheckPrompt(statement, chunk),
		Temperature: 0,
	})
	if err != nil {
		callErr := &VerificationCallError{Signal: model.SignalCitation, Op: "support check", Err: err}
		check.Detail = callErr.Error()
		check.Failed = true
		return check
	}

	verdict := strings.ToUpper(strings.TrimSpace(resp.Text))
	switch {
	case strings.HasPrefix(verdict, "NOT"):
		check.Detail = "chunk does not support the statement"
	case strings.HasPrefix(verdict, "SUPPORTED"):
		check.Supported = true
	default:
		check.Detail = fmt.Sprintf("unparseable support verdict: %q", resp.Text)
		check.Failed = true
	}

	return check
}
